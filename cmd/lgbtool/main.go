// lgbtool is a CLI utility for inspecting zone layer group files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/zonelayer/internal/config"
	"github.com/Faultbox/zonelayer/internal/export"
	"github.com/Faultbox/zonelayer/internal/logger"
	"github.com/Faultbox/zonelayer/pkg/encoding"
	"github.com/Faultbox/zonelayer/pkg/layer"
	"github.com/Faultbox/zonelayer/pkg/lgb"
)

var (
	errUsage    = errors.New("usage")
	errSkipped  = errors.New("records were skipped")
	errNoInputs = errors.New("no input files")
)

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	charset *encoding.Decoder
	reader  *lgb.Reader
	out     io.Writer
}

func newApp(cfg *config.Config, log *zap.Logger, out io.Writer) (*app, error) {
	charset, err := encoding.Lookup(cfg.Decode.Charset)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:     cfg,
		log:     log,
		charset: charset,
		reader:  lgb.NewReader(lgb.WithLogger(log), lgb.WithWorkers(cfg.Decode.Workers)),
		out:     out,
	}, nil
}

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		Console: os.Stderr,
		Color:   true,
		File: logger.FileConfig{
			Path:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		},
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	a, err := newApp(cfg, logger.Log, os.Stdout)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		os.Exit(1)
	}

	if err := a.run(config.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			printUsage(os.Stderr)
		} else {
			logger.Error("command failed", zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

func (a *app) run(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: missing command", errUsage)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		return a.cmdInfo(rest)
	case "list", "ls":
		return a.cmdList(rest)
	case "dump":
		return a.cmdDump(rest)
	case "bnpcs":
		return a.cmdBNPCs(rest)
	case "check":
		return a.cmdCheck(rest)
	case "help", "-h", "--help":
		printUsage(a.out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `lgbtool - zone layer group file utility

Usage:
  lgbtool [global options] <command> [options]

Commands:
  info <file.lgb>                 Show layers and record counts
  list <file.lgb> [kind]          List records (optional kind filter)
  dump <file.lgb>                 Dump decoded records as JSON or YAML
  bnpcs <file.lgb...>             Write the battle NPC sidecar JSON
  check [file.lgb...]             Decode files and report skipped records

Global options:
  -config <path>   Config file (default ./lgbtool.yaml)
  -charset <name>  Record text charset (raw, utf-8, shift_jis, euc-kr, windows-1252)
  -format <fmt>    Dump format (json, yaml)
  -debug           Enable debug logging
  -log-file <path> Also write logs to a rotated file

Examples:
  lgbtool info bg.lgb
  lgbtool list planevent.lgb ExitRange
  lgbtool -format yaml dump -layer Enemy planmap.lgb
  lgbtool bnpcs -o s1f1.json planevent.lgb planmap.lgb`)
}

func (a *app) text(s string) string {
	return a.charset.DecodeOrRaw(s)
}

func (a *app) exportOptions() export.Options {
	return export.Options{
		Format:  a.cfg.Export.Format,
		Indent:  a.cfg.Export.Indent,
		Charset: a.charset,
	}
}

// reportSkips logs every skipped record of f and returns how many there were.
func (a *app) reportSkips(f *lgb.File) int {
	n := 0
	for _, l := range f.Layers {
		for _, s := range l.Skipped {
			a.log.Warn("skipped record",
				zap.String("file", f.Path),
				zap.String("layer", a.text(l.Name)),
				zap.Uint32("offset", uint32(s.Offset)),
				zap.Error(s.Err))
			n++
		}
	}
	return n
}

func (a *app) open(path string) (*lgb.File, error) {
	f, err := a.reader.Open(path)
	if err != nil {
		return nil, err
	}
	a.reportSkips(f)
	return f, nil
}

func (a *app) cmdInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: lgbtool info <file.lgb>", errUsage)
	}

	f, err := a.open(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "File:    %s\n", f.Path)
	fmt.Fprintf(a.out, "Group:   %s (%d)\n", a.text(f.Name), f.GroupID)
	fmt.Fprintf(a.out, "Layers:  %d\n", len(f.Layers))
	fmt.Fprintf(a.out, "Records: %d (%d skipped)\n", f.RecordCount(), f.SkippedCount())
	fmt.Fprintln(a.out)

	fmt.Fprintln(a.out, "Layers:")
	for _, l := range f.Layers {
		fmt.Fprintf(a.out, "  %-6d %-32s %5d records", l.ID, a.text(l.Name), len(l.Records))
		if len(l.Skipped) > 0 {
			fmt.Fprintf(a.out, ", %d skipped", len(l.Skipped))
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintln(a.out)

	fmt.Fprintln(a.out, "Records by kind:")
	type kindStat struct {
		kind  layer.Kind
		count int
	}
	var stats []kindStat
	for kind, count := range f.CountByKind() {
		stats = append(stats, kindStat{kind, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].kind < stats[j].kind
	})
	for _, s := range stats {
		fmt.Fprintf(a.out, "  %-14s %d\n", s.kind, s.count)
	}
	return nil
}

func (a *app) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("n", 0, "Limit output to N records (0 = all)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("%w: lgbtool list <file.lgb> [kind]", errUsage)
	}

	var filter layer.Kind
	if fs.NArg() > 1 {
		kind, ok := layer.ParseKind(fs.Arg(1))
		if !ok || !kind.Decodable() {
			return fmt.Errorf("%w: unknown kind %q (one of %s)", errUsage, fs.Arg(1), kindNames())
		}
		filter = kind
	}

	f, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}

	count := 0
	for _, l := range f.Layers {
		for _, rec := range l.Records {
			if filter != 0 && rec.Kind() != filter {
				continue
			}
			h := rec.Header()
			pos := h.Transform.Translation
			fmt.Fprintf(a.out, "%-20s %-14s %10d  (%.2f, %.2f, %.2f)  %s\n",
				a.text(l.Name), h.Kind, h.InstanceID, pos.X, pos.Y, pos.Z, a.text(rec.Name()))
			count++
			if *limit > 0 && count >= *limit {
				return nil
			}
		}
	}

	if filter != 0 {
		fmt.Fprintf(os.Stderr, "\n(%d records matched)\n", count)
	}
	return nil
}

func (a *app) cmdDump(args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	layerName := fs.String("layer", "", "Only dump the named layer")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("%w: lgbtool dump [-layer name] <file.lgb>", errUsage)
	}

	f, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}

	if *layerName == "" {
		return export.DumpFile(a.out, f, a.exportOptions())
	}

	for _, l := range f.Layers {
		if a.text(l.Name) == *layerName {
			return export.Dump(a.out, l.Records, a.exportOptions())
		}
	}
	return fmt.Errorf("layer %q not found in %s", *layerName, f.Path)
}

func (a *app) cmdBNPCs(args []string) error {
	fs := flag.NewFlagSet("bnpcs", flag.ContinueOnError)
	output := fs.String("o", "", "Write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if fs.NArg() < 1 {
		return fmt.Errorf("%w: lgbtool bnpcs [-o out.json] <file.lgb...>", errUsage)
	}

	files, err := a.reader.ParseFiles(context.Background(), fs.Args())
	if err != nil {
		return err
	}
	for _, f := range files {
		a.reportSkips(f)
	}

	groups := export.BNPCGroups(files, a.exportOptions())
	out := a.out
	if *output != "" {
		file, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer file.Close()
		out = file
	}

	if err := export.WriteBattleNPCs(out, groups, a.cfg.Export.Indent); err != nil {
		return err
	}

	total := 0
	for _, g := range groups {
		total += len(g.NPCs)
	}
	a.log.Info("battle NPCs exported", zap.Int("groups", len(groups)), zap.Int("bnpcs", total))
	return nil
}

func (a *app) cmdCheck(args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = a.cfg.Data.Paths
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: lgbtool check <file.lgb...> (or set data.paths)", errNoInputs)
	}

	files, err := a.reader.ParseFiles(context.Background(), paths)
	if err != nil {
		return err
	}

	skipped := 0
	for _, f := range files {
		n := a.reportSkips(f)
		skipped += n
		status := "ok"
		if n > 0 {
			status = fmt.Sprintf("%d skipped", n)
		}
		fmt.Fprintf(a.out, "%-48s %3d layers %6d records  %s\n", f.Path, len(f.Layers), f.RecordCount(), status)
	}

	if skipped > 0 && a.cfg.Decode.FailOnSkip {
		return fmt.Errorf("%w: %d in %d files", errSkipped, skipped, len(files))
	}
	return nil
}

// kindNames lists the kinds accepted by list.
func kindNames() string {
	var names []string
	for k := layer.Kind(0); k < 0x80; k++ {
		if k.Decodable() {
			names = append(names, k.String())
		}
	}
	return strings.Join(names, ", ")
}
