package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagCharset    = flag.String("charset", "", "Charset of record text (raw, utf-8, shift_jis, euc-kr, windows-1252)")
	flagFormat     = flag.String("format", "", "Dump format (json, yaml)")
	flagLogFile    = flag.String("log-file", "", "Also write logs to this file")
	flagWorkers    = flag.Int("workers", 0, "Files/layers decoded at once (0 = config or GOMAXPROCS)")
	flagFailOnSkip = flag.Bool("fail-on-skip", false, "Exit with an error when any record is skipped")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagCharset != "" {
		cfg.Decode.Charset = *flagCharset
	}
	if *flagFormat != "" {
		cfg.Export.Format = *flagFormat
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagWorkers > 0 {
		cfg.Decode.Workers = *flagWorkers
	}
	if *flagFailOnSkip {
		cfg.Decode.FailOnSkip = true
	}
}
