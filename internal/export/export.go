// Package export renders decoded layer records as JSON or YAML.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/zonelayer/pkg/encoding"
	"github.com/Faultbox/zonelayer/pkg/layer"
	"github.com/Faultbox/zonelayer/pkg/lgb"
)

// Formats.
const (
	JSON = "json"
	YAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Options controls rendering. A nil Charset leaves text as raw bytes.
type Options struct {
	Format  string
	Indent  int
	Charset *encoding.Decoder
}

func (o Options) text(s string) string {
	if o.Charset == nil {
		return s
	}
	return o.Charset.DecodeOrRaw(s)
}

// Float is a float32 that encodes non-finite values as JSON null.
type Float float32

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v, 'g', -1, 32)), nil
}

// Vec is a Vec3 as an [x, y, z] triple.
type Vec [3]Float

func vec(v layer.Vec3) Vec {
	return Vec{Float(v.X), Float(v.Y), Float(v.Z)}
}

func vecs(vs []layer.Vec3) []Vec {
	out := make([]Vec, len(vs))
	for i, v := range vs {
		out[i] = vec(v)
	}
	return out
}

// Entry is the rendered form of one record.
type Entry struct {
	Kind        string         `json:"kind" yaml:"kind"`
	InstanceID  uint32         `json:"instanceId" yaml:"instanceId"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Translation Vec            `json:"translation" yaml:"translation,flow"`
	Rotation    Vec            `json:"rotation" yaml:"rotation,flow"`
	Scale       Vec            `json:"scale" yaml:"scale,flow"`
	Fields      map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// SkipEntry is the rendered form of a skipped record.
type SkipEntry struct {
	Offset uint32 `json:"offset" yaml:"offset"`
	Reason string `json:"reason" yaml:"reason"`
}

// LayerDoc is one layer of a file dump.
type LayerDoc struct {
	ID      uint32      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Records []Entry     `json:"records" yaml:"records"`
	Skipped []SkipEntry `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// FileDoc is a whole file dump.
type FileDoc struct {
	Path    string     `json:"path,omitempty" yaml:"path,omitempty"`
	GroupID int32      `json:"groupId" yaml:"groupId"`
	Name    string     `json:"name" yaml:"name"`
	Layers  []LayerDoc `json:"layers" yaml:"layers"`
}

// NewEntry renders one record.
func NewEntry(rec layer.Record, opts Options) Entry {
	h := rec.Header()
	return Entry{
		Kind:        h.Kind.String(),
		InstanceID:  h.InstanceID,
		Name:        opts.text(rec.Name()),
		Translation: vec(h.Transform.Translation),
		Rotation:    vec(h.Transform.Rotation),
		Scale:       vec(h.Transform.Scale),
		Fields:      fields(rec, opts),
	}
}

// Entries renders records in order.
func Entries(records []layer.Record, opts Options) []Entry {
	out := make([]Entry, len(records))
	for i, rec := range records {
		out[i] = NewEntry(rec, opts)
	}
	return out
}

// NewFileDoc renders a decoded file.
func NewFileDoc(f *lgb.File, opts Options) FileDoc {
	doc := FileDoc{
		Path:    f.Path,
		GroupID: f.GroupID,
		Name:    opts.text(f.Name),
		Layers:  make([]LayerDoc, len(f.Layers)),
	}
	for i, l := range f.Layers {
		ld := LayerDoc{
			ID:      l.ID,
			Name:    opts.text(l.Name),
			Records: Entries(l.Records, opts),
		}
		for _, s := range l.Skipped {
			ld.Skipped = append(ld.Skipped, SkipEntry{Offset: uint32(s.Offset), Reason: s.Err.Error()})
		}
		doc.Layers[i] = ld
	}
	return doc
}

// Dump writes records as a list of entries.
func Dump(w io.Writer, records []layer.Record, opts Options) error {
	return Write(w, Entries(records, opts), opts)
}

// DumpFile writes a whole decoded file.
func DumpFile(w io.Writer, f *lgb.File, opts Options) error {
	return Write(w, NewFileDoc(f, opts), opts)
}

// Write encodes v in the selected format.
func Write(w io.Writer, v any, opts Options) error {
	switch strings.ToLower(opts.Format) {
	case JSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if opts.Indent > 0 {
			enc.SetIndent("", strings.Repeat(" ", opts.Indent))
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		if opts.Indent > 0 {
			enc.SetIndent(opts.Indent)
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

func triggerFields(m map[string]any, b layer.TriggerBox) {
	m["shape"] = b.Shape.String()
	m["priority"] = b.Priority
	m["enabled"] = b.Enabled
}

func npcFields(m map[string]any, n layer.NPC) {
	m["baseId"] = n.BaseID
	m["popWeather"] = n.PopWeather
	m["popTimeStart"] = n.PopTimeStart
	m["popTimeEnd"] = n.PopTimeEnd
	m["moveAI"] = n.MoveAI
	m["wanderingRange"] = n.WanderingRange
	m["route"] = n.Route
	m["eventGroup"] = n.EventGroup
}

func fields(rec layer.Record, opts Options) map[string]any {
	m := make(map[string]any)
	switch r := rec.(type) {
	case *layer.Background:
		m["assetPath"] = opts.text(r.AssetPath)
		m["collisionAssetPath"] = opts.text(r.CollisionAssetPath)
		m["collisionType"] = r.CollisionType.String()
		m["attributeMask"] = r.AttributeMask
		m["attribute"] = r.Attribute
		m["collisionConfig"] = r.CollisionConfig
		m["visible"] = r.Visible
		m["renderShadowEnabled"] = r.RenderShadowEnabled
		m["renderLightShadowEnabled"] = r.RenderLightShadowEnabled
		m["renderModelClipRange"] = Float(r.RenderModelClipRange)
	case *layer.SharedGroup:
		members := make([]map[string]any, len(r.OverriddenMembers))
		for i, om := range r.OverriddenMembers {
			members[i] = map[string]any{"kind": om.Kind.String(), "instanceId": om.InstanceID}
		}
		m["assetPath"] = opts.text(r.AssetPath)
		m["initialDoorState"] = int32(r.InitialDoorState)
		m["overriddenMembers"] = members
		m["initialRotationState"] = int32(r.InitialRotationState)
		m["randomTimelineAutoPlay"] = r.RandomTimelineAutoPlay
		m["randomTimelineLoopPlayback"] = r.RandomTimelineLoopPlayback
		m["collisionControllableWithoutEObj"] = r.IsCollisionControllableWithoutEObj
		m["boundClientPathInstanceId"] = r.BoundClientPathInstanceID
		m["movePathSettings"] = r.MovePathSettings
		m["notCreateNavimeshDoor"] = r.NotCreateNavimeshDoor
		m["initialTransformState"] = int32(r.InitialTransformState)
		m["initialColorState"] = int32(r.InitialColorState)
	case *layer.PopRange:
		m["popType"] = r.PopType.String()
		m["positions"] = vecs(r.Positions)
		m["innerRadiusRatio"] = Float(r.InnerRadiusRatio)
		m["index"] = r.Index
	case *layer.EventNPC:
		npcFields(m, r.NPC)
		m["behavior"] = r.Behavior
	case *layer.BattleNPC:
		npcFields(m, r.NPC)
		m["nameId"] = r.NameID
		m["dropItem"] = r.DropItem
		m["senseRangeRate"] = Float(r.SenseRangeRate)
		m["level"] = r.Level
		m["activeType"] = r.ActiveType
		m["popInterval"] = r.PopInterval
		m["popRate"] = r.PopRate
		m["popEvent"] = r.PopEvent
		m["linkGroup"] = r.LinkGroup
		m["linkFamily"] = r.LinkFamily
		m["linkRange"] = r.LinkRange
		m["linkCountLimit"] = r.LinkCountLimit
		m["nonpopInitZone"] = r.NonpopInitZone
		m["invalidRepop"] = r.InvalidRepop
		m["linkParent"] = r.LinkParent
		m["linkOverride"] = r.LinkOverride
		m["linkReply"] = r.LinkReply
		m["nonpop"] = r.Nonpop
		m["positions"] = vecs(r.Positions)
		m["horizontalPopRange"] = Float(r.HorizontalPopRange)
		m["verticalPopRange"] = Float(r.VerticalPopRange)
		m["baseDataId"] = r.BaseDataID
		m["repopId"] = r.RepopID
		m["rankId"] = r.RankID
		m["territoryRange"] = r.TerritoryRange
		m["boundInstanceId"] = r.BoundInstanceID
		m["fateLayoutLabelId"] = r.FateLayoutLabelID
		m["normalAI"] = r.NormalAI
		m["serverPathId"] = r.ServerPathID
		m["equipmentId"] = r.EquipmentID
		m["customizeId"] = r.CustomizeID
	case *layer.EventObject:
		m["baseId"] = r.BaseID
		m["boundInstanceId"] = r.BoundInstanceID
		m["linkedInstanceId"] = r.LinkedInstanceID
	case *layer.EventRange:
		triggerFields(m, r.Box)
	case *layer.ExitRange:
		triggerFields(m, r.Box)
		m["exitType"] = r.ExitType
		m["zoneId"] = r.ZoneID
		m["destTerritoryType"] = r.DestTerritoryType
		m["index"] = r.Index
		m["destInstanceId"] = r.DestInstanceID
		m["returnInstanceId"] = r.ReturnInstanceID
		m["direction"] = Float(r.Direction)
	case *layer.MapRange:
		triggerFields(m, r.Box)
		m["mapId"] = r.MapID
		m["placeNameBlock"] = r.PlaceNameBlock
		m["placeNameSpot"] = r.PlaceNameSpot
		m["bgm"] = r.BGM
		m["weather"] = r.Weather
		m["housingBlockId"] = r.HousingBlockID
		m["restBonusEffective"] = r.RestBonusEffective
		m["discoveryIndex"] = r.DiscoveryIndex
		m["enabled"] = map[string]bool{
			"map":               r.Enabled.Map,
			"placeName":         r.Enabled.PlaceName,
			"discovery":         r.Enabled.Discovery,
			"bgm":               r.Enabled.BGM,
			"weather":           r.Enabled.Weather,
			"restBonus":         r.Enabled.RestBonus,
			"bgmPlayZoneInOnly": r.Enabled.BGMPlayZoneInOnly,
			"lift":              r.Enabled.Lift,
			"housing":           r.Enabled.Housing,
		}
	case *layer.CollisionBox:
		triggerFields(m, r.Box)
		m["attribute"] = r.Attribute
		m["attributeMask"] = r.AttributeMask
		m["resourceId"] = r.ResourceID
		m["pushPlayerOut"] = r.PushPlayerOut
	case *layer.ServerPath:
		points := make([]map[string]any, len(r.ControlPoints))
		for i, cp := range r.ControlPoints {
			points[i] = map[string]any{
				"position": vec(cp.Position),
				"pointId":  cp.PointID,
				"selected": cp.Selected,
			}
		}
		m["controlPoints"] = points
	}
	return m
}
