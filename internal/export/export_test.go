package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/zonelayer/pkg/encoding"
	"github.com/Faultbox/zonelayer/pkg/layer"
	"github.com/Faultbox/zonelayer/pkg/lgb"
)

func header(kind layer.Kind, id uint32) layer.Header {
	return layer.Header{
		Kind:       kind,
		InstanceID: id,
		Transform: layer.Transform{
			Translation: layer.Vec3{X: 1, Y: 2, Z: 3},
			Rotation:    layer.Vec3{Y: 1.5},
			Scale:       layer.Vec3{X: 1, Y: 1, Z: 1},
		},
	}
}

func sampleRecords() []layer.Record {
	return []layer.Record{
		&layer.Background{
			Base:               layer.Base{Hdr: header(layer.KindBackground, 1), NameText: "door01"},
			AssetPath:          "bg/door01.mdl",
			CollisionAssetPath: "bg/door01_col.pcb",
			CollisionType:      layer.CollisionTypeReplace,
			Visible:            true,
		},
		&layer.PopRange{
			Base:      layer.Base{Hdr: header(layer.KindPopRange, 2)},
			PopType:   layer.PopNPC,
			Positions: []layer.Vec3{{X: 1}, {X: 2}, {X: 3}},
		},
		&layer.ExitRange{
			Base:   layer.Base{Hdr: header(layer.KindExitRange, 3)},
			Box:    layer.TriggerBox{Shape: layer.ShapeSphere, Enabled: true},
			ZoneID: 128,
		},
	}
}

func TestDump_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, sampleRecords(), Options{Format: JSON, Indent: 2}); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}

	bg := got[0]
	if bg["kind"] != "Background" || bg["name"] != "door01" {
		t.Errorf("unexpected background entry: %v", bg)
	}
	fields := bg["fields"].(map[string]any)
	if fields["assetPath"] != "bg/door01.mdl" || fields["collisionType"] != "Replace" {
		t.Errorf("unexpected background fields: %v", fields)
	}

	pop := got[1]["fields"].(map[string]any)
	if positions := pop["positions"].([]any); len(positions) != 3 {
		t.Errorf("got %d positions, want 3", len(positions))
	}
	if pop["popType"] != "NPC" {
		t.Errorf("popType = %v, want NPC", pop["popType"])
	}

	exit := got[2]["fields"].(map[string]any)
	if exit["shape"] != "Sphere" || exit["zoneId"] != float64(128) {
		t.Errorf("unexpected exit fields: %v", exit)
	}

	if _, ok := got[1]["name"]; ok {
		t.Error("empty name should be omitted")
	}
}

func TestDump_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, sampleRecords(), Options{Format: YAML, Indent: 2}); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var got []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0]["kind"] != "Background" || got[2]["kind"] != "ExitRange" {
		t.Errorf("unexpected kinds: %v, %v", got[0]["kind"], got[2]["kind"])
	}
	if !strings.Contains(buf.String(), "translation: [1, 2, 3]") {
		t.Errorf("translation not written in flow style:\n%s", buf.String())
	}
}

func TestDump_UnknownFormat(t *testing.T) {
	err := Dump(&bytes.Buffer{}, sampleRecords(), Options{Format: "xml"})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
}

func TestDump_NonFiniteFloats(t *testing.T) {
	h := header(layer.KindEventRange, 9)
	h.Transform.Translation.X = float32(math.NaN())
	h.Transform.Scale.Y = float32(math.Inf(1))
	recs := []layer.Record{&layer.EventRange{Base: layer.Base{Hdr: h}}}

	var buf bytes.Buffer
	if err := Dump(&buf, recs, Options{Format: JSON}); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	var got []Entry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got[0].Translation[0] != 0 || got[0].Translation[1] != 2 {
		t.Errorf("unexpected translation: %v", got[0].Translation)
	}
	if !strings.Contains(buf.String(), `"translation":[null,2,3]`) {
		t.Errorf("NaN not written as null: %s", buf.String())
	}
}

func TestDump_Charset(t *testing.T) {
	dec, err := encoding.Lookup(encoding.ShiftJIS)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	raw, err := dec.Encode("リムサ")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	recs := []layer.Record{&layer.EventNPC{Base: layer.Base{Hdr: header(layer.KindEventNPC, 4), NameText: string(raw)}}}

	var buf bytes.Buffer
	if err := Dump(&buf, recs, Options{Format: JSON, Charset: dec}); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"name":"リムサ"`) {
		t.Errorf("name not converted: %s", buf.String())
	}
}

func TestDumpFile(t *testing.T) {
	f := &lgb.File{
		Path:    "bg.lgb",
		GroupID: 7,
		Name:    "bg",
		Layers: []*lgb.Layer{{
			ID:   10,
			Name: "terrain",
			Result: &layer.Result{
				Records: sampleRecords()[:1],
				Skipped: []layer.Skipped{{Offset: 96, Err: &layer.UnknownKindError{Kind: 0x99}}},
			},
		}},
	}

	var buf bytes.Buffer
	if err := DumpFile(&buf, f, Options{Format: JSON}); err != nil {
		t.Fatalf("DumpFile failed: %v", err)
	}

	var got FileDoc
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Name != "bg" || got.GroupID != 7 || len(got.Layers) != 1 {
		t.Fatalf("unexpected document: %+v", got)
	}
	l := got.Layers[0]
	if l.Name != "terrain" || len(l.Records) != 1 || len(l.Skipped) != 1 {
		t.Errorf("unexpected layer: %+v", l)
	}
	if l.Skipped[0].Offset != 96 || !strings.Contains(l.Skipped[0].Reason, "unknown") {
		t.Errorf("unexpected skip: %+v", l.Skipped[0])
	}
}

func TestFields_EveryDecodableKind(t *testing.T) {
	recs := []layer.Record{
		&layer.SharedGroup{Base: layer.Base{Hdr: header(layer.KindSharedGroup, 1)},
			OverriddenMembers: []layer.OverriddenMember{{Kind: layer.KindBackground, InstanceID: 5}}},
		&layer.EventNPC{Base: layer.Base{Hdr: header(layer.KindEventNPC, 2)}},
		&layer.BattleNPC{Base: layer.Base{Hdr: header(layer.KindBattleNPC, 3)}},
		&layer.EventObject{Base: layer.Base{Hdr: header(layer.KindEventObject, 4)}},
		&layer.MapRange{Base: layer.Base{Hdr: header(layer.KindMapRange, 5)}},
		&layer.CollisionBox{Base: layer.Base{Hdr: header(layer.KindCollisionBox, 6)}},
		&layer.ServerPath{Base: layer.Base{Hdr: header(layer.KindServerPath, 7)},
			ControlPoints: []layer.ControlPoint{{PointID: 1}}},
	}

	for _, rec := range recs {
		t.Run(rec.Kind().String(), func(t *testing.T) {
			e := NewEntry(rec, Options{})
			if len(e.Fields) == 0 {
				t.Error("no fields rendered")
			}
			if _, err := json.Marshal(e); err != nil {
				t.Errorf("entry does not encode: %v", err)
			}
		})
	}
}
