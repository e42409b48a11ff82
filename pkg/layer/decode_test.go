package layer

import (
	"errors"
	"testing"
)

func decodeOne(t *testing.T, rec []byte) Record {
	t.Helper()
	r, err := DecodeRecord(NewSource(rec), 0)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	return r
}

func TestDecodeBackground_DoorScenario(t *testing.T) {
	rec := newRecord(KindBackground, 100)
	// Name stored inside the header area at record-relative offset 24.
	copy(rec[24:], "door01\x00")
	putI32(rec, 8, 24)
	rec = appendText(rec, 48, "bg/ffxiv/door01.mdl")
	rec = appendText(rec, 52, "door01_col")
	putI32(rec, 56, int32(CollisionTypeReplace))
	rec[72] = 1
	putF32(rec, 76, 250)

	// Place the record behind some unrelated bytes so relative addressing
	// is exercised against a non-zero record offset.
	data := append(make([]byte, 40), rec...)
	r, err := DecodeRecord(NewSource(data), 40)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}

	bg, ok := r.(*Background)
	if !ok {
		t.Fatalf("got %T, want *Background", r)
	}
	if bg.Name() != "door01" {
		t.Errorf("Name = %q, want %q", bg.Name(), "door01")
	}
	if bg.CollisionAssetPath != "door01_col" {
		t.Errorf("CollisionAssetPath = %q, want %q", bg.CollisionAssetPath, "door01_col")
	}
	if bg.AssetPath != "bg/ffxiv/door01.mdl" {
		t.Errorf("AssetPath = %q", bg.AssetPath)
	}
	if bg.CollisionType != CollisionTypeReplace {
		t.Errorf("CollisionType = %s, want Replace", bg.CollisionType)
	}
	if !bg.Visible {
		t.Error("Visible = false, want true")
	}
	if bg.RenderModelClipRange != 250 {
		t.Errorf("RenderModelClipRange = %f, want 250", bg.RenderModelClipRange)
	}
	if bg.Header().InstanceID != 100 {
		t.Errorf("InstanceID = %d, want 100", bg.Header().InstanceID)
	}
}

func TestDecodePopRange_Positions(t *testing.T) {
	positions := []Vec3{{1, 2, 3}, {-4.5, 0, 6.25}, {7, 8, 9}}
	rec := newRecord(KindPopRange, 5)
	putU32(rec, 48, uint32(PopNPC))
	putF32(rec, 60, 0.5)
	rec[64] = 3
	rec = appendVec3s(rec, 52, 56, positions)

	pop, ok := decodeOne(t, rec).(*PopRange)
	if !ok {
		t.Fatal("not a *PopRange")
	}
	if len(pop.Positions) != 3 {
		t.Fatalf("got %d positions, want 3", len(pop.Positions))
	}
	for i, want := range positions {
		if pop.Positions[i] != want {
			t.Errorf("position %d = %+v, want %+v", i, pop.Positions[i], want)
		}
	}
	if pop.PopType != PopNPC {
		t.Errorf("PopType = %s, want NPC", pop.PopType)
	}
	if pop.InnerRadiusRatio != 0.5 || pop.Index != 3 {
		t.Errorf("InnerRadiusRatio/Index = %f/%d", pop.InnerRadiusRatio, pop.Index)
	}
	if pop.Name() != "" {
		t.Errorf("Name = %q, want empty", pop.Name())
	}
}

func TestDecodeSharedGroup(t *testing.T) {
	rec := newRecord(KindSharedGroup, 9)
	putI32(rec, 52, int32(DoorClosed))
	putI32(rec, 64, int32(RotationStopped))
	rec[68] = 1
	putU32(rec, 72, 777)
	putI32(rec, 88, int32(TimelineReplay))
	rec = appendText(rec, 48, "bgcommon/door.sgb")
	rec = appendText(rec, 8, "gate")

	ref := len(rec)
	members := make([]byte, 16)
	putI32(members, 0, int32(KindBackground))
	putU32(members, 4, 11)
	putI32(members, 8, int32(KindVFX))
	putU32(members, 12, 12)
	rec = append(rec, members...)
	putI32(rec, 56, int32(ref))
	putI32(rec, 60, 2)

	sg, ok := decodeOne(t, rec).(*SharedGroup)
	if !ok {
		t.Fatal("not a *SharedGroup")
	}
	if sg.AssetPath != "bgcommon/door.sgb" || sg.Name() != "gate" {
		t.Errorf("AssetPath/Name = %q/%q", sg.AssetPath, sg.Name())
	}
	if sg.InitialDoorState != DoorClosed || sg.InitialRotationState != RotationStopped {
		t.Errorf("door/rotation state = %d/%d", sg.InitialDoorState, sg.InitialRotationState)
	}
	if !sg.RandomTimelineAutoPlay || sg.RandomTimelineLoopPlayback {
		t.Error("timeline flags mismatch")
	}
	if sg.BoundClientPathInstanceID != 777 || sg.InitialColorState != TimelineReplay {
		t.Errorf("bound path/color state = %d/%d", sg.BoundClientPathInstanceID, sg.InitialColorState)
	}
	want := []OverriddenMember{{KindBackground, 11}, {KindVFX, 12}}
	if len(sg.OverriddenMembers) != len(want) {
		t.Fatalf("got %d members, want %d", len(sg.OverriddenMembers), len(want))
	}
	for i := range want {
		if sg.OverriddenMembers[i] != want[i] {
			t.Errorf("member %d = %+v, want %+v", i, sg.OverriddenMembers[i], want[i])
		}
	}
}

func TestDecodeBattleNPC(t *testing.T) {
	rec := newRecord(KindBattleNPC, 3000)
	putU32(rec, 48, 15)   // base id
	putU32(rec, 60, 2)    // move ai
	rec[64] = 10          // wandering range
	putU32(rec, 76, 541)  // name id
	putF32(rec, 84, 1.25) // sense range rate
	putU16(rec, 88, 50)   // level
	rec[94] = 4           // link group
	rec[99] = 1           // invalid repop
	putF32(rec, 112, 8)
	putF32(rec, 116, 2)
	putU16(rec, 126, 30)
	putU32(rec, 128, 3001)
	putU32(rec, 148, 99)
	rec = appendVec3s(rec, 104, 108, []Vec3{{1, 0, 1}})
	rec = appendText(rec, 8, "wolf")

	npc, ok := decodeOne(t, rec).(*BattleNPC)
	if !ok {
		t.Fatal("not a *BattleNPC")
	}
	if npc.BaseID != 15 || npc.MoveAI != 2 || npc.WanderingRange != 10 {
		t.Errorf("npc base fields = %+v", npc.NPC)
	}
	if npc.NameID != 541 || npc.Level != 50 || npc.SenseRangeRate != 1.25 {
		t.Errorf("NameID/Level/SenseRangeRate = %d/%d/%f", npc.NameID, npc.Level, npc.SenseRangeRate)
	}
	if npc.LinkGroup != 4 || !npc.InvalidRepop || npc.Nonpop {
		t.Error("link/pop flags mismatch")
	}
	if npc.HorizontalPopRange != 8 || npc.VerticalPopRange != 2 || npc.TerritoryRange != 30 {
		t.Error("pop range fields mismatch")
	}
	if npc.BoundInstanceID != 3001 || npc.CustomizeID != 99 {
		t.Errorf("BoundInstanceID/CustomizeID = %d/%d", npc.BoundInstanceID, npc.CustomizeID)
	}
	if len(npc.Positions) != 1 || npc.Positions[0] != (Vec3{1, 0, 1}) {
		t.Errorf("Positions = %+v", npc.Positions)
	}
	if npc.Name() != "wolf" {
		t.Errorf("Name = %q", npc.Name())
	}
}

func TestDecodeEventNPCAndObject(t *testing.T) {
	enpc := newRecord(KindEventNPC, 1)
	putU32(enpc, 48, 1000236)
	putU32(enpc, 76, 3)

	npc, ok := decodeOne(t, enpc).(*EventNPC)
	if !ok {
		t.Fatal("not an *EventNPC")
	}
	if npc.BaseID != 1000236 || npc.Behavior != 3 {
		t.Errorf("BaseID/Behavior = %d/%d", npc.BaseID, npc.Behavior)
	}

	eobj := newRecord(KindEventObject, 2)
	putU32(eobj, 48, 2000001)
	putU32(eobj, 52, 20)
	putU32(eobj, 56, 21)

	obj, ok := decodeOne(t, eobj).(*EventObject)
	if !ok {
		t.Fatal("not an *EventObject")
	}
	if obj.BaseID != 2000001 || obj.BoundInstanceID != 20 || obj.LinkedInstanceID != 21 {
		t.Errorf("EventObject = %+v", obj)
	}
}

func putTriggerBox(rec []byte, shape TriggerShape, priority int16, enabled bool) {
	putI32(rec, 48, int32(shape))
	putU16(rec, 52, uint16(priority))
	if enabled {
		rec[54] = 1
	}
}

func TestDecodeTriggerVolumes(t *testing.T) {
	t.Run("EventRange", func(t *testing.T) {
		rec := newRecord(KindEventRange, 1)
		putTriggerBox(rec, ShapeSphere, -2, true)

		er, ok := decodeOne(t, rec).(*EventRange)
		if !ok {
			t.Fatal("not an *EventRange")
		}
		want := TriggerBox{Shape: ShapeSphere, Priority: -2, Enabled: true}
		if er.Trigger() != want {
			t.Errorf("Trigger = %+v, want %+v", er.Trigger(), want)
		}
	})

	t.Run("ExitRange", func(t *testing.T) {
		rec := newRecord(KindExitRange, 2)
		putTriggerBox(rec, ShapeBox, 1, true)
		putU32(rec, 60, 1)
		putU16(rec, 64, 132)
		putU16(rec, 66, 133)
		putI32(rec, 68, -1)
		putU32(rec, 72, 4001)
		putU32(rec, 76, 4002)
		putF32(rec, 80, 3.14)

		exit, ok := decodeOne(t, rec).(*ExitRange)
		if !ok {
			t.Fatal("not an *ExitRange")
		}
		if exit.ZoneID != 132 || exit.DestTerritoryType != 133 || exit.Index != -1 {
			t.Errorf("ZoneID/Dest/Index = %d/%d/%d", exit.ZoneID, exit.DestTerritoryType, exit.Index)
		}
		if exit.DestInstanceID != 4001 || exit.ReturnInstanceID != 4002 || exit.Direction != 3.14 {
			t.Error("destination fields mismatch")
		}
		if exit.Box.Shape != ShapeBox {
			t.Errorf("Shape = %s", exit.Box.Shape)
		}
	})

	t.Run("MapRange", func(t *testing.T) {
		rec := newRecord(KindMapRange, 3)
		putTriggerBox(rec, ShapeCylinder, 0, true)
		putU32(rec, 60, 12)
		putU32(rec, 72, 88)
		putU32(rec, 76, 2)
		rec[90] = 5
		rec[93] = 1  // map
		rec[96] = 1  // bgm
		rec[101] = 1 // housing

		mr, ok := decodeOne(t, rec).(*MapRange)
		if !ok {
			t.Fatal("not a *MapRange")
		}
		if mr.MapID != 12 || mr.BGM != 88 || mr.Weather != 2 || mr.HousingBlockID != 5 {
			t.Errorf("MapRange = %+v", mr)
		}
		want := MapRangeFlags{Map: true, BGM: true, Housing: true}
		if mr.Enabled != want {
			t.Errorf("Enabled = %+v, want %+v", mr.Enabled, want)
		}
	})

	t.Run("CollisionBox", func(t *testing.T) {
		rec := newRecord(KindCollisionBox, 4)
		putTriggerBox(rec, ShapeMesh, 0, false)
		putU32(rec, 60, 0x10)
		putU32(rec, 64, 0xFF)
		putU32(rec, 68, 77)
		rec[72] = 1

		cb, ok := decodeOne(t, rec).(*CollisionBox)
		if !ok {
			t.Fatal("not a *CollisionBox")
		}
		if cb.Attribute != 0x10 || cb.AttributeMask != 0xFF || cb.ResourceID != 77 || !cb.PushPlayerOut {
			t.Errorf("CollisionBox = %+v", cb)
		}
		if cb.Box.Enabled {
			t.Error("Enabled = true, want false")
		}
	})
}

func TestDecodeServerPath(t *testing.T) {
	rec := newRecord(KindServerPath, 6)
	ref := len(rec)
	points := make([]byte, 2*controlPointSize)
	putVec3(points, 0, Vec3{1, 2, 3})
	putU16(points, 12, 0)
	putVec3(points, 16, Vec3{4, 5, 6})
	putU16(points, 28, 1)
	points[30] = 1
	rec = append(rec, points...)
	putI32(rec, 48, int32(ref))
	putI32(rec, 52, 2)

	sp, ok := decodeOne(t, rec).(*ServerPath)
	if !ok {
		t.Fatal("not a *ServerPath")
	}
	want := []ControlPoint{
		{Position: Vec3{1, 2, 3}, PointID: 0},
		{Position: Vec3{4, 5, 6}, PointID: 1, Selected: true},
	}
	if len(sp.ControlPoints) != len(want) {
		t.Fatalf("got %d points, want %d", len(sp.ControlPoints), len(want))
	}
	for i := range want {
		if sp.ControlPoints[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, sp.ControlPoints[i], want[i])
		}
	}
}

func TestDecodeRecord_UnknownKind(t *testing.T) {
	for _, kind := range []Kind{KindSound, KindAetheryte, Kind(0x7FFF), Kind(-1)} {
		t.Run(kind.String(), func(t *testing.T) {
			rec := newRecord(kind, 1)
			_, err := DecodeRecord(NewSource(rec), 0)
			if !errors.Is(err, ErrUnknownKind) {
				t.Fatalf("got %v, want ErrUnknownKind", err)
			}
			var uk *UnknownKindError
			if !errors.As(err, &uk) || uk.Kind != kind {
				t.Errorf("UnknownKindError.Kind = %v, want %s", uk, kind)
			}
		})
	}
}

func TestDecodeRecord_UnknownKindNeedsNoPayload(t *testing.T) {
	// A bare header of an unknown kind must report the kind, not a size
	// guess that overruns the buffer.
	rec := newRecord(Kind(0x7F00), 1)[:HeaderSize]

	_, err := DecodeRecord(NewSource(rec), 0)
	if !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("got %v, want ErrUnknownKind", err)
	}
	if errors.Is(err, ErrOutOfBounds) {
		t.Error("unknown kind also reported as out of bounds")
	}
}

func TestDecodeRecord_Errors(t *testing.T) {
	tests := []struct {
		name    string
		rec     func() []byte
		wantErr error
	}{
		{
			name: "payload truncated",
			rec: func() []byte {
				return newRecord(KindMapRange, 1)[:100]
			},
			wantErr: ErrOutOfBounds,
		},
		{
			name: "name past end",
			rec: func() []byte {
				rec := newRecord(KindEventRange, 1)
				putI32(rec, 8, 1000)
				return rec
			},
			wantErr: ErrInvalidOffset,
		},
		{
			name: "asset path unterminated",
			rec: func() []byte {
				rec := newRecord(KindBackground, 1)
				rec = append(rec, 'a', 'b')
				putI32(rec, 48, 80)
				return rec
			},
			wantErr: ErrUnterminatedText,
		},
		{
			name: "pop positions overrun",
			rec: func() []byte {
				rec := newRecord(KindPopRange, 1)
				putI32(rec, 52, 60)
				putI32(rec, 56, 2)
				return rec
			},
			wantErr: ErrOutOfBounds,
		},
		{
			name: "control points before buffer",
			rec: func() []byte {
				rec := newRecord(KindServerPath, 1)
				putI32(rec, 48, -4)
				putI32(rec, 52, 1)
				return rec
			},
			wantErr: ErrInvalidOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(NewSource(tt.rec()), 0)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
