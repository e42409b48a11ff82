package layer

import "fmt"

// Kind is the record discriminant stored in the first header field.
// New values appear with newer game data; only kinds with a registered
// decoder can be decoded.
type Kind int32

// Known record kinds. Kinds without a decoder still get a name for
// diagnostics.
const (
	KindNone           Kind = 0x00
	KindBackground     Kind = 0x01
	KindAttribute      Kind = 0x02
	KindLayLight       Kind = 0x03
	KindVFX            Kind = 0x04
	KindPositionMarker Kind = 0x05
	KindSharedGroup    Kind = 0x06
	KindSound          Kind = 0x07
	KindEventNPC       Kind = 0x08
	KindBattleNPC      Kind = 0x09
	KindRoutePath      Kind = 0x0A
	KindCharacter      Kind = 0x0B
	KindAetheryte      Kind = 0x0C
	KindEnvSet         Kind = 0x0D
	KindGathering      Kind = 0x0E
	KindHelperObject   Kind = 0x0F
	KindTreasure       Kind = 0x10
	KindPopRange       Kind = 0x28
	KindExitRange      Kind = 0x29
	KindLVB            Kind = 0x2A
	KindMapRange       Kind = 0x2B
	KindNaviMeshRange  Kind = 0x2C
	KindEventObject    Kind = 0x2D
	KindEnvLocation    Kind = 0x2F
	KindEventRange     Kind = 0x31
	KindRestBonusRange Kind = 0x32
	KindQuestMarker    Kind = 0x33
	KindTimeline       Kind = 0x34
	KindCollisionBox   Kind = 0x39
	KindDoorRange      Kind = 0x3A
	KindLineVFX        Kind = 0x3B
	KindClientPath     Kind = 0x41
	KindServerPath     Kind = 0x42
	KindGimmickRange   Kind = 0x43
	KindTargetMarker   Kind = 0x44
	KindChairMarker    Kind = 0x45
	KindClickableRange Kind = 0x46
	KindPrefetchRange  Kind = 0x47
	KindFateRange      Kind = 0x48
)

var kindNames = map[Kind]string{
	KindNone:           "None",
	KindBackground:     "Background",
	KindAttribute:      "Attribute",
	KindLayLight:       "LayLight",
	KindVFX:            "VFX",
	KindPositionMarker: "PositionMarker",
	KindSharedGroup:    "SharedGroup",
	KindSound:          "Sound",
	KindEventNPC:       "EventNPC",
	KindBattleNPC:      "BattleNPC",
	KindRoutePath:      "RoutePath",
	KindCharacter:      "Character",
	KindAetheryte:      "Aetheryte",
	KindEnvSet:         "EnvSet",
	KindGathering:      "Gathering",
	KindHelperObject:   "HelperObject",
	KindTreasure:       "Treasure",
	KindPopRange:       "PopRange",
	KindExitRange:      "ExitRange",
	KindLVB:            "LVB",
	KindMapRange:       "MapRange",
	KindNaviMeshRange:  "NaviMeshRange",
	KindEventObject:    "EventObject",
	KindEnvLocation:    "EnvLocation",
	KindEventRange:     "EventRange",
	KindRestBonusRange: "RestBonusRange",
	KindQuestMarker:    "QuestMarker",
	KindTimeline:       "Timeline",
	KindCollisionBox:   "CollisionBox",
	KindDoorRange:      "DoorRange",
	KindLineVFX:        "LineVFX",
	KindClientPath:     "ClientPath",
	KindServerPath:     "ServerPath",
	KindGimmickRange:   "GimmickRange",
	KindTargetMarker:   "TargetMarker",
	KindChairMarker:    "ChairMarker",
	KindClickableRange: "ClickableRange",
	KindPrefetchRange:  "PrefetchRange",
	KindFateRange:      "FateRange",
}

// String returns a human-readable kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int32(k))
}

// ParseKind looks a kind up by its String name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Decodable reports whether a decoder is registered for k.
func (k Kind) Decodable() bool {
	_, ok := decoders[k]
	return ok
}

// PayloadSize returns the fixed payload size that follows the header for
// k. The second result is false for kinds without a decoder.
func PayloadSize(k Kind) (int, bool) {
	d, ok := decoders[k]
	if !ok {
		return 0, false
	}
	return d.size, true
}

// RecordSize returns HeaderSize plus the payload size of k.
func RecordSize(k Kind) (int, bool) {
	n, ok := PayloadSize(k)
	if !ok {
		return 0, false
	}
	return HeaderSize + n, true
}
