package layer

import "fmt"

// Record is one decoded layer object. The concrete type is one of
// *Background, *SharedGroup, *PopRange, *EventNPC, *BattleNPC,
// *EventObject, *EventRange, *ExitRange, *MapRange, *CollisionBox or
// *ServerPath. Records are immutable once returned and own all their data.
type Record interface {
	Header() Header
	Kind() Kind
	Name() string
	record()
}

// Base holds the fields every record shares.
type Base struct {
	Hdr      Header
	NameText string
}

// Header returns the record header.
func (b *Base) Header() Header { return b.Hdr }

// Kind returns the record discriminant.
func (b *Base) Kind() Kind { return b.Hdr.Kind }

// Name returns the resolved instance name, "" when the record has none.
func (b *Base) Name() string { return b.NameText }

func (b *Base) record() {}

// CollisionType selects how a background model collides.
type CollisionType int32

// Collision types.
const (
	CollisionTypeNone    CollisionType = 0
	CollisionTypeReplace CollisionType = 1
	CollisionTypeBox     CollisionType = 2
)

// String returns a human-readable collision type name.
func (t CollisionType) String() string {
	switch t {
	case CollisionTypeNone:
		return "None"
	case CollisionTypeReplace:
		return "Replace"
	case CollisionTypeBox:
		return "Box"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// Background is a static piece of zone geometry.
type Background struct {
	Base
	AssetPath                string
	CollisionAssetPath       string
	CollisionType            CollisionType
	AttributeMask            uint32
	Attribute                uint32
	CollisionConfig          int32
	Visible                  bool
	RenderShadowEnabled      bool
	RenderLightShadowEnabled bool
	RenderModelClipRange     float32
}

// DoorState is the initial state of a shared group door.
type DoorState int32

// Door states.
const (
	DoorAuto   DoorState = 1
	DoorOpen   DoorState = 2
	DoorClosed DoorState = 3
)

// RotationState is the initial rotation state of a shared group.
type RotationState int32

// Rotation states.
const (
	RotationRounding RotationState = 1
	RotationStopped  RotationState = 2
)

// TimelineState is the initial playback state of a transform or color
// timeline.
type TimelineState int32

// Timeline states.
const (
	TimelinePlay   TimelineState = 0
	TimelineStop   TimelineState = 1
	TimelineReplay TimelineState = 2
	TimelineReset  TimelineState = 3
)

// OverriddenMember names a group member whose settings the instance
// overrides.
type OverriddenMember struct {
	Kind       Kind
	InstanceID uint32
}

// SharedGroup is an instance of a reusable, possibly animated, asset group.
type SharedGroup struct {
	Base
	AssetPath                          string
	InitialDoorState                   DoorState
	OverriddenMembers                  []OverriddenMember
	InitialRotationState               RotationState
	RandomTimelineAutoPlay             bool
	RandomTimelineLoopPlayback         bool
	IsCollisionControllableWithoutEObj bool
	BoundClientPathInstanceID          uint32
	MovePathSettings                   int32
	NotCreateNavimeshDoor              bool
	InitialTransformState              TimelineState
	InitialColorState                  TimelineState
}

// PopType selects what a pop range spawns.
type PopType uint32

// Pop types.
const (
	PopPC      PopType = 1
	PopNPC     PopType = 2
	PopContent PopType = 3
)

// String returns a human-readable pop type name.
func (t PopType) String() string {
	switch t {
	case PopPC:
		return "PC"
	case PopNPC:
		return "NPC"
	case PopContent:
		return "Content"
	default:
		return fmt.Sprintf("Unknown(%d)", t)
	}
}

// PopRange describes where entities spawn.
type PopRange struct {
	Base
	PopType          PopType
	Positions        []Vec3 // relative to the record transform
	InnerRadiusRatio float32
	Index            uint8
}

// NPC holds the fields shared by event and battle NPCs.
type NPC struct {
	BaseID         uint32
	PopWeather     uint32
	PopTimeStart   uint8
	PopTimeEnd     uint8
	MoveAI         uint32
	WanderingRange uint8
	Route          uint8
	EventGroup     uint16
}

// EventNPC is a non-combat NPC placement.
type EventNPC struct {
	Base
	NPC
	Behavior uint32
}

// BattleNPC is a hostile NPC placement.
type BattleNPC struct {
	Base
	NPC
	NameID             uint32
	DropItem           uint32
	SenseRangeRate     float32
	Level              uint16
	ActiveType         uint8
	PopInterval        uint8
	PopRate            uint8
	PopEvent           uint8
	LinkGroup          uint8
	LinkFamily         uint8
	LinkRange          uint8
	LinkCountLimit     uint8
	NonpopInitZone     bool
	InvalidRepop       bool
	LinkParent         bool
	LinkOverride       bool
	LinkReply          bool
	Nonpop             bool
	Positions          []Vec3
	HorizontalPopRange float32
	VerticalPopRange   float32
	BaseDataID         int32
	RepopID            uint8
	RankID             uint8
	TerritoryRange     uint16
	BoundInstanceID    uint32
	FateLayoutLabelID  uint32
	NormalAI           uint32
	ServerPathID       uint32
	EquipmentID        uint32
	CustomizeID        uint32
}

// EventObject is an interactable object placement.
type EventObject struct {
	Base
	BaseID           uint32
	BoundInstanceID  uint32
	LinkedInstanceID uint32
}

// TriggerShape is the volume shape of a trigger box.
type TriggerShape int32

// Trigger shapes.
const (
	ShapeBox            TriggerShape = 1
	ShapeSphere         TriggerShape = 2
	ShapeCylinder       TriggerShape = 3
	ShapeBoard          TriggerShape = 4
	ShapeMesh           TriggerShape = 5
	ShapeBoardBothSides TriggerShape = 6
)

// String returns a human-readable shape name.
func (s TriggerShape) String() string {
	switch s {
	case ShapeBox:
		return "Box"
	case ShapeSphere:
		return "Sphere"
	case ShapeCylinder:
		return "Cylinder"
	case ShapeBoard:
		return "Board"
	case ShapeMesh:
		return "Mesh"
	case ShapeBoardBothSides:
		return "BoardBothSides"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// TriggerBox is the volume description embedded in every trigger record.
type TriggerBox struct {
	Shape    TriggerShape
	Priority int16
	Enabled  bool
}

const triggerBoxSize = 12

// TriggerVolume is implemented by every record that embeds a TriggerBox.
type TriggerVolume interface {
	Record
	Trigger() TriggerBox
}

// EventRange is a scripted event trigger.
type EventRange struct {
	Base
	Box TriggerBox
}

// Trigger returns the trigger box.
func (r *EventRange) Trigger() TriggerBox { return r.Box }

// ExitRange moves players to another zone.
type ExitRange struct {
	Base
	Box               TriggerBox
	ExitType          uint32
	ZoneID            uint16
	DestTerritoryType uint16
	Index             int32
	DestInstanceID    uint32
	ReturnInstanceID  uint32
	Direction         float32
}

// Trigger returns the trigger box.
func (r *ExitRange) Trigger() TriggerBox { return r.Box }

// MapRangeFlags are the enable switches of a map range.
type MapRangeFlags struct {
	Map               bool
	PlaceName         bool
	Discovery         bool
	BGM               bool
	Weather           bool
	RestBonus         bool
	BGMPlayZoneInOnly bool
	Lift              bool
	Housing           bool
}

// MapRange assigns map, place name, music and weather to an area.
type MapRange struct {
	Base
	Box                TriggerBox
	MapID              uint32
	PlaceNameBlock     uint32
	PlaceNameSpot      uint32
	BGM                uint32
	Weather            uint32
	HousingBlockID     uint8
	RestBonusEffective bool
	DiscoveryIndex     uint8
	Enabled            MapRangeFlags
}

// Trigger returns the trigger box.
func (r *MapRange) Trigger() TriggerBox { return r.Box }

// CollisionBox is an invisible collision volume.
type CollisionBox struct {
	Base
	Box           TriggerBox
	Attribute     uint32
	AttributeMask uint32
	ResourceID    uint32
	PushPlayerOut bool
}

// Trigger returns the trigger box.
func (r *CollisionBox) Trigger() TriggerBox { return r.Box }

// ControlPoint is one point of a server path.
type ControlPoint struct {
	Position Vec3
	PointID  uint16
	Selected bool
}

const controlPointSize = 16

// ServerPath is a server-side movement path.
type ServerPath struct {
	Base
	ControlPoints []ControlPoint
}
