package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Faultbox/zonelayer/pkg/layer"
	"github.com/Faultbox/zonelayer/pkg/lgb"
)

// BNPCGroup is the battle NPCs of one layer.
type BNPCGroup struct {
	Name       string
	GroupID    uint32
	LayerSetID uint32
	NPCs       []*layer.BattleNPC
}

// BNPCGroups collects the battle NPCs of every layer that has any.
func BNPCGroups(files []*lgb.File, opts Options) []BNPCGroup {
	var groups []BNPCGroup
	for _, f := range files {
		for _, l := range f.Layers {
			npcs := l.BattleNPCs()
			if len(npcs) == 0 {
				continue
			}
			groups = append(groups, BNPCGroup{
				Name:    opts.text(l.Name),
				GroupID: l.ID,
				NPCs:    npcs,
			})
		}
	}
	return groups
}

// BNPCSet is one group in the sidecar file.
type BNPCSet struct {
	GroupID    uint32              `json:"groupId"`
	LayerSetID uint32              `json:"layerSetId"`
	BNPCs      map[string]BNPCInfo `json:"bnpcs"`
}

// BNPCInfo is one battle NPC in the sidecar file.
type BNPCInfo struct {
	BaseInfo  BNPCBaseInfo  `json:"baseInfo"`
	PopInfo   BNPCPopInfo   `json:"popInfo"`
	LinkData  BNPCLinkData  `json:"linkData"`
	Behaviour BNPCBehaviour `json:"Behaviour"`
	SenseInfo BNPCSenseInfo `json:"SenseInfo"`
}

type BNPCBaseInfo struct {
	InstanceID        uint32 `json:"instanceId"`
	Position          Vec    `json:"position"`
	Rotation          Float  `json:"rotation"`
	BaseID            uint32 `json:"baseId"`
	NameID            uint32 `json:"nameId"`
	Level             uint16 `json:"level"`
	ActiveType        uint8  `json:"activeType"`
	BoundInstanceID   uint32 `json:"boundInstanceId"`
	FateLayoutLabelID uint32 `json:"fateLayoutLabelId"`
	EquipmentID       uint32 `json:"equipmentId"`
	CustomizeID       uint32 `json:"customizeId"`
}

type BNPCPopInfo struct {
	RepopID            uint8  `json:"repopId"`
	InvalidRepop       int8   `json:"invalidRepop"`
	NonpopInitZone     int8   `json:"nonpopInitZone"`
	Nonpop             int8   `json:"nonpop"`
	PopWeather         uint32 `json:"popWeather"`
	PopTimeStart       uint8  `json:"popTimeStart"`
	PopTimeEnd         uint8  `json:"popTimeEnd"`
	PopInterval        uint8  `json:"popInterval"`
	PopRate            uint8  `json:"popRate"`
	PopEvent           uint8  `json:"popEvent"`
	HorizontalPopRange Float  `json:"horizontalPopRange"`
	VerticalPopRange   Float  `json:"verticalPopRange"`
}

type BNPCLinkData struct {
	LinkGroup      uint8 `json:"linkGroup"`
	LinkFamily     uint8 `json:"linkFamily"`
	LinkRange      uint8 `json:"linkRange"`
	LinkCountLimit uint8 `json:"linkCountLimit"`
	LinkParent     int8  `json:"linkParent"`
	LinkOverride   int8  `json:"linkOverride"`
	LinkReply      int8  `json:"linkReply"`
}

type BNPCBehaviour struct {
	MoveAI         uint32 `json:"moveAI"`
	NormalAI       uint32 `json:"normalAI"`
	WanderingRange uint8  `json:"wanderingRange"`
	RouteID        uint8  `json:"routeId"`
	TerritoryRange uint16 `json:"territoryRange"`
	DropItem       uint32 `json:"dropItem"`
}

// BNPCSenseInfo carries Sense and SenseRange as zero; they live in the
// BNpcBase sheet, not in the layer data.
type BNPCSenseInfo struct {
	SenseRangeRate Float    `json:"senseRangeRate"`
	Sense          [2]uint8 `json:"Sense"`
	SenseRange     [2]uint8 `json:"SenseRange"`
	TerritoryRange uint32   `json:"territoryRange"`
}

func flag8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

// NewBNPCInfo converts one battle NPC.
func NewBNPCInfo(n *layer.BattleNPC) BNPCInfo {
	t := n.Header().Transform
	return BNPCInfo{
		BaseInfo: BNPCBaseInfo{
			InstanceID:        n.Header().InstanceID,
			Position:          vec(t.Translation),
			Rotation:          Float(t.Rotation.Y),
			BaseID:            n.BaseID,
			NameID:            n.NameID,
			Level:             n.Level,
			ActiveType:        n.ActiveType,
			BoundInstanceID:   n.BoundInstanceID,
			FateLayoutLabelID: n.FateLayoutLabelID,
			EquipmentID:       n.EquipmentID,
			CustomizeID:       n.CustomizeID,
		},
		PopInfo: BNPCPopInfo{
			RepopID:            n.RepopID,
			InvalidRepop:       flag8(n.InvalidRepop),
			NonpopInitZone:     flag8(n.NonpopInitZone),
			Nonpop:             flag8(n.Nonpop),
			PopWeather:         n.PopWeather,
			PopTimeStart:       n.PopTimeStart,
			PopTimeEnd:         n.PopTimeEnd,
			PopInterval:        n.PopInterval,
			PopRate:            n.PopRate,
			PopEvent:           n.PopEvent,
			HorizontalPopRange: Float(n.HorizontalPopRange),
			VerticalPopRange:   Float(n.VerticalPopRange),
		},
		LinkData: BNPCLinkData{
			LinkGroup:      n.LinkGroup,
			LinkFamily:     n.LinkFamily,
			LinkRange:      n.LinkRange,
			LinkCountLimit: n.LinkCountLimit,
			LinkParent:     flag8(n.LinkParent),
			LinkOverride:   flag8(n.LinkOverride),
			LinkReply:      flag8(n.LinkReply),
		},
		Behaviour: BNPCBehaviour{
			MoveAI:         n.MoveAI,
			NormalAI:       n.NormalAI,
			WanderingRange: n.WanderingRange,
			RouteID:        n.Route,
			TerritoryRange: n.TerritoryRange,
			DropItem:       n.DropItem,
		},
		SenseInfo: BNPCSenseInfo{
			SenseRangeRate: Float(n.SenseRangeRate),
			TerritoryRange: uint32(n.TerritoryRange),
		},
	}
}

// BattleNPCs builds the sidecar document, keyed by group name. Groups with
// the same name are merged.
func BattleNPCs(groups []BNPCGroup) map[string]BNPCSet {
	doc := make(map[string]BNPCSet, len(groups))
	for _, g := range groups {
		set, ok := doc[g.Name]
		if !ok {
			set = BNPCSet{
				GroupID:    g.GroupID,
				LayerSetID: g.LayerSetID,
				BNPCs:      make(map[string]BNPCInfo, len(g.NPCs)),
			}
		}
		for _, n := range g.NPCs {
			set.BNPCs[strconv.FormatUint(uint64(n.Header().InstanceID), 10)] = NewBNPCInfo(n)
		}
		doc[g.Name] = set
	}
	return doc
}

// WriteBattleNPCs writes the sidecar document as JSON.
func WriteBattleNPCs(w io.Writer, groups []BNPCGroup, indent int) error {
	enc := json.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(BattleNPCs(groups)); err != nil {
		return fmt.Errorf("encoding bnpcs: %w", err)
	}
	return nil
}
