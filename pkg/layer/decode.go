package layer

import "fmt"

// decodeFunc decodes the payload of one record kind. The caller has already
// checked that HeaderSize plus the kind's payload size fits in the buffer.
type decodeFunc func(src *Source, off RecordOffset, h Header) (Record, error)

type decoder struct {
	size   int // payload bytes after the header
	decode decodeFunc
}

// decoders is the format contract: one entry per decodable kind, giving the
// fixed payload size and the decode function. Records carry no length of
// their own, so this table must change together with the format.
var decoders = map[Kind]decoder{
	KindBackground:   {size: 32, decode: decodeBackground},
	KindSharedGroup:  {size: 44, decode: decodeSharedGroup},
	KindEventNPC:     {size: 40, decode: decodeEventNPC},
	KindBattleNPC:    {size: 104, decode: decodeBattleNPC},
	KindPopRange:     {size: 24, decode: decodePopRange},
	KindExitRange:    {size: 40, decode: decodeExitRange},
	KindMapRange:     {size: 56, decode: decodeMapRange},
	KindEventObject:  {size: 20, decode: decodeEventObject},
	KindEventRange:   {size: 12, decode: decodeEventRange},
	KindCollisionBox: {size: 28, decode: decodeCollisionBox},
	KindServerPath:   {size: 16, decode: decodeServerPath},
}

// DecodeRecord decodes the record at off. A kind without a registered
// decoder yields *UnknownKindError and no payload byte is read.
func DecodeRecord(src *Source, off RecordOffset) (Record, error) {
	h, err := ReadHeader(src, off)
	if err != nil {
		return nil, err
	}

	d, ok := decoders[h.Kind]
	if !ok {
		return nil, &UnknownKindError{Kind: h.Kind}
	}

	size := int64(HeaderSize + d.size)
	if !src.Fits(int64(off), size) {
		return nil, fmt.Errorf("%w: %s record at %d needs %d bytes, buffer is %d", ErrOutOfBounds, h.Kind, off, size, src.Len())
	}

	return d.decode(src, off, h)
}

// fieldReader reads record fields at record-relative positions and keeps
// the first error, tagged with the field being read.
type fieldReader struct {
	src *Source
	off RecordOffset
	err error
}

func newFieldReader(src *Source, off RecordOffset) *fieldReader {
	return &fieldReader{src: src, off: off}
}

func (r *fieldReader) fail(field string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("reading %s: %w", field, err)
	}
}

func (r *fieldReader) at(rel int) int64 {
	return int64(r.off) + int64(rel)
}

func (r *fieldReader) u8(rel int, field string) uint8 {
	v, err := r.src.U8(r.at(rel))
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) flag(rel int, field string) bool {
	return r.u8(rel, field) != 0
}

func (r *fieldReader) u16(rel int, field string) uint16 {
	v, err := r.src.U16(r.at(rel))
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) i16(rel int, field string) int16 {
	return int16(r.u16(rel, field))
}

func (r *fieldReader) u32(rel int, field string) uint32 {
	v, err := r.src.U32(r.at(rel))
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) i32(rel int, field string) int32 {
	return int32(r.u32(rel, field))
}

func (r *fieldReader) f32(rel int, field string) float32 {
	v, err := r.src.F32(r.at(rel))
	if err != nil {
		r.fail(field, err)
	}
	return v
}

func (r *fieldReader) text(ref int32, field string) string {
	if r.err != nil {
		return ""
	}
	s, err := ResolveText(r.src, r.off, ref)
	if err != nil {
		r.fail(field, err)
	}
	return s
}

func (r *fieldReader) triggerBox(rel int) TriggerBox {
	return TriggerBox{
		Shape:    TriggerShape(r.i32(rel, "trigger shape")),
		Priority: r.i16(rel+4, "trigger priority"),
		Enabled:  r.flag(rel+6, "trigger enabled"),
	}
}

func (r *fieldReader) positions(refRel, countRel int, field string) []Vec3 {
	ref := r.i32(refRel, field+" ref")
	count := r.i32(countRel, field+" count")
	if r.err != nil {
		return nil
	}
	list, err := ResolveList(r.src, r.off, ref, count, vec3Size, readVec3)
	if err != nil {
		r.fail(field, err)
	}
	return list
}

func readVec3(src *Source, off int64) (Vec3, error) {
	return src.Vec3(off)
}

func readOverriddenMember(src *Source, off int64) (OverriddenMember, error) {
	kind, err := src.I32(off)
	if err != nil {
		return OverriddenMember{}, err
	}
	id, err := src.U32(off + 4)
	if err != nil {
		return OverriddenMember{}, err
	}
	return OverriddenMember{Kind: Kind(kind), InstanceID: id}, nil
}

func readControlPoint(src *Source, off int64) (ControlPoint, error) {
	pos, err := src.Vec3(off)
	if err != nil {
		return ControlPoint{}, err
	}
	id, err := src.U16(off + 12)
	if err != nil {
		return ControlPoint{}, err
	}
	selected, err := src.Bool(off + 14)
	if err != nil {
		return ControlPoint{}, err
	}
	return ControlPoint{Position: pos, PointID: id, Selected: selected}, nil
}

func readBase(r *fieldReader, h Header) Base {
	return Base{Hdr: h, NameText: r.text(h.NameRef, "name")}
}

func decodeBackground(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	bg := &Background{
		Base:                     readBase(r, h),
		CollisionType:            CollisionType(r.i32(56, "collision type")),
		AttributeMask:            r.u32(60, "attribute mask"),
		Attribute:                r.u32(64, "attribute"),
		CollisionConfig:          r.i32(68, "collision config"),
		Visible:                  r.flag(72, "visible"),
		RenderShadowEnabled:      r.flag(73, "shadow enabled"),
		RenderLightShadowEnabled: r.flag(74, "light shadow enabled"),
		RenderModelClipRange:     r.f32(76, "clip range"),
	}
	bg.AssetPath = r.text(r.i32(48, "asset path ref"), "asset path")
	bg.CollisionAssetPath = r.text(r.i32(52, "collision path ref"), "collision path")
	if r.err != nil {
		return nil, r.err
	}
	return bg, nil
}

func decodeSharedGroup(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	sg := &SharedGroup{
		Base:                               readBase(r, h),
		InitialDoorState:                   DoorState(r.i32(52, "door state")),
		InitialRotationState:               RotationState(r.i32(64, "rotation state")),
		RandomTimelineAutoPlay:             r.flag(68, "timeline auto play"),
		RandomTimelineLoopPlayback:         r.flag(69, "timeline loop playback"),
		IsCollisionControllableWithoutEObj: r.flag(70, "collision controllable"),
		BoundClientPathInstanceID:          r.u32(72, "bound client path"),
		MovePathSettings:                   r.i32(76, "move path settings"),
		NotCreateNavimeshDoor:              r.flag(80, "navimesh door"),
		InitialTransformState:              TimelineState(r.i32(84, "transform state")),
		InitialColorState:                  TimelineState(r.i32(88, "color state")),
	}
	sg.AssetPath = r.text(r.i32(48, "asset path ref"), "asset path")

	ref := r.i32(56, "overridden members ref")
	count := r.i32(60, "overridden members count")
	if r.err != nil {
		return nil, r.err
	}
	members, err := ResolveList(src, off, ref, count, 8, readOverriddenMember)
	if err != nil {
		return nil, fmt.Errorf("reading overridden members: %w", err)
	}
	sg.OverriddenMembers = members
	return sg, nil
}

func readNPC(r *fieldReader) NPC {
	return NPC{
		BaseID:         r.u32(48, "base id"),
		PopWeather:     r.u32(52, "pop weather"),
		PopTimeStart:   r.u8(56, "pop time start"),
		PopTimeEnd:     r.u8(57, "pop time end"),
		MoveAI:         r.u32(60, "move ai"),
		WanderingRange: r.u8(64, "wandering range"),
		Route:          r.u8(65, "route"),
		EventGroup:     r.u16(66, "event group"),
	}
}

func decodeEventNPC(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	npc := &EventNPC{
		Base:     readBase(r, h),
		NPC:      readNPC(r),
		Behavior: r.u32(76, "behavior"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return npc, nil
}

func decodeBattleNPC(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	npc := &BattleNPC{
		Base:               readBase(r, h),
		NPC:                readNPC(r),
		NameID:             r.u32(76, "name id"),
		DropItem:           r.u32(80, "drop item"),
		SenseRangeRate:     r.f32(84, "sense range rate"),
		Level:              r.u16(88, "level"),
		ActiveType:         r.u8(90, "active type"),
		PopInterval:        r.u8(91, "pop interval"),
		PopRate:            r.u8(92, "pop rate"),
		PopEvent:           r.u8(93, "pop event"),
		LinkGroup:          r.u8(94, "link group"),
		LinkFamily:         r.u8(95, "link family"),
		LinkRange:          r.u8(96, "link range"),
		LinkCountLimit:     r.u8(97, "link count limit"),
		NonpopInitZone:     r.flag(98, "nonpop init zone"),
		InvalidRepop:       r.flag(99, "invalid repop"),
		LinkParent:         r.flag(100, "link parent"),
		LinkOverride:       r.flag(101, "link override"),
		LinkReply:          r.flag(102, "link reply"),
		Nonpop:             r.flag(103, "nonpop"),
		HorizontalPopRange: r.f32(112, "horizontal pop range"),
		VerticalPopRange:   r.f32(116, "vertical pop range"),
		BaseDataID:         r.i32(120, "base data id"),
		RepopID:            r.u8(124, "repop id"),
		RankID:             r.u8(125, "rank id"),
		TerritoryRange:     r.u16(126, "territory range"),
		BoundInstanceID:    r.u32(128, "bound instance id"),
		FateLayoutLabelID:  r.u32(132, "fate layout label"),
		NormalAI:           r.u32(136, "normal ai"),
		ServerPathID:       r.u32(140, "server path id"),
		EquipmentID:        r.u32(144, "equipment id"),
		CustomizeID:        r.u32(148, "customize id"),
	}
	npc.Positions = r.positions(104, 108, "relative positions")
	if r.err != nil {
		return nil, r.err
	}
	return npc, nil
}

func decodePopRange(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	pop := &PopRange{
		Base:             readBase(r, h),
		PopType:          PopType(r.u32(48, "pop type")),
		InnerRadiusRatio: r.f32(60, "inner radius ratio"),
		Index:            r.u8(64, "index"),
	}
	pop.Positions = r.positions(52, 56, "relative positions")
	if r.err != nil {
		return nil, r.err
	}
	return pop, nil
}

func decodeEventObject(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	obj := &EventObject{
		Base:             readBase(r, h),
		BaseID:           r.u32(48, "base id"),
		BoundInstanceID:  r.u32(52, "bound instance id"),
		LinkedInstanceID: r.u32(56, "linked instance id"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return obj, nil
}

func decodeEventRange(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	er := &EventRange{
		Base: readBase(r, h),
		Box:  r.triggerBox(HeaderSize),
	}
	if r.err != nil {
		return nil, r.err
	}
	return er, nil
}

func decodeExitRange(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	const p = HeaderSize + triggerBoxSize
	exit := &ExitRange{
		Base:              readBase(r, h),
		Box:               r.triggerBox(HeaderSize),
		ExitType:          r.u32(p, "exit type"),
		ZoneID:            r.u16(p+4, "zone id"),
		DestTerritoryType: r.u16(p+6, "destination territory"),
		Index:             r.i32(p+8, "index"),
		DestInstanceID:    r.u32(p+12, "destination instance"),
		ReturnInstanceID:  r.u32(p+16, "return instance"),
		Direction:         r.f32(p+20, "direction"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return exit, nil
}

func decodeMapRange(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	const p = HeaderSize + triggerBoxSize
	mr := &MapRange{
		Base:               readBase(r, h),
		Box:                r.triggerBox(HeaderSize),
		MapID:              r.u32(p, "map id"),
		PlaceNameBlock:     r.u32(p+4, "place name block"),
		PlaceNameSpot:      r.u32(p+8, "place name spot"),
		BGM:                r.u32(p+12, "bgm"),
		Weather:            r.u32(p+16, "weather"),
		HousingBlockID:     r.u8(p+30, "housing block id"),
		RestBonusEffective: r.flag(p+31, "rest bonus effective"),
		DiscoveryIndex:     r.u8(p+32, "discovery index"),
		Enabled: MapRangeFlags{
			Map:               r.flag(p+33, "map enabled"),
			PlaceName:         r.flag(p+34, "place name enabled"),
			Discovery:         r.flag(p+35, "discovery enabled"),
			BGM:               r.flag(p+36, "bgm enabled"),
			Weather:           r.flag(p+37, "weather enabled"),
			RestBonus:         r.flag(p+38, "rest bonus enabled"),
			BGMPlayZoneInOnly: r.flag(p+39, "bgm zone-in only"),
			Lift:              r.flag(p+40, "lift enabled"),
			Housing:           r.flag(p+41, "housing enabled"),
		},
	}
	if r.err != nil {
		return nil, r.err
	}
	return mr, nil
}

func decodeCollisionBox(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	const p = HeaderSize + triggerBoxSize
	cb := &CollisionBox{
		Base:          readBase(r, h),
		Box:           r.triggerBox(HeaderSize),
		Attribute:     r.u32(p, "attribute"),
		AttributeMask: r.u32(p+4, "attribute mask"),
		ResourceID:    r.u32(p+8, "resource id"),
		PushPlayerOut: r.flag(p+12, "push player out"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return cb, nil
}

func decodeServerPath(src *Source, off RecordOffset, h Header) (Record, error) {
	r := newFieldReader(src, off)
	sp := &ServerPath{Base: readBase(r, h)}

	ref := r.i32(48, "control points ref")
	count := r.i32(52, "control points count")
	if r.err != nil {
		return nil, r.err
	}
	points, err := ResolveList(src, off, ref, count, controlPointSize, readControlPoint)
	if err != nil {
		return nil, fmt.Errorf("reading control points: %w", err)
	}
	sp.ControlPoints = points
	return sp, nil
}
