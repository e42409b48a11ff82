package layer

// CountByKind returns the number of decoded records of each kind.
func (r *Result) CountByKind() map[Kind]int {
	counts := make(map[Kind]int)
	for _, rec := range r.Records {
		counts[rec.Kind()]++
	}
	return counts
}

// SkippedByReason counts skipped records per error class.
func (r *Result) SkippedByReason() map[error]int {
	counts := make(map[error]int)
	for _, s := range r.Skipped {
		counts[Reason(s.Err)]++
	}
	return counts
}

// ByInstanceID returns the first record with the given instance id.
func (r *Result) ByInstanceID(id uint32) (Record, bool) {
	for _, rec := range r.Records {
		if rec.Header().InstanceID == id {
			return rec, true
		}
	}
	return nil, false
}

// OfKind returns all records of kind k.
func (r *Result) OfKind(k Kind) []Record {
	var out []Record
	for _, rec := range r.Records {
		if rec.Kind() == k {
			out = append(out, rec)
		}
	}
	return out
}

// PopRanges returns all pop range records.
func (r *Result) PopRanges() []*PopRange {
	var out []*PopRange
	for _, rec := range r.Records {
		if pr, ok := rec.(*PopRange); ok {
			out = append(out, pr)
		}
	}
	return out
}

// BattleNPCs returns all battle NPC records.
func (r *Result) BattleNPCs() []*BattleNPC {
	var out []*BattleNPC
	for _, rec := range r.Records {
		if npc, ok := rec.(*BattleNPC); ok {
			out = append(out, npc)
		}
	}
	return out
}

// ExitRanges returns all exit range records.
func (r *Result) ExitRanges() []*ExitRange {
	var out []*ExitRange
	for _, rec := range r.Records {
		if exit, ok := rec.(*ExitRange); ok {
			out = append(out, exit)
		}
	}
	return out
}

// MapRanges returns all map range records.
func (r *Result) MapRanges() []*MapRange {
	var out []*MapRange
	for _, rec := range r.Records {
		if mr, ok := rec.(*MapRange); ok {
			out = append(out, mr)
		}
	}
	return out
}

// TriggerVolumes returns every record that embeds a trigger box.
func (r *Result) TriggerVolumes() []TriggerVolume {
	var out []TriggerVolume
	for _, rec := range r.Records {
		if tv, ok := rec.(TriggerVolume); ok {
			out = append(out, tv)
		}
	}
	return out
}

// AssetPaths returns the distinct model, collision and shared group paths
// referenced by the layer, in first-seen order.
func (r *Result) AssetPaths() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, rec := range r.Records {
		switch v := rec.(type) {
		case *Background:
			add(v.AssetPath)
			add(v.CollisionAssetPath)
		case *SharedGroup:
			add(v.AssetPath)
		}
	}
	return out
}
