package topology

import "fmt"

// Aggregate folds raw end-device records into logical units keyed by
// their resolved identifier. A record whose identifier cannot be
// resolved is excluded and counted, never fatal for the run.
func Aggregate(records []Record, r Resolver) *Topology {
	topo := &Topology{byID: make(map[string]*LogicalUnit)}

	for _, rec := range records {
		id, err := r.Resolve(rec.RawPg83, rec.Block)
		if err != nil {
			topo.Skipped++
			topo.Warnings = append(topo.Warnings,
				fmt.Sprintf("no LU identifier for %s: %v", rec.Block, err))
			continue
		}

		lu, ok := topo.byID[id]
		if !ok {
			lu = &LogicalUnit{ID: id}
			topo.byID[id] = lu
			topo.Units = append(topo.Units, lu)
		}
		lu.Paths = append(lu.Paths, rec.DevicePath)
	}

	return topo
}

// Unit returns the logical unit for an identifier, or nil.
func (t *Topology) Unit(id string) *LogicalUnit {
	return t.byID[id]
}
