package topology

import (
	"fmt"
	"sort"
)

// dsu is a disjoint-set-union over enclosure SAS addresses. Device
// counts are small (well under 10^3) so plain path halving without
// union by rank is enough.
type dsu struct {
	parent map[string]string
}

func newDSU() *dsu {
	return &dsu{parent: make(map[string]string)}
}

func (d *dsu) find(x string) string {
	if _, ok := d.parent[x]; !ok {
		d.parent[x] = x
	}
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(a, b string) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[rb] = ra
	}
}

// Cluster partitions units into enclosure groups by transitive
// enclosure sharing. Two enclosures land in the same group whenever any
// logical unit has paths through both, including when a late unit
// bridges two groups that were disjoint up to that point. Units without
// a single resolvable enclosure become orphans.
//
// The partition is independent of unit order; only the ordering of
// groups and of units within a group follows discovery order, so
// repeated runs on unchanged input render identically.
func Cluster(units []*LogicalUnit) *Clusters {
	res := &Clusters{}

	sets := newDSU()
	enclosures := make(map[string]*Enclosure) // by SAS address, first sighting wins
	var encOrder []string                     // discovery order of enclosure addresses

	// unitEncs[i] holds the distinct enclosure addresses of units[i],
	// nil for orphans.
	unitEncs := make([][]string, len(units))

	for i, lu := range units {
		seen := make(map[string]bool)
		var addrs []string
		for _, p := range lu.Paths {
			if p.Enclosure == nil {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("no enclosure set for %s in %s", p.Block, p.SysfsPath))
				continue
			}
			addr := p.Enclosure.SASAddress
			if !seen[addr] {
				seen[addr] = true
				addrs = append(addrs, addr)
			}
			if _, ok := enclosures[addr]; !ok {
				enclosures[addr] = p.Enclosure
				encOrder = append(encOrder, addr)
			}
		}

		if len(addrs) == 0 {
			res.Orphans = append(res.Orphans, lu)
			continue
		}

		for _, addr := range addrs[1:] {
			sets.union(addrs[0], addr)
		}
		unitEncs[i] = addrs
	}

	// Materialize groups in order of first enclosure discovery.
	groups := make(map[string]*Group) // by representative address
	for _, addr := range encOrder {
		root := sets.find(addr)
		g, ok := groups[root]
		if !ok {
			g = &Group{}
			groups[root] = g
			res.Groups = append(res.Groups, g)
		}
		g.Enclosures = append(g.Enclosures, enclosures[addr])
	}

	for i, lu := range units {
		if unitEncs[i] == nil {
			continue
		}
		g := groups[sets.find(unitEncs[i][0])]
		g.Units = append(g.Units, lu)
		if n := len(lu.Paths); n > g.MaxPaths {
			g.MaxPaths = n
		}
	}

	for _, g := range res.Groups {
		sort.Slice(g.Enclosures, func(i, j int) bool {
			return g.Enclosures[i].SASAddress < g.Enclosures[j].SASAddress
		})
	}

	return res
}

// UnderPathed reports whether a unit has fewer paths than the group's
// expected multipath count. Degraded redundancy, not an error.
func (g *Group) UnderPathed(lu *LogicalUnit) bool {
	return len(lu.Paths) < g.MaxPaths
}
