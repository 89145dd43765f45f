package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/saslab/sasdevices/internal/topology"
)

// Output is the machine-readable shape of a report.
type Output struct {
	Hostname  string     `json:"hostname,omitempty"`
	When      time.Time  `json:"when"`
	Hosts     []string   `json:"hosts"`
	Expanders []string   `json:"expanders"`
	Groups    []GroupOut `json:"groups"`
	Orphans   []UnitOut  `json:"orphans,omitempty"`
	Skipped   int        `json:"skipped"`
	Warnings  []string   `json:"warnings,omitempty"`
}

type GroupOut struct {
	Label      string                `json:"label"`
	Enclosures []*topology.Enclosure `json:"enclosures"`
	MaxPaths   int                   `json:"max_paths"`
	Units      []UnitOut             `json:"units"`
}

type UnitOut struct {
	ID          string `json:"id"`
	Vendor      string `json:"vendor"`
	Model       string `json:"model"`
	Rev         string `json:"rev"`
	Bay         int    `json:"bay"`
	Size        string `json:"size"`
	Paths       int    `json:"paths"`
	UnderPathed bool   `json:"under_pathed,omitempty"`
	Blocks      string `json:"blocks"`
	SGs         string `json:"sgs"`
}

// BuildOutput flattens a report for JSON encoding or snapshot storage.
func BuildOutput(rep *Report, namer Namer) *Output {
	out := &Output{
		Hostname:  rep.Hostname,
		When:      rep.When,
		Hosts:     rep.Hosts,
		Expanders: rep.Expanders,
		Skipped:   rep.Skipped,
	}
	out.Warnings = append(out.Warnings, rep.Warnings...)
	out.Warnings = append(out.Warnings, rep.Clusters.Warnings...)

	for _, g := range rep.Clusters.Groups {
		gout := GroupOut{
			Label:      GroupLabel(g, namer),
			Enclosures: g.Enclosures,
			MaxPaths:   g.MaxPaths,
		}
		for _, lu := range g.Units {
			gout.Units = append(gout.Units, unitOut(lu, g.MaxPaths))
		}
		out.Groups = append(out.Groups, gout)
	}
	for _, lu := range rep.Clusters.Orphans {
		out.Orphans = append(out.Orphans, unitOut(lu, 0))
	}
	return out
}

func unitOut(lu *topology.LogicalUnit, maxPaths int) UnitOut {
	a := lu.Attrs()
	return UnitOut{
		ID:          lu.ID,
		Vendor:      a.Vendor,
		Model:       a.Model,
		Rev:         a.Rev,
		Bay:         a.Bay,
		Size:        a.Size,
		Paths:       len(lu.Paths),
		UnderPathed: maxPaths > 0 && len(lu.Paths) < maxPaths,
		Blocks:      lu.BlockNames(),
		SGs:         lu.SGNames(),
	}
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, rep *Report, namer Namer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutput(rep, namer))
}
