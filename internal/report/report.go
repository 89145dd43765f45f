// Package report renders an aggregated SAS topology for operators. All
// final text layout lives here; the topology core only hands over data
// structures.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/saslab/sasdevices/internal/topology"
)

// ANSI bits for warning/marker highlighting on TTYs.
const (
	colYellow = "\033[33m"
	colReset  = "\033[0m"
)

// Namer gives enclosures their display names. A false return means no
// nickname exists and the header falls back to vendor/model/address.
type Namer interface {
	Nickname(enc *topology.Enclosure) (string, bool)
}

// Options control rendering.
type Options struct {
	Verbose bool
	Color   bool
}

// Report is everything one enumeration run produced.
type Report struct {
	Hostname  string
	When      time.Time
	Hosts     []string
	Expanders []string
	Clusters  *topology.Clusters
	Skipped   int
	Warnings  []string // identifier-resolution warnings from aggregation
	NotFound  []string // device classes absent from the tree
}

// GroupLabel formats a group header from its enclosures, nickname when
// available, vendor/model/address inline otherwise. Shared with the
// snapshot store so stored labels match what the operator saw.
func GroupLabel(g *topology.Group, namer Namer) string {
	label := ""
	for _, enc := range g.Enclosures {
		if nick, ok := namer.Nickname(enc); ok {
			label += fmt.Sprintf("[%s]", nick)
		} else {
			label += fmt.Sprintf("[%s %s, addr: %s]", enc.Vendor, enc.Model, enc.SASAddress)
		}
	}
	return label
}

// Render writes the full text report.
func Render(w io.Writer, rep *Report, namer Namer, opts Options) {
	warn := func(format string, args ...any) {
		if opts.Color {
			fmt.Fprintf(w, colYellow+format+colReset+"\n", args...)
		} else {
			fmt.Fprintf(w, format+"\n", args...)
		}
	}

	for _, class := range rep.NotFound {
		warn("Not found: %s", class)
	}

	if opts.Verbose && len(rep.Hosts) > 0 {
		fmt.Fprintf(w, "Found %d SAS hosts: %s\n", len(rep.Hosts), strings.Join(rep.Hosts, ","))
	} else {
		fmt.Fprintf(w, "Found %d SAS hosts\n", len(rep.Hosts))
	}
	if opts.Verbose && len(rep.Expanders) > 0 {
		fmt.Fprintf(w, "Found %d SAS expanders: %s\n", len(rep.Expanders), strings.Join(rep.Expanders, ","))
	} else {
		fmt.Fprintf(w, "Found %d SAS expanders\n", len(rep.Expanders))
	}

	for _, msg := range rep.Warnings {
		warn("Warning: %s", msg)
	}
	for _, msg := range rep.Clusters.Warnings {
		warn("Warning: %s", msg)
	}

	fmt.Fprintf(w, "Found %d enclosure groups\n", len(rep.Clusters.Groups))
	if len(rep.Clusters.Orphans) > 0 {
		fmt.Fprintf(w, "Found %d orphan devices\n", len(rep.Clusters.Orphans))
	}

	for _, g := range rep.Clusters.Groups {
		fmt.Fprintf(w, "Enclosure group: %s\n", GroupLabel(g, namer))
		if opts.Verbose {
			renderVerbose(w, g)
		} else {
			renderFolded(w, g)
		}
		fmt.Fprintf(w, "Total: %d block devices in enclosure group\n", len(g.Units))
	}

	if len(rep.Clusters.Orphans) > 0 {
		fmt.Fprintln(w, "Orphan devices:")
		for _, lu := range rep.Clusters.Orphans {
			renderUnit(w, lu, 0)
		}
	}

	if rep.Skipped > 0 {
		warn("Skipped %d unidentifiable devices", rep.Skipped)
	}
}

// renderFolded prints the compact per-profile summary.
func renderFolded(w io.Writer, g *topology.Group) {
	fmt.Fprintf(w, "NUM   %12s %12s %6s %6s\n", "VENDOR", "MODEL", "REV", "PATHS")
	for _, f := range topology.Fold(g) {
		paths := fmt.Sprintf("%d ", f.Profile.Paths)
		if f.Profile.Paths < g.MaxPaths {
			paths = fmt.Sprintf("%d*", f.Profile.Paths)
		}
		fmt.Fprintf(w, "%3d x %12s %12s %6s %6s\n",
			len(f.Units), f.Profile.Vendor, f.Profile.Model, f.Profile.Rev, paths)
	}
}

// renderVerbose prints one line per logical unit, bay order ascending.
func renderVerbose(w io.Writer, g *topology.Group) {
	units := make([]*topology.LogicalUnit, len(g.Units))
	copy(units, g.Units)
	sortUnitsByBay(units)
	for _, lu := range units {
		renderUnit(w, lu, g.MaxPaths)
	}
}

// renderUnit prints a single unit row. maxPaths of zero disables the
// under-path marker (orphan listing).
func renderUnit(w io.Writer, lu *topology.LogicalUnit, maxPaths int) {
	a := lu.Attrs()
	paths := fmt.Sprintf("%d", len(lu.Paths))
	if maxPaths > 0 && len(lu.Paths) < maxPaths {
		paths += "*"
	}
	fmt.Fprintf(w, "%3d %25s %12s %12s %-3s %10s %12s %8s %s\n",
		a.Bay, lu.ID, lu.BlockNames(), lu.SGNames(), paths,
		a.Vendor, a.Model, a.Rev, a.Size)
}

func sortUnitsByBay(units []*topology.LogicalUnit) {
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Paths[0].Bay < units[j].Paths[0].Bay
	})
}
