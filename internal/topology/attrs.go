package topology

import (
	"fmt"
	"strings"
)

// Attrs are the display attributes of a logical unit, derived from its
// representative path (the first by discovery order). All paths to the
// same LU report identical hardware attributes, so one is enough.
type Attrs struct {
	Vendor string
	Model  string
	Rev    string
	Bay    int
	Size   string
}

// Attrs derives display attributes from the unit's first path.
func (lu *LogicalUnit) Attrs() Attrs {
	p := lu.Paths[0]
	return Attrs{
		Vendor: p.Vendor,
		Model:  p.Model,
		Rev:    p.Rev,
		Bay:    p.Bay,
		Size:   FormatSize(p.SizeBytes),
	}
}

// BlockNames returns the unit's block device names joined by commas,
// one per path.
func (lu *LogicalUnit) BlockNames() string {
	names := make([]string, len(lu.Paths))
	for i, p := range lu.Paths {
		names[i] = p.Block
	}
	return strings.Join(names, ",")
}

// SGNames returns the unit's generic scsi device names joined by commas.
func (lu *LogicalUnit) SGNames() string {
	names := make([]string, len(lu.Paths))
	for i, p := range lu.Paths {
		names[i] = p.SG
	}
	return strings.Join(names, ",")
}

// FormatSize renders a byte count the way operators label disks:
// terabytes from 10^12 up, gigabytes below.
func FormatSize(bytes uint64) string {
	if bytes >= 1e12 {
		return fmt.Sprintf("%.1fTB", float64(bytes)/1e12)
	}
	return fmt.Sprintf("%.1fGB", float64(bytes)/1e9)
}
