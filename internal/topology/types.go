// Package topology deduplicates SAS end-device paths into logical units
// and clusters the units by the physical enclosures they are reachable
// through. It operates purely on in-memory records; acquisition (sysfs,
// VPD, SES) is injected by the caller.
package topology

// Enclosure is a physical chassis housing one or more disk slots,
// addressable as a SCSI device of its own. The SAS address is the
// identity key used for clustering.
type Enclosure struct {
	SASAddress string `json:"sas_address"`
	Vendor     string `json:"vendor"`
	Model      string `json:"model"`
	SG         string `json:"sg"` // generic scsi device name (sg12), used for SES nickname lookup
}

// DevicePath is one physical access path to a disk. With multipath
// cabling the same disk shows up once per HBA port, each time with its
// own block and sg device. Immutable once built.
type DevicePath struct {
	Vendor    string     `json:"vendor"`
	Model     string     `json:"model"`
	Rev       string     `json:"rev"`
	Bay       int        `json:"bay"`
	Block     string     `json:"block"` // sdX
	SG        string     `json:"sg"`    // sgN
	SizeBytes uint64     `json:"size_bytes"`
	Enclosure *Enclosure `json:"enclosure,omitempty"` // nil when no enclosure_device link exists
	SysfsPath string     `json:"-"`                   // origin of the record, only used in warnings
}

// Record is a raw end-device record as handed over by the device tree
// provider, before logical unit resolution.
type Record struct {
	DevicePath
	RawPg83 []byte // VPD page 0x83 bytes when sysfs exposes them
}

// LogicalUnit is a physical disk. All paths under it address the same
// disk; the identifier is the sole equality key.
type LogicalUnit struct {
	ID    string       `json:"id"`
	Paths []DevicePath `json:"paths"` // discovery order, never empty
}

// Resolver maps a raw record to its vendor-independent logical unit
// identifier. Implementations return ErrIdentifierUnavailable (wrapped
// or bare) when neither the descriptor nor a fallback yields a value.
type Resolver interface {
	Resolve(rawPg83 []byte, blockDev string) (string, error)
}

// Topology is the deduplicated view of all end-device records.
type Topology struct {
	Units    []*LogicalUnit // discovery order
	Skipped  int            // records dropped because no identifier could be resolved
	Warnings []string

	byID map[string]*LogicalUnit
}

// Group is a maximal set of enclosures connected by sharing at least
// one logical unit, plus every unit reachable through them.
type Group struct {
	Enclosures []*Enclosure   // ordered by SAS address
	Units      []*LogicalUnit // discovery order
	MaxPaths   int            // expected multipath count for the group
}

// Clusters is the result of partitioning a topology's units.
type Clusters struct {
	Groups   []*Group
	Orphans  []*LogicalUnit // units with no resolvable enclosure on any path
	Warnings []string
}
