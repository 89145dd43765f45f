package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoID = errors.New("no usable designator")

// mapResolver resolves block device names through a fixed table.
type mapResolver map[string]string

func (m mapResolver) Resolve(raw []byte, blockDev string) (string, error) {
	if id, ok := m[blockDev]; ok {
		return id, nil
	}
	return "", errNoID
}

func rec(block, sg string, bay int, enc *Enclosure) Record {
	return Record{DevicePath: DevicePath{
		Vendor: "ACME", Model: "D1", Rev: "1.0",
		Bay: bay, Block: block, SG: sg,
		SizeBytes: 4000787030016, Enclosure: enc,
	}}
}

func TestAggregateDeduplicatesPaths(t *testing.T) {
	e1 := &Enclosure{SASAddress: "5000ccab0401d23f"}
	records := []Record{
		rec("sda", "sg0", 3, e1),
		rec("sdb", "sg1", 3, e1),
		rec("sdc", "sg2", 4, e1),
	}
	resolver := mapResolver{"sda": "naa.1111", "sdb": "naa.1111", "sdc": "naa.2222"}

	topo := Aggregate(records, resolver)

	require.Len(t, topo.Units, 2)
	assert.Equal(t, 0, topo.Skipped)
	assert.Empty(t, topo.Warnings)

	lu := topo.Unit("naa.1111")
	require.NotNil(t, lu)
	require.Len(t, lu.Paths, 2)
	assert.Equal(t, "sda", lu.Paths[0].Block)
	assert.Equal(t, "sdb", lu.Paths[1].Block)

	// Insertion order of units follows first sighting of each identifier.
	assert.Equal(t, "naa.1111", topo.Units[0].ID)
	assert.Equal(t, "naa.2222", topo.Units[1].ID)
}

func TestAggregateEveryUnitNonEmptyAndKeyed(t *testing.T) {
	resolver := mapResolver{"sda": "lu-a", "sdb": "lu-b", "sdc": "lu-a"}
	topo := Aggregate([]Record{
		rec("sda", "sg0", 0, nil),
		rec("sdb", "sg1", 1, nil),
		rec("sdc", "sg2", 0, nil),
	}, resolver)

	for _, lu := range topo.Units {
		require.NotEmpty(t, lu.Paths, "unit %s has no paths", lu.ID)
		for _, p := range lu.Paths {
			id, err := resolver.Resolve(nil, p.Block)
			require.NoError(t, err)
			assert.Equal(t, lu.ID, id)
		}
	}
}

func TestAggregateSkipsUnresolvableRecords(t *testing.T) {
	resolver := mapResolver{"sda": "naa.1111"}
	topo := Aggregate([]Record{
		rec("sda", "sg0", 0, nil),
		rec("sdx", "sg9", 7, nil), // not in the resolver table
	}, resolver)

	// The failing record is counted and warned about; the rest of the
	// run completes.
	require.Len(t, topo.Units, 1)
	assert.Equal(t, 1, topo.Skipped)
	require.Len(t, topo.Warnings, 1)
	assert.Contains(t, topo.Warnings[0], "sdx")

	clusters := Cluster(topo.Units)
	total := len(clusters.Orphans)
	for _, g := range clusters.Groups {
		total += len(g.Units)
	}
	assert.Equal(t, 1, total, "skipped device must appear in no group and no orphan set")
}
