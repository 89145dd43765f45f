package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unit(id string, paths ...DevicePath) *LogicalUnit {
	return &LogicalUnit{ID: id, Paths: paths}
}

func path(block string, enc *Enclosure) DevicePath {
	return DevicePath{
		Vendor: "ACME", Model: "D1", Rev: "1.0",
		Block: block, SG: "sg_" + block,
		SysfsPath: "/sys/class/sas_end_device/" + block,
		Enclosure: enc,
	}
}

func TestClusterSeparateEnclosures(t *testing.T) {
	e1 := &Enclosure{SASAddress: "e1"}
	e2 := &Enclosure{SASAddress: "e2"}

	res := Cluster([]*LogicalUnit{
		unit("LU1", path("sda", e1), path("sdb", e1)),
		unit("LU2", path("sdc", e2)),
	})

	require.Len(t, res.Groups, 2)
	assert.Empty(t, res.Orphans)
	require.Len(t, res.Groups[0].Units, 1)
	require.Len(t, res.Groups[1].Units, 1)
	assert.Equal(t, "LU1", res.Groups[0].Units[0].ID)
	assert.Equal(t, "LU2", res.Groups[1].Units[0].ID)
	assert.Equal(t, 2, res.Groups[0].MaxPaths)
	assert.Equal(t, 1, res.Groups[1].MaxPaths)
}

func TestClusterOrphansWithWarnings(t *testing.T) {
	res := Cluster([]*LogicalUnit{
		unit("LU3", path("sda", nil), path("sdb", nil)),
	})

	assert.Empty(t, res.Groups)
	require.Len(t, res.Orphans, 1)
	assert.Equal(t, "LU3", res.Orphans[0].ID)

	// One warning per enclosure-less path, naming block device and origin.
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "sda")
	assert.Contains(t, res.Warnings[0], "/sys/class/sas_end_device/sda")
	assert.Contains(t, res.Warnings[1], "sdb")
}

func TestClusterSharedEnclosureMerges(t *testing.T) {
	e1 := &Enclosure{SASAddress: "e1"}
	e2 := &Enclosure{SASAddress: "e2"}

	// LU-b straddles both enclosures, pulling them into one group.
	res := Cluster([]*LogicalUnit{
		unit("LU-a", path("sda", e1)),
		unit("LU-b", path("sdb", e1), path("sdc", e2)),
		unit("LU-c", path("sdd", e2)),
	})

	require.Len(t, res.Groups, 1)
	assert.Len(t, res.Groups[0].Enclosures, 2)
	assert.Len(t, res.Groups[0].Units, 3)
}

func TestClusterLateBridgeJoinsEarlierGroups(t *testing.T) {
	e1 := &Enclosure{SASAddress: "e1"}
	e2 := &Enclosure{SASAddress: "e2"}

	// The bridging unit arrives after both groups already exist. The
	// partition must still be fully transitive regardless of order.
	orders := [][]*LogicalUnit{
		{
			unit("LU-a", path("sda", e1)),
			unit("LU-b", path("sdb", e2)),
			unit("LU-bridge", path("sdc", e1), path("sdd", e2)),
		},
		{
			unit("LU-bridge", path("sdc", e1), path("sdd", e2)),
			unit("LU-a", path("sda", e1)),
			unit("LU-b", path("sdb", e2)),
		},
	}

	for _, units := range orders {
		res := Cluster(units)
		require.Len(t, res.Groups, 1)
		assert.Len(t, res.Groups[0].Enclosures, 2)
		assert.Len(t, res.Groups[0].Units, 3)
	}
}

func TestClusterUnderPathedMarking(t *testing.T) {
	e1 := &Enclosure{SASAddress: "e1"}

	full1 := unit("LU1", path("sda", e1), path("sdb", e1))
	full2 := unit("LU2", path("sdc", e1), path("sdd", e1))
	degraded := unit("LU3", path("sde", e1))

	res := Cluster([]*LogicalUnit{full1, full2, degraded})

	require.Len(t, res.Groups, 1)
	g := res.Groups[0]
	assert.Equal(t, 2, g.MaxPaths)
	assert.False(t, g.UnderPathed(full1))
	assert.False(t, g.UnderPathed(full2))
	assert.True(t, g.UnderPathed(degraded))
}

func TestClusterPartitionInvariant(t *testing.T) {
	e := func(a string) *Enclosure { return &Enclosure{SASAddress: a} }
	units := []*LogicalUnit{
		unit("u1", path("sda", e("e1")), path("sdb", e("e2"))),
		unit("u2", path("sdc", e("e3"))),
		unit("u3", path("sdd", nil)),
		unit("u4", path("sde", e("e2")), path("sdf", e("e4"))),
		unit("u5", path("sdg", e("e5")), path("sdh", e("e5"))),
	}

	res := Cluster(units)

	// Every distinct enclosure appears in exactly one group.
	seen := make(map[string]int)
	for _, g := range res.Groups {
		for _, enc := range g.Enclosures {
			seen[enc.SASAddress]++
		}
	}
	assert.Equal(t,
		map[string]int{"e1": 1, "e2": 1, "e3": 1, "e4": 1, "e5": 1}, seen)

	// Every unit is in exactly one group or orphaned, never both.
	placed := make(map[string]int)
	for _, g := range res.Groups {
		for _, lu := range g.Units {
			placed[lu.ID]++
		}
	}
	for _, lu := range res.Orphans {
		placed[lu.ID]++
	}
	for _, lu := range units {
		assert.Equal(t, 1, placed[lu.ID], "unit %s", lu.ID)
	}
}

func TestClusterIdempotent(t *testing.T) {
	e1 := &Enclosure{SASAddress: "e1"}
	e2 := &Enclosure{SASAddress: "e2"}
	units := []*LogicalUnit{
		unit("u1", path("sda", e1), path("sdb", e2)),
		unit("u2", path("sdc", e2)),
		unit("u3", path("sdd", nil)),
	}

	first := Cluster(units)
	second := Cluster(units)

	require.Equal(t, len(first.Groups), len(second.Groups))
	for i := range first.Groups {
		assert.Equal(t, first.Groups[i].Units, second.Groups[i].Units)
		assert.Equal(t, first.Groups[i].Enclosures, second.Groups[i].Enclosures)
		assert.Equal(t, first.Groups[i].MaxPaths, second.Groups[i].MaxPaths)
	}
	assert.Equal(t, first.Orphans, second.Orphans)
}

func TestClusterEnclosuresSortedByAddress(t *testing.T) {
	ea := &Enclosure{SASAddress: "500b"}
	eb := &Enclosure{SASAddress: "500a"}

	res := Cluster([]*LogicalUnit{
		unit("u1", path("sda", ea), path("sdb", eb)),
	})

	require.Len(t, res.Groups, 1)
	require.Len(t, res.Groups[0].Enclosures, 2)
	assert.Equal(t, "500a", res.Groups[0].Enclosures[0].SASAddress)
	assert.Equal(t, "500b", res.Groups[0].Enclosures[1].SASAddress)
}
