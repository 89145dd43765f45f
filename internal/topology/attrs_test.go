package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{4000787030016, "4.0TB"},
		{1e12, "1.0TB"},
		{999999999999, "1000.0GB"}, // just below the TB threshold
		{300000000000, "300.0GB"},
		{0, "0.0GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "bytes=%d", tt.bytes)
	}
}

func TestAttrsUseRepresentativePath(t *testing.T) {
	lu := unit("u1",
		DevicePath{Vendor: "ACME", Model: "D1", Rev: "1.0", Bay: 7, Block: "sda", SG: "sg0", SizeBytes: 2e12},
		DevicePath{Vendor: "ACME", Model: "D1", Rev: "1.0", Bay: 7, Block: "sdb", SG: "sg1", SizeBytes: 2e12},
	)

	a := lu.Attrs()
	assert.Equal(t, "ACME", a.Vendor)
	assert.Equal(t, 7, a.Bay)
	assert.Equal(t, "2.0TB", a.Size)
	assert.Equal(t, "sda,sdb", lu.BlockNames())
	assert.Equal(t, "sg0,sg1", lu.SGNames())
}
