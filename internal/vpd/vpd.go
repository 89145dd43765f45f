// Package vpd resolves vendor-independent logical unit identifiers
// from SCSI VPD page 0x83 (device identification) data, with a sysfs
// wwid fallback for devices that do not expose the raw page.
package vpd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Common errors
var (
	ErrIdentifierUnavailable = errors.New("no usable LU identifier")
	ErrNotPage83             = errors.New("not a VPD page 0x83 payload")
	ErrTruncatedPage         = errors.New("truncated VPD page")
)

// Designator types from SPC, in the order we prefer them.
const (
	desigT10      = 0x1
	desigEUI64    = 0x2
	desigNAA      = 0x3
	desigSCSIName = 0x8
)

// Code sets
const (
	codeSetBinary = 0x1
	codeSetASCII  = 0x2
	codeSetUTF8   = 0x3
)

// priority ranks designator types; higher wins. NAA identifiers are the
// most widely assigned and the most stable across vendors.
func priority(desigType byte) int {
	switch desigType {
	case desigNAA:
		return 4
	case desigEUI64:
		return 3
	case desigSCSIName:
		return 2
	case desigT10:
		return 1
	default:
		return 0
	}
}

// DecodePage83 extracts the best logical-unit designator from a raw VPD
// page 0x83 payload. Only LU-association designators are considered;
// port and target designators differ per path and would defeat
// multipath deduplication.
func DecodePage83(page []byte) (string, error) {
	if len(page) < 4 {
		return "", ErrTruncatedPage
	}
	if page[1] != 0x83 {
		return "", fmt.Errorf("%w: page code 0x%02x", ErrNotPage83, page[1])
	}

	length := int(binary.BigEndian.Uint16(page[2:4]))
	if length > len(page)-4 {
		length = len(page) - 4
	}
	descriptors := page[4 : 4+length]

	best := ""
	bestPrio := 0

	for len(descriptors) >= 4 {
		codeSet := descriptors[0] & 0x0f
		assoc := (descriptors[1] >> 4) & 0x3
		desigType := descriptors[1] & 0x0f
		desigLen := int(descriptors[3])
		if desigLen > len(descriptors)-4 {
			// Truncated trailing descriptor; keep whatever we already have.
			break
		}
		data := descriptors[4 : 4+desigLen]
		descriptors = descriptors[4+desigLen:]

		if assoc != 0 || desigLen == 0 {
			continue
		}

		if p := priority(desigType); p > bestPrio {
			if id := render(desigType, codeSet, data); id != "" {
				best = id
				bestPrio = p
			}
		}
	}

	if best == "" {
		return "", ErrIdentifierUnavailable
	}
	return best, nil
}

// render formats one designator as a stable identifier string. Binary
// designators become lowercase hex with the conventional type prefix,
// matching the form the kernel writes to the sysfs wwid attribute.
func render(desigType, codeSet byte, data []byte) string {
	switch codeSet {
	case codeSetBinary:
		switch desigType {
		case desigNAA:
			return fmt.Sprintf("naa.%x", data)
		case desigEUI64:
			return fmt.Sprintf("eui.%x", data)
		case desigT10:
			return fmt.Sprintf("t10.%x", data)
		default:
			return fmt.Sprintf("%x", data)
		}
	case codeSetASCII, codeSetUTF8:
		s := strings.TrimSpace(string(data))
		if desigType == desigT10 && s != "" && !strings.HasPrefix(s, "t10.") {
			s = "t10." + s
		}
		return s
	default:
		return ""
	}
}

// Resolver implements topology.Resolver: VPD page 0x83 first, kernel
// wwid attribute as fallback.
type Resolver struct {
	Root string // sysfs root, default /sys
}

// New returns a Resolver reading fallback identifiers under root.
func New(root string) *Resolver {
	if root == "" {
		root = "/sys"
	}
	return &Resolver{Root: root}
}

// Resolve returns the LU identifier for a device, or an error wrapping
// ErrIdentifierUnavailable when neither resolution path yields one.
func (r *Resolver) Resolve(rawPg83 []byte, blockDev string) (string, error) {
	if len(rawPg83) > 0 {
		if id, err := DecodePage83(rawPg83); err == nil {
			return id, nil
		}
	}
	return r.wwid(blockDev)
}

// wwid reads the kernel-resolved identifier from
// <root>/block/<dev>/device/wwid.
func (r *Resolver) wwid(blockDev string) (string, error) {
	if blockDev == "" {
		return "", ErrIdentifierUnavailable
	}
	data, err := os.ReadFile(filepath.Join(r.Root, "block", blockDev, "device", "wwid"))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrIdentifierUnavailable, blockDev)
	}
	id := strings.Join(strings.Fields(string(data)), "_")
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrIdentifierUnavailable, blockDev)
	}
	return id, nil
}
