// Package sysfs walks the kernel's SAS device classes and turns end
// devices into raw topology records (no process spawning, no drive
// wake). All reads are relative to an injectable root so the scanner
// can run against a fixture tree.
package sysfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/saslab/sasdevices/internal/cache"
	"github.com/saslab/sasdevices/internal/topology"
)

// ErrClassNotFound is returned when a requested device class does not
// exist at all (e.g. no SAS transport loaded).
var ErrClassNotFound = errors.New("device class not found")

const (
	classHost      = "sas_host"
	classExpander  = "sas_expander"
	classEndDevice = "sas_end_device"
)

// Tree reads SAS topology from a sysfs hierarchy.
type Tree struct {
	Root string
}

// New returns a Tree rooted at root, defaulting to /sys.
func New(root string) *Tree {
	if root == "" {
		root = "/sys"
	}
	return &Tree{Root: root}
}

// class lists the entries of /sys/class/<name>, sorted by name. A
// missing class dir is ErrClassNotFound; an existing but empty dir is
// simply zero entries.
func (t *Tree) class(name string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(t.Root, "class", name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrClassNotFound, name)
		}
		return nil, fmt.Errorf("reading class %s: %w", name, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Hosts returns the names of all SAS hosts (HBAs).
func (t *Tree) Hosts() ([]string, error) {
	return t.class(classHost)
}

// Expanders returns the names of all SAS expanders.
func (t *Tree) Expanders() ([]string, error) {
	return t.class(classExpander)
}

// EndDevices returns one raw record per SAS end device that has a block
// device attached. End devices without a block sibling (e.g. the
// enclosure processors themselves) are skipped. The scan is cached for
// the lifetime of the process.
func (t *Tree) EndDevices() ([]topology.Record, error) {
	c := cache.Global()
	cacheKey := "sysfs:end_devices:" + t.Root

	if cached := c.Get(cacheKey); cached != nil {
		return cached.([]topology.Record), nil
	}

	names, err := t.class(classEndDevice)
	if err != nil {
		return nil, err
	}

	var records []topology.Record
	for _, name := range names {
		rec, ok := t.endDevice(name)
		if ok {
			records = append(records, rec)
		}
	}

	c.SetSlow(cacheKey, records)
	return records, nil
}

// endDevice reads one end device entry. Returns ok=false when the entry
// has no usable scsi/block sibling.
func (t *Tree) endDevice(name string) (topology.Record, bool) {
	devDir := filepath.Join(t.Root, "class", classEndDevice, name, "device")

	scsiDir, ok := findSCSIDevice(devDir)
	if !ok {
		return topology.Record{}, false
	}

	block, ok := singleEntry(filepath.Join(scsiDir, "block"))
	if !ok {
		return topology.Record{}, false
	}

	rec := topology.Record{DevicePath: topology.DevicePath{
		Vendor:    readAttr(scsiDir, "vendor"),
		Model:     readAttr(scsiDir, "model"),
		Rev:       readAttr(scsiDir, "rev"),
		Block:     block,
		SysfsPath: scsiDir,
	}}

	// Bay identifier lives on the sas_device side of the end device.
	if bay, err := strconv.Atoi(readAttr(filepath.Join(devDir, "sas_device", name), "bay_identifier")); err == nil {
		rec.Bay = bay
	}

	if sg, ok := singleEntry(filepath.Join(scsiDir, "scsi_generic")); ok {
		rec.SG = sg
	}

	// Block size attribute counts 512-byte sectors.
	if sectors, err := strconv.ParseUint(readAttr(filepath.Join(scsiDir, "block", block), "size"), 10, 64); err == nil {
		rec.SizeBytes = sectors * 512
	}

	if raw, err := os.ReadFile(filepath.Join(scsiDir, "vpd_pg83")); err == nil && len(raw) > 0 {
		rec.RawPg83 = raw
	}

	rec.Enclosure = t.enclosureRef(scsiDir)

	return rec, true
}

// findSCSIDevice locates the scsi device dir (H:C:T:L) under an end
// device's target dir.
func findSCSIDevice(devDir string) (string, bool) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return "", false
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "target") {
			continue
		}
		targetDir := filepath.Join(devDir, e.Name())
		inner, err := os.ReadDir(targetDir)
		if err != nil {
			continue
		}
		for _, se := range inner {
			if strings.Count(se.Name(), ":") == 3 {
				return filepath.Join(targetDir, se.Name()), true
			}
		}
	}
	return "", false
}

// enclosureRef follows the enclosure_device symlink of a scsi device to
// the enclosure it sits in. Nil when the link is absent, which the core
// reports as an orphan-contributing warning.
func (t *Tree) enclosureRef(scsiDir string) *topology.Enclosure {
	entries, err := os.ReadDir(scsiDir)
	if err != nil {
		return nil
	}

	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "enclosure_device:") {
			continue
		}

		target, err := os.Readlink(filepath.Join(scsiDir, e.Name()))
		if err != nil {
			continue
		}
		resolved := filepath.Clean(target)
		if !filepath.IsAbs(target) {
			resolved = filepath.Clean(filepath.Join(scsiDir, target))
		}

		// The link lands on a slot dir inside the enclosure's scsi
		// device: .../<H:C:T:L>/enclosure/<H:C:T:L>/Slot07. The scsi
		// device dir is everything before the "enclosure" segment.
		parts := strings.Split(resolved, string(filepath.Separator))
		for i, p := range parts {
			if p != "enclosure" || i == 0 {
				continue
			}
			encDir := string(filepath.Separator) + filepath.Join(parts[:i]...)
			enc := &topology.Enclosure{
				SASAddress: strings.TrimPrefix(readAttr(encDir, "sas_address"), "0x"),
				Vendor:     readAttr(encDir, "vendor"),
				Model:      readAttr(encDir, "model"),
			}
			if sg, ok := singleEntry(filepath.Join(encDir, "scsi_generic")); ok {
				enc.SG = sg
			}
			if enc.SASAddress == "" {
				return nil
			}
			return enc
		}
	}
	return nil
}

// readAttr reads a single whitespace-trimmed sysfs attribute, empty on
// any error.
func readAttr(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// singleEntry returns the sole directory entry of dir, used for the
// block/ and scsi_generic/ sibling dirs that hold exactly one name.
func singleEntry(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return "", false
	}
	return entries[0].Name(), true
}
