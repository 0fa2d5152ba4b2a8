// Package lookup holds the static business tables used to enrich order lines:
// vendor business-unit names, vendor item codes, item types and pallet sizes.
package lookup

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"LowesMerge/internal/parse"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Tables is read-only after Load; callers share one instance across runs.
type Tables struct {
	VBUNames       map[string]string  `yaml:"vbu_names"`
	UnitsPerPallet map[string]float64 `yaml:"units_per_pallet"`
	VendorItems    map[string]string  `yaml:"vendor_items"`
	ItemTypes      map[string]string  `yaml:"item_types"`
}

var (
	defaultOnce sync.Once
	defaultSet  *Tables
)

// Default returns the tables compiled into the binary.
func Default() *Tables {
	defaultOnce.Do(func() {
		t, err := parseTables(defaultTables)
		if err != nil {
			panic(fmt.Sprintf("lookup: embedded tables are invalid: %v", err))
		}
		defaultSet = t
	})
	return defaultSet
}

// Load reads tables from a YAML file; an empty path yields Default().
func Load(path string) (*Tables, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup file %s: %w", path, err)
	}
	t, err := parseTables(data)
	if err != nil {
		return nil, fmt.Errorf("parse lookup file %s: %w", path, err)
	}
	return t, nil
}

func parseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	// keys are matched against canonical codes, so "118871.0" in a table still works
	t.VBUNames = canonicalKeys(t.VBUNames)
	t.VendorItems = canonicalKeys(t.VendorItems)
	t.ItemTypes = canonicalKeys(t.ItemTypes)
	pallets := make(map[string]float64, len(t.UnitsPerPallet))
	for k, v := range t.UnitsPerPallet {
		if v > 0 {
			pallets[parse.CanonicalID(k)] = v
		}
	}
	t.UnitsPerPallet = pallets
	return &t, nil
}

func canonicalKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[parse.CanonicalID(k)] = v
	}
	return out
}

// VBUName resolves a vendor business-unit code.
func (t *Tables) VBUName(code string) (string, bool) {
	v, ok := t.VBUNames[parse.CanonicalID(code)]
	return v, ok
}

func (t *Tables) VendorItem(item string) (string, bool) {
	v, ok := t.VendorItems[parse.CanonicalID(item)]
	return v, ok
}

func (t *Tables) ItemType(item string) (string, bool) {
	v, ok := t.ItemTypes[parse.CanonicalID(item)]
	return v, ok
}

// PalletSize is the number of units that make one pallet of item.
func (t *Tables) PalletSize(item string) (float64, bool) {
	v, ok := t.UnitsPerPallet[parse.CanonicalID(item)]
	return v, ok
}
