package classifier

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed disease_info.json
var diseaseInfoJSON []byte

// DiseaseInfo describes one classifier label.
type DiseaseInfo struct {
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	Causes     []string `json:"causes"`
	Prevention []string `json:"prevention"`
}

// Catalog maps raw classifier labels such as "Tomato___Leaf_Mold" to
// human-readable disease details.
type Catalog struct {
	entries map[string]DiseaseInfo
}

func NewCatalog(data []byte) (*Catalog, error) {
	entries := map[string]DiseaseInfo{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse disease catalog: %w", err)
	}
	return &Catalog{entries: entries}, nil
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(diseaseInfoJSON)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Lookup(label string) (DiseaseInfo, bool) {
	if c == nil {
		return DiseaseInfo{}, false
	}
	info, ok := c.entries[label]
	return info, ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// humanizeLabel turns "Corn_(maize)___Common_rust_" into "Corn (maize) Common rust".
func humanizeLabel(label string) string {
	s := strings.ReplaceAll(label, "___", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
