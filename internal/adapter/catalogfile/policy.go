package catalogfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/niksmo/pc-catalog/internal/core/imagery"
	"gopkg.in/yaml.v3"
)

type policyFile struct {
	Stores map[string]storePolicy `yaml:"stores"`
}

type storePolicy struct {
	Enabled    bool     `yaml:"enabled"`
	Categories []string `yaml:"categories"`
}

// LoadPolicyTable reads image policies from a YAML file:
//
//	stores:
//	  alityan: {enabled: true, categories: [ALL]}
//	  spniq: {enabled: false}
//
// An empty path returns the built-in table.
func LoadPolicyTable(path string) (imagery.PolicyTable, error) {
	const op = "LoadPolicyTable"

	if path == "" {
		return imagery.DefaultPolicyTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	table, err := ParsePolicyTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return table, nil
}

// ParsePolicyTable parses YAML policies. Store keys are lower-cased and
// categories upper-cased to match lookups.
func ParsePolicyTable(data []byte) (imagery.PolicyTable, error) {
	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	table := make(imagery.PolicyTable, len(f.Stores))
	for store, p := range f.Stores {
		categories := make([]string, len(p.Categories))
		for i, c := range p.Categories {
			categories[i] = strings.ToUpper(c)
		}
		table[strings.ToLower(store)] = imagery.StorePolicy{
			Enabled:    p.Enabled,
			Categories: categories,
		}
	}
	return table, nil
}
