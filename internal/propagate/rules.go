package propagate

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules controls which readmes are copied where
type Rules struct {
	// Canonical is the platform whose readmes are copied
	Canonical string `yaml:"canonical"`
	// Exclusions are samples that keep their own readme on some platforms
	Exclusions []Exclusion `yaml:"exclusions"`
	// DesktopOnly categories are only copied to desktop platforms
	DesktopOnly []string `yaml:"desktop_only"`
	// Replacements are extra literal substitutions per target platform
	Replacements map[string][]Replacement `yaml:"replacements"`
}

// Exclusion keeps a sample's readme untouched on the listed platforms. An
// empty platform list excludes the sample everywhere.
type Exclusion struct {
	Sample    string   `yaml:"sample"`
	Platforms []string `yaml:"platforms"`
}

// Replacement is a literal text substitution
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultRules returns the rules used when no rules file exists
func DefaultRules() *Rules {
	return &Rules{
		Canonical:   "WPF",
		DesktopOnly: []string{"Local Server"},
	}
}

// LoadRules loads propagation rules from a file
// If the file doesn't exist, returns the default rules
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Propagate Rules `yaml:"propagate"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}

	rules := &wrapper.Propagate
	if rules.Canonical == "" {
		rules.Canonical = DefaultRules().Canonical
	}
	if rules.DesktopOnly == nil {
		rules.DesktopOnly = DefaultRules().DesktopOnly
	}
	return rules, nil
}

// Excluded reports whether sample keeps its own readme on platform
func (r *Rules) Excluded(sample, platform string) bool {
	for _, e := range r.Exclusions {
		if e.Sample != sample {
			continue
		}
		if len(e.Platforms) == 0 {
			return true
		}
		for _, p := range e.Platforms {
			if strings.EqualFold(p, platform) {
				return true
			}
		}
	}
	return false
}

// IsDesktopOnly reports whether category is restricted to desktop platforms
func (r *Rules) IsDesktopOnly(category string) bool {
	for _, c := range r.DesktopOnly {
		if c == category {
			return true
		}
	}
	return false
}
