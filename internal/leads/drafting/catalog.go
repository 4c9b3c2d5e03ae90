// Package drafting selects and fills outreach templates for leads.
package drafting

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var catalogYAML []byte

// Template is a static, read-only catalog entry. Templates are never
// mutated at runtime.
type Template struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Tags    []string `yaml:"tags" json:"tags"`
	Subject string   `yaml:"subject" json:"subject"`
	Body    string   `yaml:"body" json:"body"`
}

// Catalog holds the ordered template list and the configured default.
// Catalog order is the tie-breaker for best-match selection.
type Catalog struct {
	DefaultID string     `yaml:"default"`
	Templates []Template `yaml:"templates"`
}

// LoadCatalog parses the embedded template catalog.
func LoadCatalog() (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(catalogYAML, &catalog); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	if len(catalog.Templates) == 0 {
		return nil, fmt.Errorf("template catalog is empty")
	}
	if catalog.ByID(catalog.DefaultID) == nil {
		return nil, fmt.Errorf("default template %q not found in catalog", catalog.DefaultID)
	}
	return &catalog, nil
}

// ByID returns the template with the given id, or nil.
func (c *Catalog) ByID(id string) *Template {
	for i := range c.Templates {
		if c.Templates[i].ID == id {
			return &c.Templates[i]
		}
	}
	return nil
}

// Default returns the configured fallback template.
func (c *Catalog) Default() *Template {
	return c.ByID(c.DefaultID)
}
