// Package catalog loads menus from YAML files.
//
// A menu file lists categories in display order:
//
//	categories:
//	  - name: Beverage
//	    items:
//	      - name: Cold Brew
//	        price: 400
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/barista/pkg/domain"
	"gopkg.in/yaml.v3"
)

type file struct {
	Categories []domain.Category `yaml:"categories"`
}

// Load reads and validates the menu at path.
func Load(path string) (*domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("menu %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a menu document. Unknown keys are rejected so that a typo
// such as "prise" does not silently yield free items.
func Parse(data []byte) (*domain.Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}
	return domain.NewCatalog(f.Categories...)
}

// Marshal renders c in the format Load reads.
func Marshal(c *domain.Catalog) ([]byte, error) {
	return yaml.Marshal(file{Categories: c.Categories()})
}
