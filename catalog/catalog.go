package catalog

import (
	"fmt"
	"os"

	"github.com/thefortthatholds/storefront/models"
	"gopkg.in/yaml.v3"
)

// Catalog is the immutable item listing. It is constructed once at startup and
// is the only source of truth for prices and deliverable file references;
// client-supplied prices are never trusted.
type Catalog struct {
	items map[string]models.CatalogItem
}

// New builds a Catalog from a slice of items. Duplicate IDs are rejected so a
// bad catalog file cannot silently shadow a price.
func New(items []models.CatalogItem) (*Catalog, error) {
	indexed := make(map[string]models.CatalogItem, len(items))
	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("catalog item with empty ID (title %q)", item.Title)
		}
		if item.Price < 0 {
			return nil, fmt.Errorf("catalog item %s has negative price", item.ID)
		}
		if item.FileRef == "" {
			return nil, fmt.Errorf("catalog item %s has no file reference", item.ID)
		}
		if _, exists := indexed[item.ID]; exists {
			return nil, fmt.Errorf("duplicate catalog item ID: %s", item.ID)
		}
		indexed[item.ID] = item
	}
	return &Catalog{items: indexed}, nil
}

// LoadFile reads a YAML catalog file of the form:
//
//	items:
//	  - id: workbook-001
//	    title: ...
//	    subtitle: ...
//	    pages: 156
//	    price: 19.99
//	    file: body_holds_score_workbook.epub
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	var doc struct {
		Items []models.CatalogItem `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("catalog file %s contains no items", path)
	}

	return New(doc.Items)
}

// Lookup returns the item for the given ID, or models.ErrItemNotFound.
func (c *Catalog) Lookup(itemID string) (models.CatalogItem, error) {
	item, ok := c.items[itemID]
	if !ok {
		return models.CatalogItem{}, fmt.Errorf("catalog item %q: %w", itemID, models.ErrItemNotFound)
	}
	return item, nil
}

// Items returns every catalog item. Order is unspecified.
func (c *Catalog) Items() []models.CatalogItem {
	out := make([]models.CatalogItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	return out
}

// Len reports the number of items in the catalog.
func (c *Catalog) Len() int {
	return len(c.items)
}
