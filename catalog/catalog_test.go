package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/thefortthatholds/storefront/models"
)

func TestDefaultCatalogLookup(t *testing.T) {
	cat := Default()

	item, err := cat.Lookup("workbook-001")
	if err != nil {
		t.Fatalf("Lookup(workbook-001) returned error: %v", err)
	}
	if item.Price != 19.99 {
		t.Errorf("expected price 19.99, got %v", item.Price)
	}
	if item.FileRef != "body_holds_score_workbook.epub" {
		t.Errorf("unexpected file ref: %s", item.FileRef)
	}
	if item.Title == "" || item.Subtitle == "" || item.PageCount == 0 {
		t.Errorf("item metadata incomplete: %+v", item)
	}
}

func TestDefaultCatalogIsComplete(t *testing.T) {
	cat := Default()
	if cat.Len() != 14 {
		t.Fatalf("expected 14 items in the built-in catalog, got %d", cat.Len())
	}
	for _, item := range cat.Items() {
		if item.Price <= 0 {
			t.Errorf("item %s has non-positive price %v", item.ID, item.Price)
		}
		if filepath.Ext(item.FileRef) != ".epub" {
			t.Errorf("item %s has non-EPUB file ref %s", item.ID, item.FileRef)
		}
	}
}

func TestLookupUnknownItem(t *testing.T) {
	cat := Default()
	_, err := cat.Lookup("no-such-item")
	if !errors.Is(err, models.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `items:
  - id: zine-001
    title: Test Zine
    subtitle: A Test
    pages: 12
    price: 4.99
    file: test_zine.epub
  - id: zine-002
    title: Second Zine
    subtitle: Another Test
    pages: 20
    price: 6.99
    file: second_zine.epub
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}

	cat, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", cat.Len())
	}

	item, err := cat.Lookup("zine-001")
	if err != nil {
		t.Fatalf("Lookup(zine-001) returned error: %v", err)
	}
	if item.Price != 4.99 || item.PageCount != 12 || item.FileRef != "test_zine.epub" {
		t.Errorf("unexpected item: %+v", item)
	}
}

func TestLoadFileRejectsBadCatalogs(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty", "items: []\n"},
		{"duplicate IDs", "items:\n  - {id: a, title: A, file: a.epub, price: 1.00}\n  - {id: a, title: B, file: b.epub, price: 2.00}\n"},
		{"missing file ref", "items:\n  - {id: a, title: A, price: 1.00}\n"},
		{"negative price", "items:\n  - {id: a, title: A, file: a.epub, price: -1.00}\n"},
		{"not yaml", "{{{{\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("failed to write catalog file: %v", err)
			}
			if _, err := LoadFile(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
