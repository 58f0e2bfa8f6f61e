package models

// CatalogItem describes one sellable ebook. Items are loaded once at startup
// and never mutated; Price is the authoritative USD price for the item.
type CatalogItem struct {
	ID        string  `json:"id" yaml:"id"`
	Title     string  `json:"title" yaml:"title"`
	Subtitle  string  `json:"subtitle" yaml:"subtitle"`
	PageCount int     `json:"page_count" yaml:"pages"`
	Price     float64 `json:"price" yaml:"price"`
	FileRef   string  `json:"-" yaml:"file"` // EPUB file name, not exposed in API responses
}
