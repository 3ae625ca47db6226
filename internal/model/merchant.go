package model

import "time"

// MerchantDirectoryEntry is a curated known merchant with its canonical
// category. The directory is read-only to the categorization cascade.
type MerchantDirectoryEntry struct {
	LastUpdated time.Time
	Name        string // Normalized canonical name
	Category    string
	Subcategory string
	Aliases     []string
	ID          int64
	UseCount    int
	IsActive    bool
}
