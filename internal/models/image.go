package models

import "strings"

// GalleryImage is a row in the hosted gallery_images table. The gateway
// keeps no local copy; the JSON tags mirror the table columns.
type GalleryImage struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// NormalizeCategory is applied to every category before it reaches the
// table, on write and on lookup, so matching stays case-insensitive.
func NormalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
