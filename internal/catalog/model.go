package catalog

import "time"

type Product struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description"`
	Price        int64     `json:"price"`
	PDFURL       *string   `json:"pdfUrl"`
	ThumbnailURL *string   `json:"thumbnailUrl"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ProductInput carries the writable fields for create and update.
type ProductInput struct {
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Price        int64   `json:"price"`
	PDFURL       *string `json:"pdfUrl"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

type ListFilter struct {
	Query  string
	Limit  int
	Offset int
}
