package models

import (
	"time"
)

// StoredJob is a row of the jobs table written by the optional persistence layer
type StoredJob struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	ListingURL string    `json:"listing_url"`
	ApplyURL   string    `json:"apply_url"`
	Title      *string   `json:"title,omitempty"`
	Company    *string   `json:"company,omitempty"`
	Website    *string   `json:"company_website,omitempty"`
	Desc       *string   `json:"description,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
