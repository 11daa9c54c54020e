package models

import "time"

// ListingType distinguishes lost-item reports from found-item registrations.
// Only found listings are claimable.
type ListingType string

const (
	ListingLost  ListingType = "lost"
	ListingFound ListingType = "found"
)

type ListingStatus string

const (
	ListingOpen     ListingStatus = "open"
	ListingResolved ListingStatus = "resolved"
	ListingClosed   ListingStatus = "closed"
)

// Listing is the item record claims are filed against. The wider listing
// CRUD surface lives outside this service; here listings are read to
// validate claimability and to populate notification text.
type Listing struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Type        ListingType   `json:"type" gorm:"size:10;index"`
	Status      ListingStatus `json:"status" gorm:"size:20;default:'open';index"`
	OwnerID     uint          `json:"owner_id" gorm:"index"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
