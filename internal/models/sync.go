package models

import "time"

type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// SyncSignal is the minimal "something changed" hint broadcast after
// every successful mutation. It never carries authoritative state;
// consumers re-fetch from the store. Readers compare At and keep the
// newest signal per entity.
type SyncSignal struct {
	ID       string     `json:"id" bson:"_id"`
	Entity   string     `json:"entity" bson:"entity"`
	EntityID uint       `json:"entity_id,omitempty" bson:"entity_id,omitempty"`
	Type     ChangeType `json:"type" bson:"type"`
	At       time.Time  `json:"at" bson:"at"`
}
