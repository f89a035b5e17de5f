// Package models defines the records vidtally persists locally and remotely.
package models

import "time"

// ProgressRecord is the stored playback position for one item.
//
// SecondsWatched may briefly exceed DurationSeconds near the end of an item;
// readers clamp when computing a percentage.
type ProgressRecord struct {
	ItemID          string    `json:"item_id"`
	SecondsWatched  float64   `json:"seconds"`
	DurationSeconds float64   `json:"duration"`
	LastUpdated     time.Time `json:"last_updated"`
	ContainerID     string    `json:"container_id,omitempty"`
}

// LastWatched points at the item the user most recently watched.
type LastWatched struct {
	ItemID         string  `json:"item_id"`
	SecondsWatched float64 `json:"position"`
	ContainerID    string  `json:"container_id,omitempty"`
}

// CompletedItem marks an item as finished.
type CompletedItem struct {
	ItemID      string    `json:"item_id"`
	CompletedAt time.Time `json:"completed_at"`
}
