package models

import "time"

// RankingRecord is one client's usage total in the remote ranking store.
type RankingRecord struct {
	ClientID     string    `json:"id"`
	TotalMinutes int       `json:"total_minutes"`
	LastUpdated  time.Time `json:"last_updated"`
}
