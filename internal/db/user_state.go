package db

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/asteroid-belt/vidtally/internal/models"
)

const defaultStateID = "default"

// GetUserState retrieves the installation state.
func (db *DB) GetUserState() (*models.UserState, error) {
	var state models.UserState
	err := db.Where("id = ?", defaultStateID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserState{ID: defaultStateID}, nil
		}
		return nil, err
	}
	return &state, nil
}

// GetOrCreateClientID returns the installation's ranking client ID, creating
// and persisting one on first use. Once stored it is never regenerated.
func (db *DB) GetOrCreateClientID() (string, error) {
	state, err := db.GetUserState()
	if err != nil {
		return "", err
	}

	if state.ClientID != "" {
		return state.ClientID, nil
	}

	state.ClientID = uuid.New().String()

	// An ID written concurrently by another process wins over ours.
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{"client_id": gorm.Expr("COALESCE(NULLIF(user_state.client_id, ''), excluded.client_id)")}),
	}).Create(state).Error
	if err != nil {
		return "", err
	}

	stored, err := db.GetUserState()
	if err != nil {
		return "", err
	}
	return stored.ClientID, nil
}

// GetOrCreateTrackingID returns the client ID for telemetry.
// On any error it falls back to a per-session ID.
func (db *DB) GetOrCreateTrackingID() string {
	id, err := db.GetOrCreateClientID()
	if err != nil {
		return uuid.New().String()
	}
	return id
}
