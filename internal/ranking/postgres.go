package ranking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/asteroid-belt/vidtally/internal/models"
)

const createLeaderboardTable = `
CREATE TABLE IF NOT EXISTS leaderboard (
  id            TEXT PRIMARY KEY,
  total_minutes INTEGER NOT NULL DEFAULT 0,
  last_updated  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps ranking records in the leaderboard table.
type PostgresStore struct {
	db *pgxpool.Pool
}

// OpenPostgres connects to dsn and ensures the leaderboard table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the leaderboard table if it is missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createLeaderboardTable); err != nil {
		return fmt.Errorf("create leaderboard table: %w", err)
	}
	return nil
}

func (s *PostgresStore) SelectByID(ctx context.Context, clientID string) (models.RankingRecord, bool, error) {
	q := `SELECT id, total_minutes, last_updated FROM leaderboard WHERE id=$1`
	var rec models.RankingRecord
	err := s.db.QueryRow(ctx, q, clientID).Scan(&rec.ClientID, &rec.TotalMinutes, &rec.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RankingRecord{}, false, nil
		}
		return models.RankingRecord{}, false, fmt.Errorf("select ranking: %w", err)
	}
	return rec, true, nil
}

func (s *PostgresStore) Insert(ctx context.Context, rec models.RankingRecord) error {
	q := `INSERT INTO leaderboard (id, total_minutes, last_updated) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, q, rec.ClientID, rec.TotalMinutes, rec.LastUpdated.UTC()); err != nil {
		return fmt.Errorf("insert ranking: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, rec models.RankingRecord) error {
	q := `UPDATE leaderboard SET total_minutes=$2, last_updated=$3 WHERE id=$1`
	tag, err := s.db.Exec(ctx, q, rec.ClientID, rec.TotalMinutes, rec.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("update ranking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update ranking %s: no such client id", rec.ClientID)
	}
	return nil
}

func (s *PostgresStore) SelectAllOrderedByTotalDesc(ctx context.Context) ([]models.RankingRecord, error) {
	q := `SELECT id, total_minutes, last_updated FROM leaderboard ORDER BY total_minutes DESC, id ASC`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select rankings: %w", err)
	}
	defer rows.Close()

	var out []models.RankingRecord
	for rows.Next() {
		var rec models.RankingRecord
		if err := rows.Scan(&rec.ClientID, &rec.TotalMinutes, &rec.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rankings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}
