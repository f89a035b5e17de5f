package ranking

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/asteroid-belt/vidtally/internal/models"
)

// MemoryStore is an in-process RemoteStore for tests and offline use.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.RankingRecord
	writes  int
	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.RankingRecord)}
}

func (m *MemoryStore) SelectByID(_ context.Context, clientID string) (models.RankingRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return models.RankingRecord{}, false, m.Err
	}
	rec, ok := m.records[clientID]
	return rec, ok, nil
}

func (m *MemoryStore) Insert(_ context.Context, rec models.RankingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.records[rec.ClientID]; ok {
		return fmt.Errorf("insert %s: duplicate client id", rec.ClientID)
	}
	m.records[rec.ClientID] = rec
	m.writes++
	return nil
}

func (m *MemoryStore) Update(_ context.Context, rec models.RankingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.records[rec.ClientID]; !ok {
		return fmt.Errorf("update %s: no such client id", rec.ClientID)
	}
	m.records[rec.ClientID] = rec
	m.writes++
	return nil
}

func (m *MemoryStore) SelectAllOrderedByTotalDesc(context.Context) ([]models.RankingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.RankingRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMinutes != out[j].TotalMinutes {
			return out[i].TotalMinutes > out[j].TotalMinutes
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out, nil
}

// Writes returns the number of successful inserts and updates.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryStore) Close() error { return nil }
