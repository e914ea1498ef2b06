package store

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"potterdex/internal/character/filter"
	"potterdex/internal/character/models"
)

// InMemoryStore keeps characters in insertion order. It mirrors MongoStore's
// semantics for tests and for running without a database.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.Character
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Replace(_ context.Context, records []models.Character) (int, error) {
	fresh := make([]models.Character, len(records))
	for i, rec := range records {
		if rec.ID.IsZero() {
			rec.ID = primitive.NewObjectID()
		}
		fresh[i] = rec
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = fresh
	return len(fresh), nil
}

func (s *InMemoryStore) FindAll(_ context.Context) ([]models.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(make([]models.Character, 0, len(s.records)), s.records...), nil
}

func (s *InMemoryStore) Find(_ context.Context, code filter.Code) ([]models.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Character, 0)
	for _, rec := range s.records {
		if code.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Insert(_ context.Context, c models.Character) (models.Character, error) {
	c.ID = primitive.NewObjectID()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, c)
	return c, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.records {
		if rec.ID == oid {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}
