// Package memory provides an in-memory opportunity store. It backs tests
// and runs without a configured database, with the same filter and paging
// semantics as the PostgreSQL store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fd1az/dex-monitor/internal/apperror"
	"github.com/fd1az/dex-monitor/internal/storage"
)

// OpportunityStore implements storage.OpportunityStore in memory.
type OpportunityStore struct {
	mu   sync.RWMutex
	recs []*storage.OpportunityRecord
}

// NewOpportunityStore creates an empty in-memory store.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{}
}

// Insert stores a copy of the record.
func (s *OpportunityStore) Insert(ctx context.Context, rec *storage.OpportunityRecord) error {
	cp := *rec

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, &cp)
	return nil
}

// GetByID returns one record by its id.
func (s *OpportunityStore) GetByID(ctx context.Context, id string) (*storage.OpportunityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.recs {
		if rec.ID == id {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, apperror.New(apperror.CodeRecordNotFound, apperror.WithContext(id))
}

// List returns one page of matching records, newest first.
func (s *OpportunityStore) List(ctx context.Context, f storage.Filter) ([]*storage.OpportunityRecord, storage.PageMeta, error) {
	f = f.Normalize()

	s.mu.RLock()
	var matched []*storage.OpportunityRecord
	for _, rec := range s.recs {
		if matches(rec, f) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	start := f.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*storage.OpportunityRecord, 0, end-start)
	for _, rec := range matched[start:end] {
		cp := *rec
		page = append(page, &cp)
	}

	return page, storage.NewPageMeta(f, total), nil
}

// Close is a no-op.
func (s *OpportunityStore) Close() error {
	return nil
}

func matches(rec *storage.OpportunityRecord, f storage.Filter) bool {
	if f.Token != "" && !matchesToken(rec, f.Token) {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}

// matchesToken matches either leg by symbol or address. Addresses are stored
// checksummed while queries may come in any case.
func matchesToken(rec *storage.OpportunityRecord, token string) bool {
	return rec.TokenInSymbol == token || rec.TokenOutSymbol == token ||
		strings.EqualFold(rec.TokenInAddress, token) ||
		strings.EqualFold(rec.TokenOutAddress, token)
}
