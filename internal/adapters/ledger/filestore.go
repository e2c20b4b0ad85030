package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/c2FmZQ/storage"

	"github.com/streamrace/bountyboard/internal/domain/model"
)

// FileStore implements Store over an in-memory map persisted as a data
// file. Mutations are staged on a copy, persisted, then swapped in, so a
// failed persist leaves the prior state untouched.
type FileStore struct {
	mu        sync.RWMutex
	rows      map[string]Entry // canonical name -> row
	backend   *storage.Storage
	boardFile string
}

// NewFileStore opens (or starts fresh) a bounty board stored under dir.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	s := &FileStore{
		rows:      make(map[string]Entry),
		backend:   storage.New(dir, nil),
		boardFile: defaultBoardFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	var rows map[string]Entry
	if err := s.backend.ReadDataFile(s.boardFile, &rows); err == nil && rows != nil {
		s.rows = rows
	}
	return s, nil
}

// ApplyDeltas applies a race's batch atomically.
func (s *FileStore) ApplyDeltas(ctx context.Context, deltas []model.BountyDelta) error {
	if len(deltas) == 0 {
		return fmt.Errorf("apply: %w", ErrEmptyBatch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.clone()
	seen := make(map[string]bool, len(deltas))
	for _, d := range deltas {
		if seen[d.Name] {
			return fmt.Errorf("apply %q: %w", d.Name, ErrDuplicateInBatch)
		}
		seen[d.Name] = true
		row := staged[d.Name]
		row.Name = d.Name
		row.CumulativeScore += d.Delta
		row.RaceCount++
		staged[d.Name] = row
	}
	if err := s.persist(ctx, staged); err != nil {
		return err
	}
	s.rows = staged
	return nil
}

// ReverseDelta subtracts an identity's recorded delta and decrements its
// race count. A row returned to zero score and zero races is dropped, so a
// reversal of the row's only contribution restores the exact prior state.
func (s *FileStore) ReverseDelta(ctx context.Context, name string, priorDelta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[name]
	if !ok {
		return fmt.Errorf("reverse %q: %w", name, ErrNotFound)
	}
	staged := s.clone()
	row.CumulativeScore -= priorDelta
	row.RaceCount--
	if row.CumulativeScore == 0 && row.RaceCount <= 0 {
		delete(staged, name)
	} else {
		staged[name] = row
	}
	if err := s.persist(ctx, staged); err != nil {
		return err
	}
	s.rows = staged
	return nil
}

// ReverseDeltas undoes a whole recorded batch with the same staging as
// ApplyDeltas, so a compensating edit reverses all-or-nothing.
func (s *FileStore) ReverseDeltas(ctx context.Context, deltas []model.BountyDelta) error {
	if len(deltas) == 0 {
		return fmt.Errorf("reverse: %w", ErrEmptyBatch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.clone()
	for _, d := range deltas {
		row, ok := staged[d.Name]
		if !ok {
			return fmt.Errorf("reverse %q: %w", d.Name, ErrNotFound)
		}
		row.CumulativeScore -= d.Delta
		row.RaceCount--
		if row.CumulativeScore == 0 && row.RaceCount <= 0 {
			delete(staged, d.Name)
		} else {
			staged[d.Name] = row
		}
	}
	if err := s.persist(ctx, staged); err != nil {
		return err
	}
	s.rows = staged
	return nil
}

// Entries returns all rows, highest cumulative score first. Ties order
// lexically for a stable display.
func (s *FileStore) Entries(ctx context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.rows))
	for _, row := range s.rows {
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CumulativeScore != out[j].CumulativeScore {
			return out[i].CumulativeScore > out[j].CumulativeScore
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Entry returns one row by canonical name.
func (s *FileStore) Entry(ctx context.Context, name string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[name]
	if !ok {
		return Entry{}, fmt.Errorf("entry %q: %w", name, ErrNotFound)
	}
	return row, nil
}

// RemovePlayer deletes a row entirely.
func (s *FileStore) RemovePlayer(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[name]; !ok {
		return fmt.Errorf("remove %q: %w", name, ErrNotFound)
	}
	staged := s.clone()
	delete(staged, name)
	if err := s.persist(ctx, staged); err != nil {
		return err
	}
	s.rows = staged
	return nil
}

// Reset clears the board.
func (s *FileStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := make(map[string]Entry)
	if err := s.persist(ctx, staged); err != nil {
		return err
	}
	s.rows = staged
	return nil
}

// Count returns the number of players on the board.
func (s *FileStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *FileStore) clone() map[string]Entry {
	out := make(map[string]Entry, len(s.rows))
	for k, v := range s.rows {
		out[k] = v
	}
	return out
}

func (s *FileStore) persist(ctx context.Context, rows map[string]Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	if err := s.backend.SaveDataFile(s.boardFile, rows); err != nil {
		return fmt.Errorf("persist %s: %w", s.boardFile, err)
	}
	return nil
}
