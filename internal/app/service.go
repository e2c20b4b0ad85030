// Package app provides the core business service that implements the
// dependencies required by the HTTP API: race sessions, the screenshot
// pipeline, and administrative corrections.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/streamrace/bountyboard/internal/adapters/ledger"
	"github.com/streamrace/bountyboard/internal/domain/bounty"
	"github.com/streamrace/bountyboard/internal/domain/merge"
	"github.com/streamrace/bountyboard/internal/domain/model"
	"github.com/streamrace/bountyboard/internal/domain/ocrtext"
	"github.com/streamrace/bountyboard/internal/domain/roster"
	"github.com/streamrace/bountyboard/pkg/logger"
	"github.com/streamrace/bountyboard/pkg/metrics"
)

// fullConfidence marks a resolution that needed no edits.
const fullConfidence = 1.0

// lastRace records the most recent finalized race so administrative edits
// can produce an exact compensating batch.
type lastRace struct {
	raceID  string
	ranking model.RaceRanking
	deltas  []model.BountyDelta
}

// Service implements the API dependencies for the bounty board system.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*session
	last     *lastRace

	board      ledger.Store
	registry   *roster.Registry
	calc       *bounty.Calculator
	sessionTTL time.Duration

	log logger.Logger
}

// New creates the service around a ledger store with configuration options.
func New(board ledger.Store, opts ...Option) *Service {
	s := &Service{
		sessions:   make(map[string]*session),
		board:      board,
		registry:   roster.NewRegistry(),
		calc:       bounty.NewCalculator(),
		sessionTTL: defaultSessionTTL,
		log:        logger.Get().Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRace opens a race session for one submitter.
func (s *Service) StartRace(ctx context.Context, submitter string) SessionInfo {
	sess := &session{
		id:        uuid.NewString(),
		submitter: submitter,
		createdAt: time.Now(),
	}
	s.mu.Lock()
	s.expireLocked(time.Now())
	s.sessions[sess.id] = sess
	metrics.UpdateOpenRaceSessions(len(s.sessions))
	s.mu.Unlock()

	s.log.Info(ctx, "race session opened", logger.String("session", sess.id), logger.String("submitter", submitter))
	return SessionInfo{ID: sess.id, Submitter: sess.submitter, CreatedAt: sess.createdAt}
}

// AddScreenshot parses, resolves and stores one screenshot's lines in
// submission order. Unparseable lines and below-full-confidence
// resolutions are surfaced in the report, not dropped.
func (s *Service) AddScreenshot(ctx context.Context, sessionID string, lines []model.RawLine) (ScreenshotReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionLocked(sessionID)
	if err != nil {
		return ScreenshotReport{}, err
	}

	// Annotate a copy; the caller's slice stays untouched.
	index := len(sess.rankings)
	annotated := make([]model.RawLine, len(lines))
	copy(annotated, lines)
	for i := range annotated {
		annotated[i].Screenshot = index
	}
	parsed, unparsed := ocrtext.ParseLines(annotated)
	if len(parsed) == 0 {
		return ScreenshotReport{Screenshot: index, Unparsed: reportUnparsed(unparsed)},
			fmt.Errorf("screenshot %d: %w", index, ErrEmptyScreenshot)
	}
	sort.SliceStable(parsed, func(i, j int) bool { return parsed[i].Rank < parsed[j].Rank })

	report := ScreenshotReport{Screenshot: index, Unparsed: reportUnparsed(unparsed)}
	entries := make([]model.ResolvedEntry, 0, len(parsed))
	for _, p := range parsed {
		res, err := s.registry.Resolve(ctx, p.RawName)
		if err != nil {
			return ScreenshotReport{}, fmt.Errorf("screenshot %d: %w", index, err)
		}
		metrics.RecordNameResolved()
		if res.Provisional {
			metrics.RecordNameProvisional()
			report.Provisional = append(report.Provisional, res.Name)
		}
		if res.Confidence < fullConfidence {
			metrics.RecordLowConfidence()
			report.LowConfidence = append(report.LowConfidence, res.Name)
			s.log.Debug(ctx, "low confidence resolution",
				logger.String("raw", p.RawName),
				logger.String("resolved", res.Name),
				logger.Float64("confidence", res.Confidence))
		}
		entries = append(entries, model.ResolvedEntry{
			Rank:       p.Rank,
			Name:       res.Name,
			Screenshot: index,
			Confidence: res.Confidence,
		})
	}
	for range parsed {
		metrics.RecordLineParsed()
	}
	for range unparsed {
		metrics.RecordLineUnparseable()
	}

	sess.rankings = append(sess.rankings, model.ScreenshotRanking{Screenshot: index, Entries: entries})
	metrics.UpdateRegistryPlayers(s.registry.Size())
	report.Entries = entries
	return report, nil
}

// Finalize merges the session's screenshots, computes deltas and applies
// them to the ledger atomically. The session is closed on success and kept
// open on a merge conflict so the submitter can correct and retry.
func (s *Service) Finalize(ctx context.Context, sessionID string) (RaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionLocked(sessionID)
	if err != nil {
		return RaceResult{}, err
	}

	ranking, err := merge.Merge(ctx, sess.rankings)
	if err != nil {
		var conflict *merge.ConflictError
		if errors.As(err, &conflict) {
			metrics.RecordMergeConflict()
			s.log.Warn(ctx, "merge conflict", logger.String("session", sessionID), logger.Any("names", conflict.Names))
		}
		return RaceResult{}, fmt.Errorf("finalize %s: %w", sessionID, err)
	}
	if ranking.LowConfidence {
		metrics.RecordMergeFallback()
	}

	deltas := s.calc.Deltas(ranking)
	if err := s.board.ApplyDeltas(ctx, deltas); err != nil {
		metrics.RecordLedgerError()
		return RaceResult{}, fmt.Errorf("finalize %s: %w", sessionID, err)
	}
	metrics.RecordLedgerApply()
	metrics.RecordRaceFinalized()

	names := make([]string, 0, len(deltas))
	for _, d := range deltas {
		names = append(names, d.Name)
	}
	s.registry.NoteRace(names)

	result := RaceResult{RaceID: uuid.NewString(), Ranking: ranking, Deltas: deltas}
	if ranking.LowConfidence {
		result.Warnings = append(result.Warnings, "screenshots shared no identities; merged by concatenation")
	}
	s.last = &lastRace{raceID: result.RaceID, ranking: ranking, deltas: deltas}

	delete(s.sessions, sessionID)
	metrics.UpdateOpenRaceSessions(len(s.sessions))
	metrics.UpdateBoardPlayers(s.board.Count(ctx))

	s.log.Info(ctx, "race finalized",
		logger.String("race", result.RaceID),
		logger.Int("players", ranking.Size()),
		logger.Any("low_confidence", ranking.LowConfidence))
	return result, nil
}

// Leaderboard returns up to limit rows, highest bounty first.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]ledger.Entry, error) {
	entries, err := s.board.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

// Bounty looks up one player's row, case-insensitively on a miss.
func (s *Service) Bounty(ctx context.Context, player string) (ledger.Entry, error) {
	if row, err := s.board.Entry(ctx, player); err == nil {
		return row, nil
	}
	entries, err := s.board.Entries(ctx)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("bounty %q: %w", player, err)
	}
	for _, row := range entries {
		if strings.EqualFold(row.Name, player) {
			return row, nil
		}
	}
	return ledger.Entry{}, fmt.Errorf("bounty %q: %w", player, ledger.ErrNotFound)
}

// EditLastRace removes the named players from the most recent race and
// recomputes it: the recorded deltas are reversed, the remaining entries
// renumbered 1..N, and a fresh batch applied. The original ranking is
// never mutated; edits produce a new race record.
func (s *Service) EditLastRace(ctx context.Context, remove []string) (RaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return RaceResult{}, fmt.Errorf("edit last race: %w", ErrNoLastRace)
	}
	removeSet := make(map[string]bool, len(remove))
	for _, name := range remove {
		removeSet[name] = true
	}
	for name := range removeSet {
		if !inDeltas(s.last.deltas, name) {
			return RaceResult{}, fmt.Errorf("edit last race %q: %w", name, ErrNotInLastRace)
		}
	}

	if err := s.board.ReverseDeltas(ctx, s.last.deltas); err != nil {
		metrics.RecordLedgerError()
		return RaceResult{}, fmt.Errorf("edit last race: %w", err)
	}

	kept := make([]model.ResolvedEntry, 0, s.last.ranking.Size())
	for _, e := range s.last.ranking.Entries {
		if removeSet[e.Name] {
			continue
		}
		e.Rank = len(kept) + 1
		kept = append(kept, e)
	}
	ranking := model.RaceRanking{Entries: kept, LowConfidence: s.last.ranking.LowConfidence}

	result := RaceResult{RaceID: uuid.NewString(), Ranking: ranking}
	if len(kept) > 0 {
		result.Deltas = s.calc.Deltas(ranking)
		if err := s.board.ApplyDeltas(ctx, result.Deltas); err != nil {
			metrics.RecordLedgerError()
			return RaceResult{}, fmt.Errorf("edit last race: %w", err)
		}
		metrics.RecordLedgerApply()
		s.last = &lastRace{raceID: result.RaceID, ranking: ranking, deltas: result.Deltas}
	} else {
		s.last = nil
	}
	metrics.UpdateBoardPlayers(s.board.Count(ctx))

	s.log.Info(ctx, "last race edited", logger.Int("removed", len(removeSet)), logger.Int("players", len(kept)))
	return result, nil
}

// UndoLast reverses one player's contribution from the most recent race.
func (s *Service) UndoLast(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.last == nil {
		return fmt.Errorf("undo %q: %w", name, ErrNoLastRace)
	}
	for _, d := range s.last.deltas {
		if d.Name != name {
			continue
		}
		if err := s.board.ReverseDelta(ctx, name, d.Delta); err != nil {
			metrics.RecordLedgerError()
			return fmt.Errorf("undo %q: %w", name, err)
		}
		metrics.UpdateBoardPlayers(s.board.Count(ctx))
		return nil
	}
	return fmt.Errorf("undo %q: %w", name, ErrNotInLastRace)
}

// RemovePlayer deletes a player from the board entirely.
func (s *Service) RemovePlayer(ctx context.Context, name string) error {
	if err := s.board.RemovePlayer(ctx, name); err != nil {
		return fmt.Errorf("remove player: %w", err)
	}
	metrics.UpdateBoardPlayers(s.board.Count(ctx))
	return nil
}

// Reset clears the bounty board. Open sessions and the last-race record
// are discarded with it.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.board.Reset(ctx); err != nil {
		metrics.RecordLedgerError()
		return fmt.Errorf("reset: %w", err)
	}
	s.last = nil
	s.sessions = make(map[string]*session)
	metrics.UpdateOpenRaceSessions(0)
	metrics.UpdateBoardPlayers(0)
	s.log.Info(ctx, "bounty board reset")
	return nil
}

// GetStats exposes service counters for the stats endpoint.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.Lock()
	open := len(s.sessions)
	hasLast := s.last != nil
	s.mu.Unlock()
	return map[string]interface{}{
		"open_sessions":    open,
		"known_players":    s.registry.Size(),
		"board_players":    s.board.Count(context.Background()),
		"last_race_stored": hasLast,
	}
}

// KnownPlayers extracts registry seed data from a persisted board, so a
// restarted process resolves returning players against their persisted
// identities instead of provisionally re-registering OCR misreads.
func KnownPlayers(ctx context.Context, board ledger.Store) (map[string]int, error) {
	rows, err := board.Entries(ctx)
	if err != nil {
		return nil, fmt.Errorf("known players: %w", err)
	}
	known := make(map[string]int, len(rows))
	for _, row := range rows {
		known[row.Name] = row.RaceCount
	}
	return known, nil
}

// sessionLocked fetches a live session; expired ones are dropped.
func (s *Service) sessionLocked(id string) (*session, error) {
	now := time.Now()
	if sess, ok := s.sessions[id]; ok && sess.expired(s.sessionTTL, now) {
		delete(s.sessions, id)
		metrics.UpdateOpenRaceSessions(len(s.sessions))
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionExpired)
	}
	s.expireLocked(now)
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

func (s *Service) expireLocked(now time.Time) {
	for id, sess := range s.sessions {
		if sess.expired(s.sessionTTL, now) {
			delete(s.sessions, id)
		}
	}
	metrics.UpdateOpenRaceSessions(len(s.sessions))
}

func inDeltas(deltas []model.BountyDelta, name string) bool {
	for _, d := range deltas {
		if d.Name == name {
			return true
		}
	}
	return false
}

func reportUnparsed(unparsed []ocrtext.Unparsed) []UnparsedLine {
	if len(unparsed) == 0 {
		return nil
	}
	out := make([]UnparsedLine, 0, len(unparsed))
	for _, u := range unparsed {
		out = append(out, UnparsedLine{
			Text:     u.Line.Text,
			Position: u.Line.Position,
			Reason:   u.Reason.Error(),
		})
	}
	return out
}
