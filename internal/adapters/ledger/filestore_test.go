package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/streamrace/bountyboard/internal/adapters/ledger"
	"github.com/streamrace/bountyboard/internal/domain/model"
)

func newStore(t *testing.T) (*ledger.FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := ledger.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store, dir
}

func TestApplyDeltas(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	deltas := []model.BountyDelta{
		{Name: "Ann", Delta: 240},
		{Name: "Ben", Delta: 20},
		{Name: "Cid", Delta: -40},
	}
	if err := store.ApplyDeltas(ctx, deltas); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	entries, err := store.Entries(ctx)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Name != "Ann" || entries[0].CumulativeScore != 240 || entries[0].RaceCount != 1 {
		t.Errorf("top entry = %+v, want Ann/240/1", entries[0])
	}
	if entries[2].Name != "Cid" || entries[2].CumulativeScore != -40 {
		t.Errorf("bottom entry = %+v, want Cid/-40", entries[2])
	}
}

func TestApplyDeltasRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	if err := store.ApplyDeltas(ctx, []model.BountyDelta{{Name: "Ann", Delta: 100}}); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	err := store.ApplyDeltas(ctx, []model.BountyDelta{
		{Name: "Ben", Delta: 10},
		{Name: "Ben", Delta: 20},
	})
	if !errors.Is(err, ledger.ErrDuplicateInBatch) {
		t.Fatalf("err = %v, want ErrDuplicateInBatch", err)
	}

	// The failed batch must not have partially applied.
	if _, err := store.Entry(ctx, "Ben"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Ben should not exist after rejected batch, got err = %v", err)
	}
	row, err := store.Entry(ctx, "Ann")
	if err != nil || row.CumulativeScore != 100 {
		t.Errorf("Ann = %+v (err %v), want untouched 100", row, err)
	}
}

func TestApplyDeltasRejectsEmptyBatch(t *testing.T) {
	store, _ := newStore(t)
	if err := store.ApplyDeltas(context.Background(), nil); !errors.Is(err, ledger.ErrEmptyBatch) {
		t.Fatalf("err = %v, want ErrEmptyBatch", err)
	}
}

func TestReverseDeltaRestoresPriorState(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	first := []model.BountyDelta{{Name: "Ann", Delta: 240}, {Name: "Ben", Delta: -40}}
	second := []model.BountyDelta{{Name: "Ann", Delta: 10}, {Name: "Ben", Delta: 30}}
	if err := store.ApplyDeltas(ctx, first); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}
	if err := store.ApplyDeltas(ctx, second); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	for _, d := range second {
		if err := store.ReverseDelta(ctx, d.Name, d.Delta); err != nil {
			t.Fatalf("ReverseDelta(%s): %v", d.Name, err)
		}
	}

	ann, err := store.Entry(ctx, "Ann")
	if err != nil || ann.CumulativeScore != 240 || ann.RaceCount != 1 {
		t.Errorf("Ann = %+v (err %v), want 240/1", ann, err)
	}
	ben, err := store.Entry(ctx, "Ben")
	if err != nil || ben.CumulativeScore != -40 || ben.RaceCount != 1 {
		t.Errorf("Ben = %+v (err %v), want -40/1", ben, err)
	}
}

func TestReverseDeltaDropsEmptyRows(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	if err := store.ApplyDeltas(ctx, []model.BountyDelta{{Name: "Ann", Delta: 50}}); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}
	if err := store.ReverseDelta(ctx, "Ann", 50); err != nil {
		t.Fatalf("ReverseDelta: %v", err)
	}
	if _, err := store.Entry(ctx, "Ann"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("reversing a sole contribution should remove the row, err = %v", err)
	}
	if store.Count(ctx) != 0 {
		t.Errorf("Count = %d, want 0", store.Count(ctx))
	}
}

func TestReverseDeltasBatch(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	first := []model.BountyDelta{{Name: "Ann", Delta: 240}, {Name: "Ben", Delta: -40}}
	second := []model.BountyDelta{{Name: "Ann", Delta: 10}, {Name: "Ben", Delta: 30}}
	if err := store.ApplyDeltas(ctx, first); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}
	if err := store.ApplyDeltas(ctx, second); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	if err := store.ReverseDeltas(ctx, second); err != nil {
		t.Fatalf("ReverseDeltas: %v", err)
	}

	ann, err := store.Entry(ctx, "Ann")
	if err != nil || ann.CumulativeScore != 240 || ann.RaceCount != 1 {
		t.Errorf("Ann = %+v (err %v), want 240/1", ann, err)
	}
	ben, err := store.Entry(ctx, "Ben")
	if err != nil || ben.CumulativeScore != -40 || ben.RaceCount != 1 {
		t.Errorf("Ben = %+v (err %v), want -40/1", ben, err)
	}
}

func TestReverseDeltasAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	if err := store.ApplyDeltas(ctx, []model.BountyDelta{{Name: "Ann", Delta: 240}}); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	err := store.ReverseDeltas(ctx, []model.BountyDelta{
		{Name: "Ann", Delta: 240},
		{Name: "Ghost", Delta: 5},
	})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// The failed batch must not have partially reversed.
	ann, err := store.Entry(ctx, "Ann")
	if err != nil || ann.CumulativeScore != 240 || ann.RaceCount != 1 {
		t.Errorf("Ann = %+v (err %v), want untouched 240/1", ann, err)
	}

	if err := store.ReverseDeltas(ctx, nil); !errors.Is(err, ledger.ErrEmptyBatch) {
		t.Errorf("err = %v, want ErrEmptyBatch", err)
	}
}

func TestCustomBoardFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := ledger.NewFileStore(dir, ledger.WithBoardFile("season_two.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.ApplyDeltas(ctx, []model.BountyDelta{{Name: "Ann", Delta: 240}}); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	// The default file in the same directory is a separate board.
	other, err := ledger.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if other.Count(ctx) != 0 {
		t.Errorf("default board Count = %d, want 0", other.Count(ctx))
	}

	reopened, err := ledger.NewFileStore(dir, ledger.WithBoardFile("season_two.json"))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	row, err := reopened.Entry(ctx, "Ann")
	if err != nil || row.CumulativeScore != 240 {
		t.Fatalf("Ann after reopen = %+v (err %v), want 240", row, err)
	}
}

func TestReverseDeltaUnknownPlayer(t *testing.T) {
	store, _ := newStore(t)
	if err := store.ReverseDelta(context.Background(), "Ghost", 10); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store, dir := newStore(t)

	if err := store.ApplyDeltas(ctx, []model.BountyDelta{{Name: "Ann", Delta: 240}}); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	reopened, err := ledger.NewFileStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	row, err := reopened.Entry(ctx, "Ann")
	if err != nil || row.CumulativeScore != 240 {
		t.Fatalf("Ann after reopen = %+v (err %v), want 240", row, err)
	}
}

func TestRemovePlayerAndReset(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(t)

	deltas := []model.BountyDelta{{Name: "Ann", Delta: 240}, {Name: "Ben", Delta: 20}}
	if err := store.ApplyDeltas(ctx, deltas); err != nil {
		t.Fatalf("ApplyDeltas: %v", err)
	}

	if err := store.RemovePlayer(ctx, "Ann"); err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if _, err := store.Entry(ctx, "Ann"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Ann should be gone, err = %v", err)
	}
	if err := store.RemovePlayer(ctx, "Ann"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second removal should report not found, err = %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if store.Count(ctx) != 0 {
		t.Errorf("Count after reset = %d, want 0", store.Count(ctx))
	}
}
