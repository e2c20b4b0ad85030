package app_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/streamrace/bountyboard/internal/adapters/ledger"
	"github.com/streamrace/bountyboard/internal/app"
	"github.com/streamrace/bountyboard/internal/domain/model"
	"github.com/streamrace/bountyboard/internal/domain/roster"
	"github.com/streamrace/bountyboard/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func newService(t *testing.T) *app.Service {
	t.Helper()
	board, err := ledger.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return app.New(board)
}

func rawLines(texts ...string) []model.RawLine {
	lines := make([]model.RawLine, 0, len(texts))
	for i, text := range texts {
		lines = append(lines, model.RawLine{Text: text, Position: i})
	}
	return lines
}

func TestRaceLifecycle(t *testing.T) {
	Convey("Given a service and an open race session", t, func() {
		ctx := context.Background()
		svc := newService(t)
		sess := svc.StartRace(ctx, "streamer")
		So(sess.ID, ShouldNotBeEmpty)

		Convey("When two overlapping screenshots are submitted", func() {
			report1, err := svc.AddScreenshot(ctx, sess.ID, rawLines(
				"Place Player Time",
				"1. Ann",
				"2) Ben",
				"3 Cid",
				"4. Dee",
			))
			So(err, ShouldBeNil)
			So(len(report1.Entries), ShouldEqual, 4)
			So(len(report1.Unparsed), ShouldEqual, 1) // the header
			So(len(report1.Provisional), ShouldEqual, 4)

			report2, err := svc.AddScreenshot(ctx, sess.ID, rawLines(
				"3 Cid",
				"4 Dee",
				"5. Eve",
			))
			So(err, ShouldBeNil)
			So(len(report2.Entries), ShouldEqual, 3)
			// Cid and Dee resolve to their existing identities.
			So(len(report2.Provisional), ShouldEqual, 1)

			Convey("And the race is finalized", func() {
				result, err := svc.Finalize(ctx, sess.ID)
				So(err, ShouldBeNil)
				So(result.RaceID, ShouldNotBeEmpty)
				So(result.Ranking.Size(), ShouldEqual, 5)
				So(result.Ranking.LowConfidence, ShouldBeFalse)

				Convey("Then deltas follow placement around the midpoint", func() {
					byName := make(map[string]int, len(result.Deltas))
					for _, d := range result.Deltas {
						byName[d.Name] = d.Delta
					}
					So(byName["Ann"], ShouldEqual, 240)
					So(byName["Ben"], ShouldEqual, 20)
					So(byName["Cid"], ShouldEqual, 0)
					So(byName["Dee"], ShouldEqual, -20)
					So(byName["Eve"], ShouldEqual, -40)
				})

				Convey("And the leaderboard reflects the applied batch", func() {
					rows, err := svc.Leaderboard(ctx, 3)
					So(err, ShouldBeNil)
					So(len(rows), ShouldEqual, 3)
					So(rows[0].Name, ShouldEqual, "Ann")
					So(rows[0].CumulativeScore, ShouldEqual, 240)
				})

				Convey("And the session is closed", func() {
					_, err := svc.Finalize(ctx, sess.ID)
					So(errors.Is(err, app.ErrSessionNotFound), ShouldBeTrue)
				})
			})
		})

		Convey("When a screenshot has no parseable lines", func() {
			report, err := svc.AddScreenshot(ctx, sess.ID, rawLines("Place Player Time", "???"))
			So(errors.Is(err, app.ErrEmptyScreenshot), ShouldBeTrue)
			So(len(report.Unparsed), ShouldEqual, 2)
		})

		Convey("When the session does not exist", func() {
			_, err := svc.AddScreenshot(ctx, "no-such-session", rawLines("1. Ann"))
			So(errors.Is(err, app.ErrSessionNotFound), ShouldBeTrue)
		})
	})
}

func TestBountyLookup(t *testing.T) {
	Convey("Given a finalized race", t, func() {
		ctx := context.Background()
		svc := newService(t)
		sess := svc.StartRace(ctx, "streamer")
		_, err := svc.AddScreenshot(ctx, sess.ID, rawLines("1. Ann", "2. Ben"))
		So(err, ShouldBeNil)
		_, err = svc.Finalize(ctx, sess.ID)
		So(err, ShouldBeNil)

		Convey("Exact lookups hit directly", func() {
			row, err := svc.Bounty(ctx, "Ann")
			So(err, ShouldBeNil)
			So(row.Name, ShouldEqual, "Ann")
		})

		Convey("Case-insensitive lookups fall back to a scan", func() {
			row, err := svc.Bounty(ctx, "ann")
			So(err, ShouldBeNil)
			So(row.Name, ShouldEqual, "Ann")
		})

		Convey("Unknown players report not found", func() {
			_, err := svc.Bounty(ctx, "Ghost")
			So(errors.Is(err, ledger.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestEditLastRace(t *testing.T) {
	Convey("Given a finalized five-player race", t, func() {
		ctx := context.Background()
		svc := newService(t)
		sess := svc.StartRace(ctx, "streamer")
		_, err := svc.AddScreenshot(ctx, sess.ID, rawLines(
			"1. Ann", "2. Ben", "3. Cid", "4. Dee", "5. Eve",
		))
		So(err, ShouldBeNil)
		_, err = svc.Finalize(ctx, sess.ID)
		So(err, ShouldBeNil)

		Convey("When a misread entrant is removed", func() {
			result, err := svc.EditLastRace(ctx, []string{"Cid"})
			So(err, ShouldBeNil)
			So(result.Ranking.Size(), ShouldEqual, 4)

			Convey("Then the remaining players are renumbered and rescored", func() {
				So(result.Ranking.Entries[2].Name, ShouldEqual, "Dee")
				So(result.Ranking.Entries[2].Rank, ShouldEqual, 3)

				ann, err := svc.Bounty(ctx, "Ann")
				So(err, ShouldBeNil)
				So(ann.CumulativeScore, ShouldEqual, 230) // 20*1.5 + 200 in a field of 4
				So(ann.RaceCount, ShouldEqual, 1)
			})

			Convey("And the removed player's contribution is gone", func() {
				_, err := svc.Bounty(ctx, "Cid")
				So(errors.Is(err, ledger.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the named player was not in the race", func() {
			_, err := svc.EditLastRace(ctx, []string{"Ghost"})
			So(errors.Is(err, app.ErrNotInLastRace), ShouldBeTrue)
		})

		Convey("When one player's contribution is undone", func() {
			err := svc.UndoLast(ctx, "Eve")
			So(err, ShouldBeNil)
			_, err = svc.Bounty(ctx, "Eve")
			So(errors.Is(err, ledger.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestAddScreenshotDoesNotMutateInput(t *testing.T) {
	Convey("Given raw lines submitted for a later screenshot", t, func() {
		ctx := context.Background()
		svc := newService(t)
		sess := svc.StartRace(ctx, "streamer")

		_, err := svc.AddScreenshot(ctx, sess.ID, rawLines("1. Ann", "2. Ben"))
		So(err, ShouldBeNil)

		second := rawLines("2. Ben", "3. Cid")
		_, err = svc.AddScreenshot(ctx, sess.ID, second)
		So(err, ShouldBeNil)

		Convey("Then the caller's slice keeps its original screenshot indices", func() {
			for _, ln := range second {
				So(ln.Screenshot, ShouldEqual, 0)
			}
		})
	})
}

func TestRegistrySeedingAcrossRestart(t *testing.T) {
	Convey("Given a board persisted by a previous process", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		board, err := ledger.NewFileStore(dir)
		So(err, ShouldBeNil)
		svc := app.New(board)
		sess := svc.StartRace(ctx, "streamer")
		_, err = svc.AddScreenshot(ctx, sess.ID, rawLines("1. PlayerOne", "2. Rival"))
		So(err, ShouldBeNil)
		_, err = svc.Finalize(ctx, sess.ID)
		So(err, ShouldBeNil)

		Convey("When a new process seeds its registry from the board", func() {
			reopened, err := ledger.NewFileStore(dir)
			So(err, ShouldBeNil)
			known, err := app.KnownPlayers(ctx, reopened)
			So(err, ShouldBeNil)
			So(known["PlayerOne"], ShouldEqual, 1)
			So(known["Rival"], ShouldEqual, 1)

			svc2 := app.New(reopened, app.WithRegistry(
				roster.NewRegistry(roster.WithKnownPlayers(known)),
			))

			Convey("Then misread names resolve to the persisted identities", func() {
				sess2 := svc2.StartRace(ctx, "streamer")
				report, err := svc2.AddScreenshot(ctx, sess2.ID, rawLines("1. P1ayerOne", "2. Riva1"))
				So(err, ShouldBeNil)
				So(report.Provisional, ShouldBeEmpty)
				_, err = svc2.Finalize(ctx, sess2.ID)
				So(err, ShouldBeNil)

				rows, err := svc2.Leaderboard(ctx, 10)
				So(err, ShouldBeNil)
				// No duplicate rows per player.
				So(len(rows), ShouldEqual, 2)
				So(rows[0].Name, ShouldEqual, "PlayerOne")
				So(rows[0].CumulativeScore, ShouldEqual, 420)
				So(rows[0].RaceCount, ShouldEqual, 2)
			})
		})
	})
}

func TestSessionExpiry(t *testing.T) {
	Convey("Given a service with a very short session TTL", t, func() {
		ctx := context.Background()
		board, err := ledger.NewFileStore(t.TempDir())
		So(err, ShouldBeNil)
		svc := app.New(board, app.WithSessionTTL(time.Nanosecond))

		sess := svc.StartRace(ctx, "streamer")
		time.Sleep(time.Millisecond)

		_, err = svc.AddScreenshot(ctx, sess.ID, rawLines("1. Ann"))
		So(errors.Is(err, app.ErrSessionExpired), ShouldBeTrue)
	})
}

func TestEditWithNoLastRace(t *testing.T) {
	Convey("Given a service that has finalized nothing", t, func() {
		ctx := context.Background()
		svc := newService(t)
		_, err := svc.EditLastRace(ctx, []string{"Ann"})
		So(errors.Is(err, app.ErrNoLastRace), ShouldBeTrue)
	})
}

func TestReset(t *testing.T) {
	Convey("Given a board with applied races", t, func() {
		ctx := context.Background()
		svc := newService(t)
		sess := svc.StartRace(ctx, "streamer")
		_, err := svc.AddScreenshot(ctx, sess.ID, rawLines("1. Ann", "2. Ben"))
		So(err, ShouldBeNil)
		_, err = svc.Finalize(ctx, sess.ID)
		So(err, ShouldBeNil)

		Convey("When the board is reset", func() {
			So(svc.Reset(ctx), ShouldBeNil)

			rows, err := svc.Leaderboard(ctx, 10)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 0)

			Convey("Then the last race record is gone too", func() {
				_, err := svc.EditLastRace(ctx, []string{"Ann"})
				So(errors.Is(err, app.ErrNoLastRace), ShouldBeTrue)
			})
		})
	})
}
