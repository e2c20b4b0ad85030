package roster_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/streamrace/bountyboard/internal/domain/roster"
)

func TestRegistryResolve(t *testing.T) {
	Convey("Given a registry with known players", t, func() {
		ctx := context.Background()
		reg := roster.NewRegistry(roster.WithKnownPlayers(map[string]int{
			"PlayerOne":  3,
			"MarbleKing": 5,
		}))

		Convey("When resolving an exact match", func() {
			res, err := reg.Resolve(ctx, "PlayerOne")
			So(err, ShouldBeNil)
			So(res.Name, ShouldEqual, "PlayerOne")
			So(res.Confidence, ShouldEqual, 1.0)
			So(res.Provisional, ShouldBeFalse)
		})

		Convey("When resolving a name that differs only by OCR confusions", func() {
			res, err := reg.Resolve(ctx, "P1ayer0ne")
			So(err, ShouldBeNil)
			So(res.Name, ShouldEqual, "PlayerOne")
			// Confusion folding makes the two identical, so no edits remain.
			So(res.Confidence, ShouldEqual, 1.0)
			So(res.Provisional, ShouldBeFalse)
			// No spurious duplicate identity is created.
			So(reg.Size(), ShouldEqual, 2)
		})

		Convey("When resolving a name within edit tolerance", func() {
			res, err := reg.Resolve(ctx, "MarbleKinq")
			So(err, ShouldBeNil)
			So(res.Name, ShouldEqual, "MarbleKing")
			So(res.Confidence, ShouldBeLessThan, 1.0)
			So(res.Confidence, ShouldBeGreaterThan, 0.8)
		})

		Convey("When no known identity is close enough", func() {
			res, err := reg.Resolve(ctx, "TotallyNewcomer")
			So(err, ShouldBeNil)
			So(res.Name, ShouldEqual, "TotallyNewcomer")
			So(res.Provisional, ShouldBeTrue)
			So(reg.Size(), ShouldEqual, 3)
		})

		Convey("When the raw name is empty", func() {
			_, err := reg.Resolve(ctx, "")
			So(errors.Is(err, roster.ErrEmptyName), ShouldBeTrue)
		})
	})
}

func TestRegistryTieBreaking(t *testing.T) {
	Convey("Given two identities equally distant from a raw name", t, func() {
		ctx := context.Background()

		Convey("When one has more recorded races", func() {
			reg := roster.NewRegistry(roster.WithKnownPlayers(map[string]int{
				"Dana": 1,
				"Dant": 9,
			}))
			res, err := reg.Resolve(ctx, "Dan")
			So(err, ShouldBeNil)
			So(res.Name, ShouldEqual, "Dant")
		})

		Convey("When race counts are equal", func() {
			reg := roster.NewRegistry(roster.WithKnownPlayers(map[string]int{
				"Dana": 2,
				"Dant": 2,
			}))
			res, err := reg.Resolve(ctx, "Dan")
			So(err, ShouldBeNil)
			// Lexical order decides deterministically.
			So(res.Name, ShouldEqual, "Dana")
		})
	})
}

func TestRegistryNoteRace(t *testing.T) {
	Convey("Given a registry tracking race counts", t, func() {
		ctx := context.Background()
		reg := roster.NewRegistry()

		res, err := reg.Resolve(ctx, "Rollo")
		So(err, ShouldBeNil)
		So(res.Provisional, ShouldBeTrue)

		reg.NoteRace([]string{"Rollo"})
		reg.NoteRace([]string{"Rollo"})

		races, err := reg.Races("Rollo")
		So(err, ShouldBeNil)
		So(races, ShouldEqual, 2)

		Convey("Unknown identities report not found", func() {
			_, err := reg.Races("Nobody")
			So(errors.Is(err, roster.ErrNotFound), ShouldBeTrue)
		})
	})
}
