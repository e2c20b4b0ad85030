package merge

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for merge errors.
var (
	ErrNoScreenshots = errors.New("no screenshots to merge")
	ErrConflict      = errors.New("merge conflict")
)

// ConflictError names the identities that landed on two distinct final
// ranks. It indicates a genuine misresolution requiring administrative
// correction, not something to resolve silently.
type ConflictError struct {
	Names []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict: duplicate identities at distinct ranks: %s", strings.Join(e.Names, ", "))
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
