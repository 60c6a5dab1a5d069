package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryKindAndCode(t *testing.T) {
	cases := []struct {
		err  *Error
		kind Kind
	}{
		{NotFound("SUBJECT_NOT_FOUND", "subject not found"), KindNotFound},
		{Invalid("EMPTY_SUBMISSION", "add text or a file"), KindInvalid},
		{Conflict("SUBMISSION_LOCKED", "submission already under review"), KindConflict},
		{Forbidden("FORBIDDEN", "no access"), KindForbidden},
	}

	for _, tc := range cases {
		require.Equal(t, tc.kind, KindOf(tc.err))
		require.NotEmpty(t, CodeOf(tc.err))
	}
}

func TestInternalWrapsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("FILE_SAVE_FAILED", "failed to store file", cause)

	require.Equal(t, KindInternal, KindOf(err))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "disk full")
}

func TestKindOfSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("submit homework: %w", Conflict("SUBMISSION_LOCKED", "locked"))

	require.Equal(t, KindConflict, KindOf(err))
	require.Equal(t, "SUBMISSION_LOCKED", CodeOf(err))
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("plain")))
	require.Empty(t, CodeOf(errors.New("plain")))
}
