package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFound("Dialog Not Found")
	wrapped := fmt.Errorf("load dialog: %w", base)

	require.Equal(t, KindNotFound, KindOf(wrapped))
	require.True(t, Is(wrapped, KindNotFound))
	require.Equal(t, "Dialog Not Found", Message(wrapped))
	require.Equal(t, http.StatusNotFound, Status(KindOf(wrapped)))
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("connection reset")

	require.Equal(t, KindInternal, KindOf(err))
	require.Equal(t, "internal server error", Message(err))
	require.Equal(t, http.StatusInternalServerError, Status(KindOf(err)))
	require.False(t, Is(nil, KindInternal))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(KindConflict, cause, "Bad Request: User with this email already exists")

	require.ErrorIs(t, err, cause)
	require.Equal(t, http.StatusBadRequest, Status(err.Kind))
	require.Contains(t, err.Error(), "duplicate key")
}
