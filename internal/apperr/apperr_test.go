package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	base := NotFound("movie not found")
	wrapped := fmt.Errorf("load favourites: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "movie not found", Message(wrapped))
	assert.True(t, errors.Is(wrapped, base))
}

func TestSentinelSurvivesCause(t *testing.T) {
	sentinel := Conflict("email already registered")
	withCause := Wrap(KindConflict, "email already registered", errors.New("duplicate key"))

	assert.True(t, errors.Is(withCause, sentinel))
	assert.False(t, errors.Is(withCause, Conflict("movie already liked")))
}

func TestInternalHidesCause(t *testing.T) {
	err := Internal("save user", errors.New("dial tcp: refused"))

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", Message(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInternal:     http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, Status(k), k.String())
	}
}
