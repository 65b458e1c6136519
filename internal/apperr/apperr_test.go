package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("insufficient"), http.StatusBadRequest},
		{NotFound("missing"), http.StatusNotFound},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Internal(errors.New("boom"), "internal server error"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.err.Status(), c.err.Message)
	}
}

func TestFromWrapped(t *testing.T) {
	wrapped := fmt.Errorf("placing order: %w", NotFound("product not found"))

	e := From(wrapped)
	assert.Equal(t, KindNotFound, e.Kind)
	assert.Equal(t, "product not found", e.Message)
	assert.True(t, Is(wrapped, KindNotFound))
	assert.False(t, Is(wrapped, KindValidation))
}

func TestFromUnknownIsInternal(t *testing.T) {
	cause := errors.New("disk on fire")
	e := From(cause)

	assert.Equal(t, KindInternal, e.Kind)
	assert.Equal(t, "internal server error", e.Message)
	assert.ErrorIs(t, e, cause)
}
