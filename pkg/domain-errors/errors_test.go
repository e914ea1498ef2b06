package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(base, CodeBadRequest, "invalid id")

	assert.True(t, Is(err, CodeBadRequest))
	assert.False(t, Is(err, CodeInternal))
	assert.ErrorIs(t, err, base)

	outer := fmt.Errorf("delete: %w", err)
	assert.True(t, Is(outer, CodeBadRequest), "code should survive fmt wrapping")
}

func TestIsNestedCodes(t *testing.T) {
	inner := New(CodeUnavailable, "store down")
	outer := Wrap(inner, CodeInternal, "list characters")

	assert.True(t, Is(outer, CodeInternal))
	assert.True(t, Is(outer, CodeUnavailable))

	code, ok := CodeOf(outer)
	assert.True(t, ok)
	assert.Equal(t, CodeInternal, code)

	_, ok = CodeOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "nothing"))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:      http.StatusBadRequest,
		CodeNotFound:        http.StatusNotFound,
		CodePayloadTooLarge: http.StatusRequestEntityTooLarge,
		CodeTooManyRequests: http.StatusTooManyRequests,
		CodeUnavailable:     http.StatusServiceUnavailable,
		CodeInternal:        http.StatusInternalServerError,
		Code("unknown"):     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
