package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	t.Run("Ok carries value", func(t *testing.T) {
		r := Ok(42)
		v, ok := r.Value()
		assert.True(t, ok)
		assert.True(t, r.IsOk())
		assert.Equal(t, 42, v)
		assert.NoError(t, r.Err())
	})

	t.Run("Fail carries reason", func(t *testing.T) {
		reason := errors.New("boom")
		r := Fail[string](reason)
		assert.False(t, r.IsOk())
		_, err := r.Unwrap()
		assert.ErrorIs(t, err, reason)
	})

	t.Run("Fail with nil reason still fails", func(t *testing.T) {
		r := Fail[int](nil)
		assert.False(t, r.IsOk())
		assert.ErrorIs(t, r.Err(), ErrEmptyReason)
	})

	t.Run("Zero value is a failure", func(t *testing.T) {
		var r Result[int]
		assert.False(t, r.IsOk())
		assert.Error(t, r.Err())
	})

	t.Run("Failf builds a domain error", func(t *testing.T) {
		r := Failf[int]("UPSTREAM_FAILED", "bad")
		var de *DomainError
		require.True(t, errors.As(r.Err(), &de))
		assert.Equal(t, "UPSTREAM_FAILED", de.Code)
		assert.ErrorIs(t, r.Err(), ErrUpstreamFailed)
	})

	t.Run("MapResult", func(t *testing.T) {
		doubled := MapResult(Ok(2), func(v int) int { return v * 2 })
		v, _ := doubled.Value()
		assert.Equal(t, 4, v)

		failed := MapResult(Fail[int](errors.New("x")), func(v int) string { return "never" })
		assert.False(t, failed.IsOk())
	})
}

func TestBaseEntity(t *testing.T) {
	var e BaseEntity
	assert.False(t, e.IsPersisted())

	e = NewBaseEntity()
	assert.True(t, e.IsPersisted())
	before := e.UpdatedAt
	e.Touch()
	assert.False(t, e.UpdatedAt.Before(before))
}
