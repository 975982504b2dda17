package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRevisionAt_MonotonicWithinMillisecond(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	prev := NewRevisionAt(at)
	for i := 0; i < 100; i++ {
		next := NewRevisionAt(at)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestNewRevisionAt_EncodesTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	id, err := ulid.ParseStrict(NewRevisionAt(at))
	require.NoError(t, err)
	assert.True(t, ulid.Time(id.Time()).Equal(at))
}
