package utils

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDFromTimestamp(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := New().NewULIDFromTimestamp(at)
	require.NoError(t, err)

	parsed, err := ulid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), parsed.Time())
}

func TestContentKey(t *testing.T) {
	u := New()

	assert.Equal(t, u.ContentKey("en-US-Neural2-F", "hello"), u.ContentKey("en-US-Neural2-F", "hello"))
	assert.NotEqual(t, u.ContentKey("en-US-Neural2-F", "hello"), u.ContentKey("en-US-Neural2-D", "hello"))
	assert.NotEqual(t, u.ContentKey("ab", "c"), u.ContentKey("a", "bc"))
	assert.Len(t, u.ContentKey("x"), 64)
}
