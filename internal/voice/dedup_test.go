package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "hello world", Normalize("  Hello \t  WORLD\n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestDeduplicatorWindow(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDeduplicator(DefaultDedupWindow)

	assert.False(t, d.IsDuplicate("What is recursion?", start))
	d.Record("What is recursion?", start)

	assert.True(t, d.IsDuplicate("what  is RECURSION?", start.Add(2999*time.Millisecond)))
	assert.False(t, d.IsDuplicate("what is recursion?", start.Add(3000*time.Millisecond)))
	assert.False(t, d.IsDuplicate("what is recursion?", start.Add(3001*time.Millisecond)))
	assert.False(t, d.IsDuplicate("what is iteration?", start.Add(time.Millisecond)))

	d.Reset()
	assert.False(t, d.IsDuplicate("what is recursion?", start.Add(time.Millisecond)))
}
