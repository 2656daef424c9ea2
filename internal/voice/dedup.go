package voice

import (
	"regexp"
	"strings"
	"time"
)

const DefaultDedupWindow = 3000 * time.Millisecond

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize case-folds text, collapses whitespace runs and trims it.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToLower(text), " "))
}

// Deduplicator remembers the last accepted turn. It is not safe for concurrent
// use; the session state guards it.
type Deduplicator struct {
	window   time.Duration
	lastText string
	lastAt   time.Time
}

func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = DefaultDedupWindow
	}
	return &Deduplicator{window: window}
}

func (d *Deduplicator) IsDuplicate(text string, now time.Time) bool {
	if d.lastAt.IsZero() {
		return false
	}
	return Normalize(text) == d.lastText && now.Sub(d.lastAt) < d.window
}

func (d *Deduplicator) Record(text string, now time.Time) {
	d.lastText = Normalize(text)
	d.lastAt = now
}

func (d *Deduplicator) Reset() {
	d.lastText = ""
	d.lastAt = time.Time{}
}

func (d *Deduplicator) Last() (string, time.Time) {
	return d.lastText, d.lastAt
}
