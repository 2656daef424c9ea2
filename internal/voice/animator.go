package voice

import (
	"context"
	"regexp"
	"strings"
	"time"
)

const DefaultRevealInterval = 25 * time.Millisecond

var revealToken = regexp.MustCompile(`\s+|\S+`)

// Tokenize splits text into alternating whitespace and word runs.
func Tokenize(text string) []string {
	return revealToken.FindAllString(text, -1)
}

type Animator struct {
	interval time.Duration
}

func NewAnimator(interval time.Duration) *Animator {
	if interval <= 0 {
		interval = DefaultRevealInterval
	}
	return &Animator{interval: interval}
}

// Reveal emits a growing prefix of text, one token per tick. If ctx ends early
// the full text is emitted before returning the context error.
func (a *Animator) Reveal(ctx context.Context, text string, emit func(prefix string)) error {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	var b strings.Builder
	b.Grow(len(text))

	for _, token := range tokens {
		select {
		case <-ctx.Done():
			emit(text)
			return ctx.Err()
		case <-ticker.C:
		}
		b.WriteString(token)
		emit(b.String())
	}

	return nil
}
