package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
)

// terminalObserver prints the conversation as it happens. Assistant entries
// are revealed token by token, so only the new suffix is written on update.
type terminalObserver struct {
	mu      sync.Mutex
	w       io.Writer
	state   voice.ConnectionState
	printed map[int]int
	partial bool
	open    bool
}

func newTerminalObserver(w io.Writer) *terminalObserver {
	return &terminalObserver{w: w, printed: make(map[int]int)}
}

func (o *terminalObserver) StatusChanged(status voice.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if status.State == o.state {
		return
	}
	o.state = status.State
	o.settle()
	fmt.Fprintf(o.w, "[%s]\n", status.State)
}

func (o *terminalObserver) PartialTranscript(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if text == "" {
		o.clearPartial()
		return
	}
	o.endLine()
	fmt.Fprintf(o.w, "\r\033[K  ... %s", text)
	o.partial = true
}

func (o *terminalObserver) EntryAppended(index int, entry entity.ConversationEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.settle()
	fmt.Fprintf(o.w, "%s: %s", entry.Role, entry.Content)
	o.printed[index] = len(entry.Content)
	if entry.Role == entity.RoleUser {
		fmt.Fprintln(o.w)
	} else {
		o.open = true
	}
}

func (o *terminalObserver) EntryUpdated(index int, entry entity.ConversationEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()

	done := o.printed[index]
	if done > len(entry.Content) {
		done = 0
	}
	fmt.Fprint(o.w, entry.Content[done:])
	o.printed[index] = len(entry.Content)
}

func (o *terminalObserver) clearPartial() {
	if o.partial {
		fmt.Fprint(o.w, "\r\033[K")
		o.partial = false
	}
}

func (o *terminalObserver) endLine() {
	if o.open {
		fmt.Fprintln(o.w)
		o.open = false
	}
}

func (o *terminalObserver) settle() {
	o.clearPartial()
	o.endLine()
}

func (o *terminalObserver) replay(conversation []entity.ConversationEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, entry := range conversation {
		fmt.Fprintf(o.w, "%s: %s\n", entry.Role, entry.Content)
	}
}

func (o *terminalObserver) feedback(res assistant.GenerateNotesResponse) {
	f := res.Feedback
	fmt.Fprintf(o.w, "\nSummary\n  %s\n", f.Summary)
	if len(f.Notes) > 0 {
		fmt.Fprintf(o.w, "Notes\n  - %s\n", strings.Join(f.Notes, "\n  - "))
	}
	fmt.Fprintf(o.w, "Feedback\n  %s\n", f.Feedback)
	if len(f.ActionItems) > 0 {
		fmt.Fprintf(o.w, "Action items\n  - %s\n", strings.Join(f.ActionItems, "\n  - "))
	}
	if res.ExportURL != "" {
		fmt.Fprintf(o.w, "Export: %s\n", res.ExportURL)
	}
}
