package voice

import (
	"strings"
	"sync"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
)

// History is the ordered conversation of a room. Entries are only appended,
// except for the content of an entry being revealed.
type History struct {
	mu      sync.RWMutex
	entries []entity.ConversationEntry
}

func NewHistory(initial []entity.ConversationEntry) *History {
	entries := make([]entity.ConversationEntry, len(initial))
	copy(entries, initial)
	return &History{entries: entries}
}

func (h *History) Append(role entity.Role, content string) (int, entity.ConversationEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	entry := entity.ConversationEntry{Role: role, Content: content}
	h.entries = append(h.entries, entry)
	return len(h.entries) - 1, entry
}

func (h *History) Update(index int, content string) (entity.ConversationEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if index < 0 || index >= len(h.entries) {
		return entity.ConversationEntry{}, false
	}
	h.entries[index].Content = content
	return h.entries[index], true
}

func (h *History) Snapshot() []entity.ConversationEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]entity.ConversationEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}

// CleanHistory drops empty entries and maps roles to the responder vocabulary.
func CleanHistory(entries []entity.ConversationEntry) []HistoryMessage {
	out := make([]HistoryMessage, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Content) == "" {
			continue
		}
		out = append(out, HistoryMessage{
			Role:    entry.Role.ResponderRole(),
			Content: entry.Content,
		})
	}
	return out
}
