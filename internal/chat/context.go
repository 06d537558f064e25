package chat

import "github.com/dyike/FinSage/models"

// ContextBuilder chooses which part of a history is sent to the completer.
type ContextBuilder interface {
	Build(history []models.Message) []models.Message
}

// FullHistory resends every message.
type FullHistory struct{}

func (FullHistory) Build(history []models.Message) []models.Message {
	return append([]models.Message(nil), history...)
}

// SlidingWindow keeps the leading system prompt plus the last Size messages.
// Size <= 0 behaves like FullHistory.
type SlidingWindow struct {
	Size int
}

func (w SlidingWindow) Build(history []models.Message) []models.Message {
	if w.Size <= 0 || len(history) == 0 {
		return FullHistory{}.Build(history)
	}

	var head []models.Message
	rest := history
	if history[0].Role == models.RoleSystem {
		head, rest = history[:1], history[1:]
	}
	if len(rest) > w.Size {
		rest = rest[len(rest)-w.Size:]
	}

	out := make([]models.Message, 0, len(head)+len(rest))
	out = append(out, head...)
	return append(out, rest...)
}

// NewContextBuilder returns SlidingWindow for a positive window and
// FullHistory otherwise.
func NewContextBuilder(window int) ContextBuilder {
	if window > 0 {
		return SlidingWindow{Size: window}
	}
	return FullHistory{}
}
