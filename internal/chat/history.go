package chat

import (
	"context"
	"sync"

	"github.com/slack-go/slack"
)

const (
	historyFetchLimit = 100
	historyCacheSize  = 10
)

// HistoryCache caches channel message history so that a burst of webhook
// events does not hammer conversations.history. Entries never expire; a
// channel's entry is dropped whenever the bot posts a new message there.
//
// Callers share the cached slice. Thread updates deliberately mutate the
// cached message in place so that later events in the same process observe
// the already-updated thread without a refetch.
type HistoryCache struct {
	client Client

	mu      sync.Mutex
	entries map[string][]slack.Message
	order   []string // channel ids in insertion order, oldest first
}

// NewHistoryCache creates a bounded per-channel history cache
func NewHistoryCache(client Client) *HistoryCache {
	return &HistoryCache{
		client:  client,
		entries: map[string][]slack.Message{},
	}
}

// Messages returns the channel's recent message history, fetching it on a
// cache miss. The returned slice is shared with the cache.
func (h *HistoryCache) Messages(ctx context.Context, channelID string) ([]slack.Message, error) {
	h.mu.Lock()
	if messages, ok := h.entries[channelID]; ok {
		h.mu.Unlock()
		return messages, nil
	}
	h.mu.Unlock()

	messages, err := h.client.GetHistory(ctx, channelID, historyFetchLimit)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if cached, ok := h.entries[channelID]; ok {
		// Another event raced us to the fetch; keep the first copy so all
		// in-flight threads mutate the same messages.
		return cached, nil
	}

	if len(h.order) >= historyCacheSize {
		oldest := h.order[0]
		h.order = h.order[1:]
		delete(h.entries, oldest)
	}
	h.entries[channelID] = messages
	h.order = append(h.order, channelID)

	return messages, nil
}

// Invalidate drops the cached history for a channel
func (h *HistoryCache) Invalidate(channelID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.entries[channelID]; !ok {
		return
	}
	delete(h.entries, channelID)
	for i, id := range h.order {
		if id == channelID {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}
