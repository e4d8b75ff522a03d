package notify

import (
	"github.com/slack-go/slack"
)

// FindThreadStart scans channel history for the message that opened the
// merge request's thread: the first message tagged mr_created whose metadata
// carries the MR's id. Returns nil when no such message exists; the update
// path treats that as fatal since there is nothing to update.
func FindThreadStart(mrID int, history []slack.Message) *slack.Message {
	for i := range history {
		metadata := history[i].Metadata
		if metadata.EventType != eventTypeCreated {
			continue
		}
		if id, ok := payloadInt(metadata.EventPayload, payloadKeyMRID); ok && id == mrID {
			return &history[i]
		}
	}
	return nil
}
