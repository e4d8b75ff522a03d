package notify

// Slack message metadata attached to thread-start and reply messages. The
// event payload is the only durable record of an MR's notification state, so
// these keys are part of the wire format shared with existing history.
const (
	eventTypeCreated = "mr_created"
	eventTypeUpdated = "mr_updated"

	payloadKeyMRID         = "mr_id"
	payloadKeyTargetBranch = "target_branch"
	payloadKeyAssignees    = "assignees"
	payloadKeyReviewers    = "reviewers"
)

// payloadInt reads an integer payload value. Metadata round-trips through
// JSON, so numbers come back as float64.
func payloadInt(payload map[string]interface{}, key string) (int, bool) {
	switch v := payload[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

func payloadString(payload map[string]interface{}, key string) string {
	if v, ok := payload[key].(string); ok {
		return v
	}
	return ""
}
