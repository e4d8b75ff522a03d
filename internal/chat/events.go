package chat

import (
	"context"
	"encoding/json"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/redhat-data-and-ai/mr-notifier/internal/logging"
)

// MembershipListener receives workspace membership events over Socket Mode
// and invalidates the user directory when the workspace roster changes.
type MembershipListener struct {
	socket *socketmode.Client
	users  *UserDirectory
}

// NewMembershipListener creates a Socket Mode listener. The slack client must
// carry an app-level token.
func NewMembershipListener(api *slack.Client, users *UserDirectory) *MembershipListener {
	return &MembershipListener{
		socket: socketmode.New(api),
		users:  users,
	}
}

// membershipEvent is the slice of the Events API payload the listener needs
type membershipEvent struct {
	Event struct {
		Type string `json:"type"`
		User struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Deleted bool   `json:"deleted"`
		} `json:"user"`
	} `json:"event"`
}

// Run processes Socket Mode events until the context is cancelled
func (l *MembershipListener) Run(ctx context.Context) error {
	go l.handleEvents(ctx)
	return l.socket.RunContext(ctx)
}

func (l *MembershipListener) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-l.socket.Events:
			if !ok {
				return
			}
			l.handleEvent(evt)
		}
	}
}

func (l *MembershipListener) handleEvent(evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		logging.Info("Connecting to Slack via Socket Mode")
	case socketmode.EventTypeConnected:
		logging.Info("Connected to Slack via Socket Mode")
	case socketmode.EventTypeConnectionError:
		logging.Error("Socket Mode connection error: %v", evt.Data)
	case socketmode.EventTypeEventsAPI:
		if evt.Request == nil {
			return
		}
		l.socket.Ack(*evt.Request)
		l.handleMembershipEvent(evt.Request.Payload)
	}
}

func (l *MembershipListener) handleMembershipEvent(payload json.RawMessage) {
	var event membershipEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		logging.Error("Failed to decode Events API payload: %v", err)
		return
	}

	switch event.Event.Type {
	case "team_join":
		logging.Info("Somebody joined the team. Clearing user list cache.")
		l.users.Invalidate()
	case "user_change":
		if event.Event.User.Deleted {
			logging.Info("User %s was deleted. Clearing user list cache.", event.Event.User.Name)
			l.users.Invalidate()
		}
	}
}
