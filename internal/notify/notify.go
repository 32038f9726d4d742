// Package notify tells students and downstream systems about roster changes.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventParticipantEnrolled  = "participant.enrolled"
	EventParticipantWithdrawn = "participant.withdrawn"
)

// Event describes one roster change.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	Schedule   string    `json:"schedule,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(eventType, activity, email string) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Activity:   activity,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	}
}

type Notifier interface {
	ParticipantEnrolled(ctx context.Context, event Event) error
	ParticipantWithdrawn(ctx context.Context, event Event) error
}

// Noop is used when every channel is disabled.
type Noop struct{}

func (Noop) ParticipantEnrolled(context.Context, Event) error  { return nil }
func (Noop) ParticipantWithdrawn(context.Context, Event) error { return nil }
