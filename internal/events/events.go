// Package events describes the domain events Warbler emits after a successful
// write and the publishers that carry them.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	UserSignedUp   = "user.signed_up"
	UserDeleted    = "user.deleted"
	UserFollowed   = "user.followed"
	UserUnfollowed = "user.unfollowed"
	MessageCreated = "message.created"
	MessageDeleted = "message.deleted"
	MessageLiked   = "message.liked"
	MessageUnliked = "message.unliked"
)

// Event is the JSON body of every published message. TargetID is the user or
// message acted on, depending on Type.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id"`
	TargetID   uint      `json:"target_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType string, userID, targetID uint) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		UserID:     userID,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events somewhere outside the request.
type Publisher interface {
	Publish(event Event) error
}

// Sender is the transport a BrokerPublisher writes to; *rabbitmq.Client satisfies it.
type Sender interface {
	Publish(routingKey string, body []byte) error
}

// BrokerPublisher marshals events to JSON and hands them to a Sender.
type BrokerPublisher struct {
	sender Sender
}

func NewBrokerPublisher(sender Sender) *BrokerPublisher {
	return &BrokerPublisher{sender: sender}
}

func (p *BrokerPublisher) Publish(event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}
	return p.sender.Publish(event.Type, body)
}

// LogPublisher only logs events. It is used when no broker is configured.
type LogPublisher struct {
	log *logrus.Entry
}

func NewLogPublisher(log *logrus.Entry) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(event Event) error {
	p.log.WithFields(logrus.Fields{
		"event_id":  event.ID,
		"type":      event.Type,
		"user_id":   event.UserID,
		"target_id": event.TargetID,
	}).Debug("event not sent: no broker configured")
	return nil
}

// Decode parses an event body received from the broker.
func Decode(body []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	if event.Type == "" {
		return Event{}, fmt.Errorf("event %s has no type", event.ID)
	}
	return event, nil
}
