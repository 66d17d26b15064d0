package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type MessageType string

const (
	TypeEntrySync   MessageType = "entry_sync"
	TypeEntryDelete MessageType = "entry_delete"
)

// ErrMalformedMessage marks a delivery that can never be processed and
// must not be requeued.
var ErrMalformedMessage = errors.New("malformed message")

// EntrySyncMessage asks the worker to mirror an entry. It carries only the
// id and version; the worker loads the entry from the database.
type EntrySyncMessage struct {
	Type      MessageType `json:"type"`
	ID        string      `json:"id"`
	Version   int64       `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
}

// EntryDeleteMessage asks the worker to drop a deleted entry from the
// mirror. The date is included because the row no longer exists locally.
type EntryDeleteMessage struct {
	Type      MessageType `json:"type"`
	ID        string      `json:"id"`
	EntryDate string      `json:"entry_date"`
	Timestamp time.Time   `json:"timestamp"`
}

func NewEntrySyncMessage(id string, version int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		Type:      TypeEntrySync,
		ID:        id,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func NewEntryDeleteMessage(id, entryDate string) *EntryDeleteMessage {
	return &EntryDeleteMessage{
		Type:      TypeEntryDelete,
		ID:        id,
		EntryDate: entryDate,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *EntryDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Handlers routes decoded deliveries by message type.
type Handlers struct {
	Sync   func(ctx context.Context, msg *EntrySyncMessage) error
	Delete func(ctx context.Context, msg *EntryDeleteMessage) error
}

// dispatch decodes body and calls the matching handler. Decoding problems
// wrap ErrMalformedMessage; handler errors are returned as is.
func dispatch(ctx context.Context, body []byte, h Handlers) error {
	var envelope struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch envelope.Type {
	case TypeEntrySync, "":
		var msg EntrySyncMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if msg.ID == "" {
			return fmt.Errorf("%w: sync message without id", ErrMalformedMessage)
		}
		if h.Sync == nil {
			return fmt.Errorf("%w: no sync handler", ErrMalformedMessage)
		}
		return h.Sync(ctx, &msg)
	case TypeEntryDelete:
		var msg EntryDeleteMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if msg.EntryDate == "" {
			return fmt.Errorf("%w: delete message without entry date", ErrMalformedMessage)
		}
		if h.Delete == nil {
			return fmt.Errorf("%w: no delete handler", ErrMalformedMessage)
		}
		return h.Delete(ctx, &msg)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrMalformedMessage, envelope.Type)
	}
}
