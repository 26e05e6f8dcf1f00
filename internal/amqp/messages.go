package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage announces one mutation on a collection. It carries only
// identifiers; consumers fetch the current record from the database, so a
// stale message never overwrites newer data.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	Action     string    `json:"action"` // "insert", "update" or "delete"
	ID         int64     `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewChangeMessage(collection, action string, id int64, ownerID string) *ChangeMessage {
	return &ChangeMessage{
		Collection: collection,
		Action:     action,
		ID:         id,
		OwnerID:    ownerID,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
