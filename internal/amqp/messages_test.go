package amqp

import (
	"testing"
	"time"
)

func TestChangeMessageJSON(t *testing.T) {
	msg := NewChangeMessage("financial_entries", "insert", 7, "anna")
	if msg.Timestamp.IsZero() {
		t.Fatal("NewChangeMessage left timestamp unset")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	got, err := ChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ChangeMessageFromJSON: %v", err)
	}
	if got.Collection != "financial_entries" || got.Action != "insert" || got.ID != 7 || got.OwnerID != "anna" {
		t.Fatalf("round trip = %+v", got)
	}
	if !got.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Fatalf("timestamp %v != %v", got.Timestamp, msg.Timestamp)
	}
}

func TestChangeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed body")
	}
}
