package storage

import "github.com/google/uuid"

var recordNamespace = uuid.MustParse("5b1f6f0e-8d1c-4c3a-9a51-2f7e0c4d9b63")

// RecordID derives a stable record id from the event type and the identity of the source message.
// Redelivery of the same message yields the same id, which makes the insert idempotent.
func RecordID(eventType, sourceID string) string {
	return uuid.NewSHA1(recordNamespace, []byte(eventType+"|"+sourceID)).String()
}
