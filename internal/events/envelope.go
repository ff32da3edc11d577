package events

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

// ErrMalformedPayload is returned when a message body is not a single JSON object.
var ErrMalformedPayload = errors.New("payload is not a JSON object")

// Envelope is one decoded bus message. It lives for a single processing attempt.
type Envelope struct {
	Topic     string
	Key       string
	Partition int
	Offset    int64
	Payload   Payload

	body json.RawMessage
}

// Decode parses a message body into an Envelope.
func Decode(topic, key string, value []byte) (Envelope, error) {
	if !utf8.Valid(value) {
		return Envelope{}, fmt.Errorf("%w: invalid UTF-8", ErrMalformedPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()

	var payload Payload
	if err := dec.Decode(&payload); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload == nil {
		return Envelope{}, fmt.Errorf("%w: null body", ErrMalformedPayload)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Envelope{}, fmt.Errorf("%w: trailing data after object", ErrMalformedPayload)
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return Envelope{
		Topic:   topic,
		Key:     key,
		Payload: payload,
		body:    compact.Bytes(),
	}, nil
}

// Body returns the original payload as compact JSON, for verbatim storage.
func (e Envelope) Body() json.RawMessage {
	return e.body
}

// SourceID identifies the originating message: the producer's event_id when
// one is supplied, otherwise the bus position.
func (e Envelope) SourceID() string {
	if id, ok := e.Payload.Lookup("event_id"); ok {
		return "event:" + id
	}
	return "offset:" + strconv.Itoa(e.Partition) + "/" + strconv.FormatInt(e.Offset, 10)
}
