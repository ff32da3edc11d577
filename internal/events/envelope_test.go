package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	body := []byte(`{
		"task_id": "t-1",
		"resource_id": 1234567890123456789,
		"action": "approve",
		"extra": {"ratio": 1.50, "tags": ["a", "b"]}
	}`)

	env, err := Decode(TopicTaskCompleted, "k-1", body)
	require.NoError(t, err)
	require.Equal(t, TopicTaskCompleted, env.Topic)
	require.Equal(t, "k-1", env.Key)
	require.Equal(t, json.Number("1234567890123456789"), env.Payload["resource_id"])

	// Whitespace is dropped; key order and number text are preserved.
	require.Equal(t,
		`{"task_id":"t-1","resource_id":1234567890123456789,"action":"approve","extra":{"ratio":1.50,"tags":["a","b"]}}`,
		string(env.Body()))
}

func TestDecode_Malformed(t *testing.T) {
	for _, body := range []string{
		``,
		`not json`,
		`null`,
		`[1, 2]`,
		`"text"`,
		`{"id": 1} {"id": 2}`,
		`{"id": 1`,
		"{\"id\": \"r-\xff\"}",
	} {
		_, err := Decode(TopicResourceCreated, "", []byte(body))
		require.ErrorIs(t, err, ErrMalformedPayload, "body %q", body)
	}
}

func TestEnvelope_SourceID(t *testing.T) {
	env, err := Decode(TopicResourceCreated, "", []byte(`{"id": "r-1"}`))
	require.NoError(t, err)
	env.Partition = 3
	env.Offset = 99
	require.Equal(t, "offset:3/99", env.SourceID())

	env, err = Decode(TopicResourceCreated, "", []byte(`{"id": "r-1", "event_id": "evt-7"}`))
	require.NoError(t, err)
	env.Partition = 3
	env.Offset = 99
	require.Equal(t, "event:evt-7", env.SourceID())
}

func TestActionFromTopic(t *testing.T) {
	require.Equal(t, "created", ActionFromTopic(TopicResourceCreated))
	require.Equal(t, "updated", ActionFromTopic(TopicResourceUpdated))
	require.Equal(t, "deleted", ActionFromTopic(TopicResourceDeleted))
	require.Equal(t, "archived", ActionFromTopic("resource.v2.archived"))
	require.Equal(t, "plain", ActionFromTopic("plain"))
}
