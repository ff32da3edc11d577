package events

import (
	"fmt"
	"strings"
)

// ValidationError reports required payload fields that are absent or empty.
type ValidationError struct {
	Topic   string
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing required fields: %s", e.Topic, strings.Join(e.Missing, ", "))
}

// TaskCompletedEvent is the validated form of a task.completed payload.
type TaskCompletedEvent struct {
	TaskID     string
	ResourceID string
	Action     string
}

// ParseTaskCompleted requires task_id, resource_id and action.
func ParseTaskCompleted(env Envelope) (TaskCompletedEvent, error) {
	values, missing := env.Payload.Require("task_id", "resource_id", "action")
	if len(missing) > 0 {
		return TaskCompletedEvent{}, &ValidationError{Topic: env.Topic, Missing: missing}
	}
	return TaskCompletedEvent{
		TaskID:     values["task_id"],
		ResourceID: values["resource_id"],
		Action:     values["action"],
	}, nil
}

// ResourceEvent is the validated form of a resource.* payload.
type ResourceEvent struct {
	ResourceID string
	Action     string
}

// ParseResourceEvent requires id; the action comes from the topic suffix.
func ParseResourceEvent(env Envelope) (ResourceEvent, error) {
	id, ok := env.Payload.Lookup("id")
	if !ok {
		return ResourceEvent{}, &ValidationError{Topic: env.Topic, Missing: []string{"id"}}
	}
	return ResourceEvent{
		ResourceID: id,
		Action:     ActionFromTopic(env.Topic),
	}, nil
}
