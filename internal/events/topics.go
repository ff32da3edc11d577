package events

import (
	"errors"
	"strings"
)

// ErrUnknownTopic is returned for topics no handler is registered for.
var ErrUnknownTopic = errors.New("no handler for topic")

const (
	TopicTaskCompleted   = "task.completed"
	TopicResourceCreated = "resource.created"
	TopicResourceUpdated = "resource.updated"
	TopicResourceDeleted = "resource.deleted"

	// ResourceTopicPrefix marks the resource lifecycle family.
	ResourceTopicPrefix = "resource."
)

// ActionFromTopic returns the final dot-separated segment of topic.
func ActionFromTopic(topic string) string {
	if i := strings.LastIndex(topic, "."); i >= 0 {
		return topic[i+1:]
	}
	return topic
}
