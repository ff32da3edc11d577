package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aevon-lab/event-worker/internal/events"
)

// Router picks the handler for a topic.
type Router struct {
	taskCompleted Handler
	resource      Handler
}

func NewRouter(taskCompleted, resource Handler) *Router {
	if taskCompleted == nil || resource == nil {
		panic("pipeline: router handlers must not be nil")
	}
	return &Router{taskCompleted: taskCompleted, resource: resource}
}

// Route matches task.completed exactly and any resource.* topic by prefix.
// Other topics return an error wrapping events.ErrUnknownTopic.
func (r *Router) Route(topic string) (Handler, error) {
	switch {
	case topic == events.TopicTaskCompleted:
		return r.taskCompleted, nil
	case strings.HasPrefix(topic, events.ResourceTopicPrefix):
		return r.resource, nil
	default:
		slog.Warn("[Router] No handler for topic", "topic", topic)
		return nil, fmt.Errorf("%w: %s", events.ErrUnknownTopic, topic)
	}
}
