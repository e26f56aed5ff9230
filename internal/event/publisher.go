package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"go-task-manager/internal/model"
)

const (
	ActionTaskCreated = "task.created"
	ActionTaskUpdated = "task.updated"
	ActionTaskDeleted = "task.deleted"
)

type TaskEvent struct {
	Action     string      `json:"action"`
	TaskID     string      `json:"task_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Task       *model.Task `json:"task,omitempty"`
}

// Publisher emits task change events to Kafka, keyed by task id so changes
// for one task stay ordered within a partition. A Publisher built without
// brokers is a no-op; publish failures are logged and never fail the
// request that triggered them.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return &Publisher{}
	}

	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.writer != nil
}

func (p *Publisher) PublishTask(ctx context.Context, action string, task model.Task) {
	if !p.Enabled() {
		return
	}

	evt := TaskEvent{
		Action:     action,
		TaskID:     task.ID,
		OccurredAt: time.Now().UTC(),
	}
	if action != ActionTaskDeleted {
		evt.Task = &task
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		slog.Error("marshal task event", "action", action, "task_id", task.ID, "error", err)
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.ID),
		Value: payload,
	})
	if err != nil {
		slog.Warn("publish task event", "action", action, "task_id", task.ID, "error", err)
	}
}

func (p *Publisher) Close() error {
	if !p.Enabled() {
		return nil
	}

	return p.writer.Close()
}
