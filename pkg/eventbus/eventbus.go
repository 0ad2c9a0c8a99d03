package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type Event struct {
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// DispatchEvent summarizes one orchestrator pass for subscribers.
type DispatchEvent struct {
	WorkflowsExecuted int    `json:"workflows_executed"`
	Sent              int    `json:"sent"`
	Failed            int    `json:"failed"`
	Message           string `json:"message,omitempty"`
}

type EmailEvent struct {
	EmailID    string `json:"email_id"`
	CampaignID string `json:"campaign_id"`
	LeadID     string `json:"lead_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
}

type WorkflowEvent struct {
	WorkflowID string `json:"workflow_id"`
	Trigger    string `json:"trigger"`
	EntityID   string `json:"entity_id,omitempty"`
	Status     string `json:"status"`
}

const (
	ChannelDispatch = "lf:events:dispatch"
	ChannelEmail    = "lf:events:email"
	ChannelWorkflow = "lf:events:workflow"
)

type Bus struct {
	client redis.UniversalClient
}

func NewBus(client redis.UniversalClient) *Bus {
	return &Bus{client: client}
}

func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}, nil
}

func (b *Bus) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *Bus) Subscribe(ctx context.Context, channels ...string) <-chan *Event {
	sub := b.client.Subscribe(ctx, channels...)
	ch := make(chan *Event, 100)

	go func() {
		defer close(ch)
		for msg := range sub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			ch <- &event
		}
	}()

	go func() {
		<-ctx.Done()
		_ = sub.Close()
	}()

	return ch
}
