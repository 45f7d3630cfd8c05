package event

import (
	"context"
	"time"
)

// Stage of an action within its family.
const (
	StageIntent  = "intent"
	StageSuccess = "success"
	StageFail    = "fail"
)

// StateSummary is the part of the store state shipped with every action.
type StateSummary struct {
	Total              int    `json:"total"`
	Loading            bool   `json:"loading"`
	Loaded             bool   `json:"loaded"`
	Error              string `json:"error,omitempty"`
	SelectedCustomerID *int64 `json:"selectedCustomerId,omitempty"`
}

// ActionEvent records one action reduced by the store.
type ActionEvent struct {
	EventID   string       `json:"eventId"`
	Sequence  uint64       `json:"sequence"`
	Type      string       `json:"type"`
	Family    string       `json:"family"`
	Stage     string       `json:"stage"`
	Error     string       `json:"error,omitempty"`
	State     StateSummary `json:"state"`
	Timestamp time.Time    `json:"timestamp"`
}

// RoutingKey is store.action.<family>.<stage>.
func (e ActionEvent) RoutingKey() string {
	return "store.action." + e.Family + "." + e.Stage
}

func (p *RabbitMQEventPublisher) PublishAction(ctx context.Context, event ActionEvent) error {
	return p.publish(ctx, event.RoutingKey(), event.EventID, event)
}
