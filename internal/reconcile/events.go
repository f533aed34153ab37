package reconcile

import (
	"time"

	"tourdesk/pkg/models"
)

const (
	EventCompleted = "reconcile.completed"
	EventNoMatch   = "reconcile.no_match"
)

// Event is broadcast to dashboard clients when a reconciliation finishes.
type Event struct {
	Type        string    `json:"type"`
	Query       string    `json:"query"`
	OrderID     string    `json:"order_id,omitempty"`
	GrandTotal  string    `json:"grand_total,omitempty"`
	RateMissing bool      `json:"rate_missing,omitempty"`
	At          time.Time `json:"at"`
}

func completedEvent(o *models.ConsolidatedOrder) Event {
	return Event{
		Type:        EventCompleted,
		Query:       o.Query,
		OrderID:     o.OrderID,
		GrandTotal:  o.Fields["grandTotal"],
		RateMissing: o.RateMissing,
		At:          o.GeneratedAt,
	}
}
