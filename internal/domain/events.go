package domain

import (
	"strconv"
	"time"
)

type OrderSubmittedEvent struct {
	EventID   string      `json:"event_id"`
	OrderID   int64       `json:"order_id"`
	UserID    string      `json:"user_id"`
	Items     []OrderItem `json:"items"`
	Timestamp time.Time   `json:"timestamp"`
}

// EventKey is the partition key: all events of one order land on one partition.
func (e OrderSubmittedEvent) EventKey() string {
	return strconv.FormatInt(e.OrderID, 10)
}
