package entities

import "time"

// Subscriber is an alert recipient keyed by phone (or Telegram chat id).
type Subscriber struct {
	Phone    string   `json:"phone"`
	Language Language `json:"language"`
}

// Broadcast is an append-only record of one alert sent to the roster.
type Broadcast struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
}

// BroadcastResult summarizes a fan-out. Skipped deliveries count as failed.
type BroadcastResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
	Total  int `json:"total"`
}

// DeliveryStatus is the normalized result of a single transport call.
type DeliveryStatus string

const (
	StatusSent    DeliveryStatus = "sent"
	StatusSkipped DeliveryStatus = "skipped"
	StatusError   DeliveryStatus = "error"
)

// DeliveryOutcome is what the channel dispatcher returns for one recipient.
type DeliveryOutcome struct {
	Status DeliveryStatus `json:"status"`
	Detail string         `json:"detail,omitempty"`
}

// User is an admin account for the management API.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
