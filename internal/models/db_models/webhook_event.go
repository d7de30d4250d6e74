package db_models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventStatus string

const (
	WebhookReceived     WebhookEventStatus = "received"
	WebhookProcessed    WebhookEventStatus = "processed"
	WebhookIgnored      WebhookEventStatus = "ignored"
	WebhookHandleFailed WebhookEventStatus = "handle_failed"
)

// WebhookEvent is one gateway delivery, kept for audit and to drop redeliveries.
type WebhookEvent struct {
	ID              uint               `gorm:"primaryKey" json:"id"`
	IdempotencyKey  string             `gorm:"size:128;not null;uniqueIndex" json:"idempotency_key"`
	EventType       string             `gorm:"size:64;not null;index" json:"event_type"`
	OrderID         string             `gorm:"size:64;index" json:"order_id"`
	Payload         datatypes.JSON     `json:"payload"`
	SignatureValid  bool               `gorm:"not null;default:false" json:"signature_valid"`
	Status          WebhookEventStatus `gorm:"size:32;not null;default:received" json:"status"`
	ProcessingError string             `json:"processing_error"`
	ProcessedAt     *time.Time         `json:"processed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (WebhookEvent) TableName() string { return "payment_webhook_events" }
