package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outcomes recorded for a webhook delivery.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
	OutcomeNotFound  = "not_found"
	OutcomeRejected  = "rejected"
	OutcomeError     = "error"
)

// PaymentNotification journals one gateway callback delivery.
type PaymentNotification struct {
	ID              string              `bson:"_id" json:"id"`
	TransactionID   string              `bson:"transaction_id" json:"transaction_id"`
	SiteID          string              `bson:"site_id" json:"site_id"`
	StatusCode      string              `bson:"status_code" json:"status_code"`
	VerifiedStatus  string              `bson:"verified_status,omitempty" json:"verified_status,omitempty"`
	PaymentMethod   string              `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	Metadata        string              `bson:"metadata,omitempty" json:"metadata,omitempty"`
	RegistrationID  *primitive.ObjectID `bson:"registration_id,omitempty" json:"registration_id,omitempty"`
	InstallmentID   *primitive.ObjectID `bson:"installment_id,omitempty" json:"installment_id,omitempty"`
	Outcome         string              `bson:"outcome" json:"outcome"`
	ProcessingError string              `bson:"processing_error,omitempty" json:"processing_error,omitempty"`
	ReceivedAt      time.Time           `bson:"received_at" json:"received_at"`
}
