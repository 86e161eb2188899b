package payments

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/event-registration-go/models"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// RegistrationStore persists registrations with their embedded installments.
// Replace is a compare-and-swap on Version: it fails with sentinel.ErrConflict
// when the stored version moved on, and bumps reg.Version on success.
type RegistrationStore interface {
	Insert(ctx context.Context, reg *models.Registration) error
	Replace(ctx context.Context, reg *models.Registration) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error)
	FindByEmailAndPackage(ctx context.Context, email, packageID string) (*models.Registration, error)
	FindByInstallmentID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*models.Registration, error)
	ConfirmationCodeExists(ctx context.Context, code string) (bool, error)
	TransactionIDExists(ctx context.Context, transactionID string) (bool, error)
}

// Gateway is the external payment processor.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	VerifyTransaction(ctx context.Context, transactionID string) (*Verification, error)
}

// Notifier sends the registrant and organization emails.
type Notifier interface {
	SendConfirmation(ctx context.Context, reg *models.Registration) error
	SendOrganizationNotice(ctx context.Context, reg *models.Registration) error
	SendInstallmentProgress(ctx context.Context, reg *models.Registration, inst models.Installment, total int) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// ReceiptArchiver stores a paid-in-full receipt and returns its URL.
// DiscardReceipt removes an archived receipt that could not be recorded.
type ReceiptArchiver interface {
	ArchiveReceipt(ctx context.Context, reg *models.Registration) (string, error)
	DiscardReceipt(ctx context.Context, url string) error
}

// ProgressCache memoizes verification results. Misses and failures are
// indistinguishable to callers.
//
// Entries are ordered by registration version. Set never replaces an entry
// with a higher version, and Invalidate leaves a marker at the committed
// version so a snapshot read before the commit cannot be stored afterwards.
type ProgressCache interface {
	Get(ctx context.Context, key string) (*PaymentProgress, bool)
	Set(ctx context.Context, key string, progress *PaymentProgress)
	Invalidate(ctx context.Context, version int64, keys ...string)
}

type NotificationJournal interface {
	Record(ctx context.Context, entry *models.PaymentNotification) error
}

// StatusAccepted is the gateway's verification status for a settled payment.
const StatusAccepted = "ACCEPTED"

type Customer struct {
	ID      string
	Name    string
	Surname string
	Email   string
	Phone   string
	Address string
	City    string
	State   string
	Country string
	Zip     string
}

// CheckoutMetadata is echoed back verbatim by the gateway on the callback.
type CheckoutMetadata struct {
	RegistrationID    string `json:"registration_id"`
	InstallmentID     string `json:"installment_id"`
	IsInstallment     bool   `json:"is_installment"`
	InstallmentNumber int    `json:"installment_number,omitempty"`
	TotalInstallments int    `json:"total_installments,omitempty"`
}

type CheckoutRequest struct {
	TransactionID string
	Amount        int64
	Currency      string
	Description   string
	Customer      Customer
	ReturnURL     string
	CancelURL     string
	Language      string
	Metadata      CheckoutMetadata
}

type CheckoutSession struct {
	PaymentURL   string
	PaymentToken string
}

type Verification struct {
	Status        string
	PaymentMethod string
	Amount        int64
}

// Event types published after committed payment state changes.
const (
	EventInstallmentCompleted = "installment.completed"
	EventInstallmentFailed    = "installment.failed"
	EventRegistrationPaid     = "registration.paid"
)

type Event struct {
	Type             string    `json:"type"`
	RegistrationID   string    `json:"registration_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	InstallmentID    string    `json:"installment_id,omitempty"`
	TransactionID    string    `json:"transaction_id,omitempty"`
	Amount           int64     `json:"amount"`
	TotalPaid        int64     `json:"total_paid"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}
