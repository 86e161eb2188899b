package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment states shared by registrations and installments.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

const (
	LanguageEnglish = "en"
	LanguageFrench  = "fr"

	DefaultCurrency = "FCFA"
)

type Installment struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Amount        int64              `bson:"amount" json:"amount"`
	Status        string             `bson:"status" json:"status"` // pending, completed, failed
	TransactionID string             `bson:"transaction_id" json:"transaction_id"`
	Index         int                `bson:"index" json:"index"`
	PaymentDate   *time.Time         `bson:"payment_date,omitempty" json:"payment_date,omitempty"`
	PaymentMethod string             `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
}

// IsTerminal reports whether the installment can no longer change state.
func (i Installment) IsTerminal() bool {
	return i.Status == StatusCompleted || i.Status == StatusFailed
}

// Number is the 1-based position shown to registrants ("installment N of M").
func (i Installment) Number() int {
	return i.Index + 1
}

type Registration struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName         string             `bson:"first_name" json:"first_name"`
	LastName          string             `bson:"last_name" json:"last_name"`
	Email             string             `bson:"email" json:"email"`
	Phone             string             `bson:"phone" json:"phone"`
	Company           string             `bson:"company,omitempty" json:"company,omitempty"`
	Country           string             `bson:"country" json:"country"`
	Postal            string             `bson:"postal" json:"postal"`
	City              string             `bson:"city" json:"city"`
	Address           string             `bson:"address" json:"address"`
	ParticipantTypeID string             `bson:"participant_type_id" json:"participant_type_id"`
	ParticipantType   string             `bson:"participant_type" json:"participant_type"`
	PackageID         string             `bson:"package_id" json:"package_id"`
	PackageName       string             `bson:"package_name" json:"package_name"`
	Sector            string             `bson:"sector,omitempty" json:"sector,omitempty"`
	AdditionalInfo    string             `bson:"additional_info,omitempty" json:"additional_info,omitempty"`
	Language          string             `bson:"language" json:"language"` // en, fr

	Amount           int64  `bson:"amount" json:"amount"`
	Currency         string `bson:"currency" json:"currency"`
	ConfirmationCode string `bson:"confirmation_code" json:"confirmation_code"`

	// Derived from Installments by Recompute.
	TotalPaid     int64      `bson:"total_paid" json:"total_paid"`
	IsFullyPaid   bool       `bson:"is_fully_paid" json:"is_fully_paid"`
	PaymentStatus string     `bson:"payment_status" json:"payment_status"` // pending, completed, failed
	PaymentMethod string     `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	PaymentDate   *time.Time `bson:"payment_date,omitempty" json:"payment_date,omitempty"`
	EmailSent     bool       `bson:"email_sent" json:"email_sent"`
	ReceiptURL    string     `bson:"receipt_url,omitempty" json:"receipt_url,omitempty"`

	Installments []Installment `bson:"installments" json:"installments"`

	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Installment returns a pointer into the embedded sequence so callers can
// mutate it in place, or nil when the id is unknown.
func (r *Registration) Installment(id primitive.ObjectID) *Installment {
	for i := range r.Installments {
		if r.Installments[i].ID == id {
			return &r.Installments[i]
		}
	}
	return nil
}

func (r *Registration) InstallmentByTransaction(transactionID string) *Installment {
	if transactionID == "" {
		return nil
	}
	for i := range r.Installments {
		if r.Installments[i].TransactionID == transactionID {
			return &r.Installments[i]
		}
	}
	return nil
}

func (r *Registration) HasPlan() bool {
	return len(r.Installments) > 0
}

// IsSinglePayment reports the legacy flow where the whole amount fits in one
// gateway transaction.
func (r *Registration) IsSinglePayment() bool {
	return len(r.Installments) == 1
}

// Recompute derives the aggregate payment fields from the installment states.
//
// paymentStatus becomes completed only once the registration is fully paid.
// A failed installment fails the registration only in the single-payment flow;
// with several installments the registrant may retry, so it stays pending.
func (r *Registration) Recompute() {
	var total int64
	var latest *Installment
	for i := range r.Installments {
		inst := &r.Installments[i]
		if inst.Status != StatusCompleted {
			continue
		}
		total += inst.Amount
		// ties go to the later installment
		if inst.PaymentDate != nil && (latest == nil || !inst.PaymentDate.Before(*latest.PaymentDate)) {
			latest = inst
		}
	}

	r.TotalPaid = total
	r.IsFullyPaid = total >= r.Amount

	switch {
	case r.IsFullyPaid:
		r.PaymentStatus = StatusCompleted
		if latest != nil {
			if r.PaymentDate == nil {
				d := *latest.PaymentDate
				r.PaymentDate = &d
			}
			if r.PaymentMethod == "" {
				r.PaymentMethod = latest.PaymentMethod
			}
		}
	case r.IsSinglePayment() && r.Installments[0].Status == StatusFailed:
		r.PaymentStatus = StatusFailed
	default:
		r.PaymentStatus = StatusPending
	}
}

// PercentagePaid is totalPaid/amount*100 computed from the installments.
func (r *Registration) PercentagePaid() float64 {
	if r.Amount <= 0 {
		return 0
	}
	return float64(r.TotalPaid) / float64(r.Amount) * 100
}
