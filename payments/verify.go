package payments

import (
	"context"
	"strings"
	"time"

	"github.com/phillip/event-registration-go/models"
)

// PaymentProgress is the read model returned by verification lookups.
type PaymentProgress struct {
	RegistrationID   string               `json:"registration_id"`
	ConfirmationCode string               `json:"confirmation_code"`
	FirstName        string               `json:"first_name"`
	LastName         string               `json:"last_name"`
	Email            string               `json:"email"`
	ParticipantType  string               `json:"participant_type"`
	PackageName      string               `json:"package_name"`
	Amount           int64                `json:"amount"`
	Currency         string               `json:"currency"`
	PaymentStatus    string               `json:"payment_status"`
	PaymentMethod    string               `json:"payment_method,omitempty"`
	PaymentDate      *time.Time           `json:"payment_date,omitempty"`
	TotalPaid        int64                `json:"total_paid"`
	PercentagePaid   float64              `json:"percentage_paid"`
	IsFullyPaid      bool                 `json:"is_fully_paid"`
	ReceiptURL       string               `json:"receipt_url,omitempty"`
	Installments     []models.Installment `json:"installments"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Version          int64                `json:"version"`
}

// NewPaymentProgress derives the read model from a registration. Totals are
// recomputed from the installments rather than trusted from the document.
func NewPaymentProgress(reg *models.Registration) *PaymentProgress {
	snapshot := *reg
	snapshot.Installments = append([]models.Installment{}, reg.Installments...)
	if snapshot.HasPlan() {
		snapshot.Recompute()
	}
	return &PaymentProgress{
		RegistrationID:   snapshot.ID.Hex(),
		ConfirmationCode: snapshot.ConfirmationCode,
		FirstName:        snapshot.FirstName,
		LastName:         snapshot.LastName,
		Email:            snapshot.Email,
		ParticipantType:  snapshot.ParticipantType,
		PackageName:      snapshot.PackageName,
		Amount:           snapshot.Amount,
		Currency:         snapshot.Currency,
		PaymentStatus:    snapshot.PaymentStatus,
		PaymentMethod:    snapshot.PaymentMethod,
		PaymentDate:      snapshot.PaymentDate,
		TotalPaid:        snapshot.TotalPaid,
		PercentagePaid:   snapshot.PercentagePaid(),
		IsFullyPaid:      snapshot.IsFullyPaid,
		ReceiptURL:       snapshot.ReceiptURL,
		Installments:     snapshot.Installments,
		UpdatedAt:        snapshot.UpdatedAt,
		Version:          snapshot.Version,
	}
}

// ProgressQuery identifies a registration by id or by any of its installment
// transaction ids. RegistrationID wins when both are set.
type ProgressQuery struct {
	RegistrationID string
	TransactionID  string
}

// InstallmentStatus is one installment with the totals of its registration.
type InstallmentStatus struct {
	Installment       models.Installment
	RegistrationID    string
	TotalInstallments int
	IsFullyPaid       bool
	TotalPaid         int64
	TotalAmount       int64
}

// Query serves read-only payment lookups. It never writes.
type Query struct {
	collaborators
	store RegistrationStore
}

func NewQuery(store RegistrationStore, opts ...Option) *Query {
	return &Query{collaborators: newCollaborators(opts), store: store}
}

// Verify resolves a registration and reports its payment progress.
func (q *Query) Verify(ctx context.Context, pq ProgressQuery) (*PaymentProgress, error) {
	pq.RegistrationID = strings.TrimSpace(pq.RegistrationID)
	pq.TransactionID = strings.TrimSpace(pq.TransactionID)

	var key string
	switch {
	case pq.RegistrationID != "":
		key = RegistrationKey(pq.RegistrationID)
	case pq.TransactionID != "":
		key = TransactionKey(pq.TransactionID)
	default:
		return nil, NewValidationError("registration id or transaction id is required", "registration_id", "transaction_id")
	}

	if cached, ok := q.cache.Get(ctx, key); ok {
		return cached, nil
	}

	var (
		reg *models.Registration
		err error
	)
	if pq.RegistrationID != "" {
		id, perr := parseObjectID(pq.RegistrationID, "registration_id")
		if perr != nil {
			return nil, perr
		}
		reg, err = q.store.FindByID(ctx, id)
	} else {
		reg, err = q.store.FindByTransactionID(ctx, pq.TransactionID)
	}
	if err != nil {
		return nil, storeError(err, "registration not found")
	}

	progress := NewPaymentProgress(reg)
	q.cache.Set(ctx, key, progress)
	return progress, nil
}

// Registration loads one registration by id.
func (q *Query) Registration(ctx context.Context, registrationID string) (*models.Registration, error) {
	id, err := parseObjectID(registrationID, "registration_id")
	if err != nil {
		return nil, err
	}
	reg, err := q.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "registration not found")
	}
	return reg, nil
}

// CheckInstallment reports one installment alongside its registration totals.
func (q *Query) CheckInstallment(ctx context.Context, installmentID string) (*InstallmentStatus, error) {
	id, err := parseObjectID(installmentID, "installment_id")
	if err != nil {
		return nil, err
	}
	reg, err := q.store.FindByInstallmentID(ctx, id)
	if err != nil {
		return nil, storeError(err, "installment not found")
	}
	inst := reg.Installment(id)
	if inst == nil {
		return nil, NewNotFoundError("installment not found")
	}
	return &InstallmentStatus{
		Installment:       *inst,
		RegistrationID:    reg.ID.Hex(),
		TotalInstallments: len(reg.Installments),
		IsFullyPaid:       reg.IsFullyPaid,
		TotalPaid:         reg.TotalPaid,
		TotalAmount:       reg.Amount,
	}, nil
}
