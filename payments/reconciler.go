package payments

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/singleflight"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/sentinel"
)

// DefaultPaymentMethod is recorded when the gateway does not name one.
const DefaultPaymentMethod = "CinetPay"

const gatewayPaymentDateLayout = "2006-01-02 15:04:05"

// Notification is one asynchronous payment-status callback from the gateway.
type Notification struct {
	TransactionID string
	SiteID        string
	StatusCode    string
	PaymentDate   string // epoch seconds
	PaymentMethod string
	Metadata      string // echoed CheckoutMetadata JSON
}

// ReconcileResult is the business outcome acknowledged to the gateway.
type ReconcileResult struct {
	Accepted       bool
	Outcome        string
	Message        string
	RegistrationID string
	InstallmentID  string
}

type ReconcilerConfig struct {
	// SiteID, when set, must match the site id carried by notifications.
	SiteID string
	// VerifyTimeout bounds the server-side verification call. Zero means 15s.
	VerifyTimeout time.Duration
}

// Reconciler applies verified gateway notifications to registrations.
type Reconciler struct {
	collaborators
	store   RegistrationStore
	gateway Gateway
	cfg     ReconcilerConfig
	flight  singleflight.Group
}

func NewReconciler(store RegistrationStore, gateway Gateway, cfg ReconcilerConfig, opts ...Option) *Reconciler {
	if cfg.VerifyTimeout <= 0 {
		cfg.VerifyTimeout = 15 * time.Second
	}
	return &Reconciler{
		collaborators: newCollaborators(opts),
		store:         store,
		gateway:       gateway,
		cfg:           cfg,
	}
}

// HandleNotification verifies a notification with the gateway and applies it.
//
// Validation and not-found errors are terminal. Gateway and persistence errors
// leave state untouched so the gateway redelivers. A negative verification is
// recorded and acknowledged with Accepted=false.
func (r *Reconciler) HandleNotification(ctx context.Context, n Notification) (*ReconcileResult, error) {
	n.TransactionID = strings.TrimSpace(n.TransactionID)
	n.SiteID = strings.TrimSpace(n.SiteID)
	n.StatusCode = strings.TrimSpace(n.StatusCode)

	entry := &models.PaymentNotification{
		ID:            uuid.NewString(),
		TransactionID: n.TransactionID,
		SiteID:        n.SiteID,
		StatusCode:    n.StatusCode,
		PaymentMethod: n.PaymentMethod,
		Metadata:      n.Metadata,
		ReceivedAt:    r.now(),
	}

	var missing []string
	if n.TransactionID == "" {
		missing = append(missing, "cpm_trans_id")
	}
	if n.SiteID == "" {
		missing = append(missing, "cpm_site_id")
	}
	if n.StatusCode == "" {
		missing = append(missing, "cpm_trans_status")
	}
	if len(missing) > 0 {
		err := NewValidationError("invalid notification data", missing...)
		r.finish(ctx, entry, nil, err)
		return nil, err
	}
	if r.cfg.SiteID != "" && n.SiteID != r.cfg.SiteID {
		err := NewValidationError("notification site id does not match", "cpm_site_id")
		r.finish(ctx, entry, nil, err)
		return nil, err
	}

	// Concurrent deliveries of one transaction share a single verification
	// and write within this process. The work outlives the request that
	// started it so coalesced deliveries do not inherit its cancellation.
	leader := false
	v, err, _ := r.flight.Do(n.TransactionID, func() (any, error) {
		leader = true
		return r.reconcile(context.WithoutCancel(ctx), n)
	})

	out, _ := v.(*reconcileOutcome)
	if out != nil {
		entry.VerifiedStatus = out.verifiedStatus
		if out.resolved {
			regID, instID := out.registrationID, out.installmentID
			entry.RegistrationID, entry.InstallmentID = &regID, &instID
		}
	}
	if err != nil {
		r.finish(ctx, entry, nil, err)
		return nil, err
	}

	result := *out.result
	if !leader && result.Outcome == models.OutcomeApplied {
		// the write belongs to the delivery that ran it
		result.Outcome = models.OutcomeDuplicate
		result.Message = duplicateMessage
	}
	r.finish(ctx, entry, &result, nil)
	return &result, nil
}

const duplicateMessage = "Payment already processed"

// reconcileOutcome is what one verification and write produced. It is shared
// by every delivery coalesced onto it.
type reconcileOutcome struct {
	result         *ReconcileResult
	verifiedStatus string
	resolved       bool
	registrationID primitive.ObjectID
	installmentID  primitive.ObjectID
}

// reconcile always returns a non-nil outcome, also alongside an error, so
// callers can journal what was learned before the failure.
func (r *Reconciler) reconcile(ctx context.Context, n Notification) (*reconcileOutcome, error) {
	out := &reconcileOutcome{}

	verifyCtx, cancel := context.WithTimeout(ctx, r.cfg.VerifyTimeout)
	started := time.Now()
	verification, err := r.gateway.VerifyTransaction(verifyCtx, n.TransactionID)
	cancel()
	r.metrics.ObserveGatewayCall("verify", started, err)
	if err != nil {
		// no answer is not a negative answer
		if KindOf(err) == "" {
			err = NewGatewayError("payment verification unavailable", err)
		}
		return out, err
	}
	out.verifiedStatus = verification.Status

	meta := r.parseMetadata(ctx, n.Metadata)
	if verification.Status == StatusAccepted {
		err = r.applyAccepted(ctx, n, verification, meta, out)
	} else {
		err = r.applyFailed(ctx, n, meta, out)
	}
	return out, err
}

func (r *Reconciler) applyAccepted(ctx context.Context, n Notification, verification *Verification, meta CheckoutMetadata, out *reconcileOutcome) error {
	regID, instID, err := r.resolve(ctx, n.TransactionID, meta)
	if err != nil {
		return err
	}
	out.resolved, out.registrationID, out.installmentID = true, regID, instID

	paidAt := parsePaymentDate(n.PaymentDate, r.now)
	method := firstNonEmpty(n.PaymentMethod, verification.PaymentMethod, DefaultPaymentMethod)

	var duplicate, claimed bool
	reg, _, err := mutate(ctx, r.store, regID, r.now, func(reg *models.Registration) (bool, error) {
		duplicate, claimed = false, false
		inst := reg.Installment(instID)
		if inst == nil {
			return false, NewNotFoundError("installment not found")
		}
		if inst.Status == models.StatusCompleted {
			duplicate = true
			return false, nil
		}
		if inst.Status == models.StatusFailed {
			r.logger.WarnContext(ctx, "accepted payment for an installment recorded as failed",
				"registration_id", reg.ID.Hex(),
				"installment_id", inst.ID.Hex(),
				"transaction_id", n.TransactionID,
			)
		}

		inst.Status = models.StatusCompleted
		inst.PaymentDate = &paidAt
		inst.PaymentMethod = method
		reg.Recompute()

		// The write that completes the registration also claims the
		// confirmation email, so exactly one writer sends it.
		if reg.IsFullyPaid && !reg.EmailSent {
			reg.EmailSent = true
			claimed = true
		}
		return true, nil
	})
	if err != nil {
		return err
	}

	result := &ReconcileResult{
		Accepted:       true,
		RegistrationID: regID.Hex(),
		InstallmentID:  instID.Hex(),
	}
	if duplicate {
		result.Outcome = models.OutcomeDuplicate
		result.Message = duplicateMessage
		r.logger.InfoContext(ctx, "duplicate payment notification ignored",
			"registration_id", regID.Hex(),
			"transaction_id", n.TransactionID,
		)
		out.result = result
		return nil
	}

	result.Outcome = models.OutcomeApplied
	result.Message = "Payment confirmed and processed"
	r.invalidate(ctx, reg)

	inst := *reg.Installment(instID)
	r.logger.InfoContext(ctx, "installment payment confirmed",
		"registration_id", regID.Hex(),
		"installment", inst.Number(),
		"of", len(reg.Installments),
		"total_paid", reg.TotalPaid,
		"fully_paid", reg.IsFullyPaid,
	)
	r.publish(ctx, EventInstallmentCompleted, reg, &inst)

	switch {
	case claimed:
		r.publish(ctx, EventRegistrationPaid, reg, nil)
		r.sendCompletion(ctx, reg)
	case !reg.IsFullyPaid:
		err := r.notifier.SendInstallmentProgress(ctx, reg, inst, len(reg.Installments))
		r.metrics.ObserveEmail("installment_progress", err)
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to send installment email",
				"registration_id", regID.Hex(),
				"error", err.Error(),
			)
		}
	}

	out.result = result
	return nil
}

// sendCompletion dispatches the fully-paid emails and archives the receipt.
// Failures are logged only; payment state is already committed.
func (r *Reconciler) sendCompletion(ctx context.Context, reg *models.Registration) {
	err := r.notifier.SendConfirmation(ctx, reg)
	r.metrics.ObserveEmail("confirmation", err)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to send confirmation email",
			"registration_id", reg.ID.Hex(),
			"error", err.Error(),
		)
	}
	err = r.notifier.SendOrganizationNotice(ctx, reg)
	r.metrics.ObserveEmail("organization", err)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to send organization email",
			"registration_id", reg.ID.Hex(),
			"error", err.Error(),
		)
	}

	url, err := r.receipts.ArchiveReceipt(ctx, reg)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to archive receipt",
			"registration_id", reg.ID.Hex(),
			"error", err.Error(),
		)
		return
	}
	if url == "" {
		return
	}
	_, _, err = mutate(ctx, r.store, reg.ID, r.now, func(reg *models.Registration) (bool, error) {
		if reg.ReceiptURL == url {
			return false, nil
		}
		reg.ReceiptURL = url
		return true, nil
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to record receipt url",
			"registration_id", reg.ID.Hex(),
			"error", err.Error(),
		)
		if derr := r.receipts.DiscardReceipt(ctx, url); derr != nil {
			r.logger.WarnContext(ctx, "failed to discard unrecorded receipt",
				"registration_id", reg.ID.Hex(),
				"url", url,
				"error", derr.Error(),
			)
		}
	}
}

func (r *Reconciler) applyFailed(ctx context.Context, n Notification, meta CheckoutMetadata, out *reconcileOutcome) error {
	result := &ReconcileResult{
		Accepted: false,
		Outcome:  models.OutcomeFailed,
		Message:  "Payment failed or rejected",
	}

	regID, instID, err := r.resolve(ctx, n.TransactionID, meta)
	if err != nil {
		if IsKind(err, KindNotFound) {
			r.logger.WarnContext(ctx, "failed payment for unknown transaction",
				"transaction_id", n.TransactionID,
			)
			out.result = result
			return nil
		}
		return err
	}
	out.resolved, out.registrationID, out.installmentID = true, regID, instID
	result.RegistrationID, result.InstallmentID = regID.Hex(), instID.Hex()

	reg, changed, err := mutate(ctx, r.store, regID, r.now, func(reg *models.Registration) (bool, error) {
		inst := reg.Installment(instID)
		if inst == nil || inst.IsTerminal() {
			return false, nil
		}
		inst.Status = models.StatusFailed
		reg.Recompute()
		return true, nil
	})
	if err != nil {
		if IsKind(err, KindNotFound) {
			out.result = result
			return nil
		}
		return err
	}

	if changed {
		r.invalidate(ctx, reg)
		inst := *reg.Installment(instID)
		r.publish(ctx, EventInstallmentFailed, reg, &inst)
		r.logger.InfoContext(ctx, "installment payment failed",
			"registration_id", regID.Hex(),
			"installment", inst.Number(),
			"payment_status", reg.PaymentStatus,
		)
	}
	out.result = result
	return nil
}

// resolve finds the registration and installment a notification refers to:
// first through the ids embedded in the metadata, then by scanning for the
// transaction id.
func (r *Reconciler) resolve(ctx context.Context, transactionID string, meta CheckoutMetadata) (primitive.ObjectID, primitive.ObjectID, error) {
	regID, regErr := primitive.ObjectIDFromHex(meta.RegistrationID)
	if regErr == nil {
		reg, err := r.store.FindByID(ctx, regID)
		switch {
		case err == nil:
			if instID, err := primitive.ObjectIDFromHex(meta.InstallmentID); err == nil && reg.Installment(instID) != nil {
				if inst := reg.Installment(instID); inst.TransactionID != transactionID {
					r.logger.WarnContext(ctx, "notification metadata names a different transaction",
						"registration_id", regID.Hex(),
						"installment_id", instID.Hex(),
						"transaction_id", transactionID,
					)
				}
				return regID, instID, nil
			}
			if inst := reg.InstallmentByTransaction(transactionID); inst != nil {
				return regID, inst.ID, nil
			}
		case !errors.Is(err, sentinel.ErrNotFound):
			return primitive.NilObjectID, primitive.NilObjectID, NewPersistenceError("failed to load registration", err)
		}
	}

	reg, err := r.store.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, storeError(err, "registration not found")
	}
	inst := reg.InstallmentByTransaction(transactionID)
	if inst == nil {
		return primitive.NilObjectID, primitive.NilObjectID, NewNotFoundError("installment not found")
	}
	return reg.ID, inst.ID, nil
}

func (r *Reconciler) parseMetadata(ctx context.Context, raw string) CheckoutMetadata {
	var meta CheckoutMetadata
	if strings.TrimSpace(raw) == "" {
		return meta
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		r.logger.WarnContext(ctx, "unparseable notification metadata", "error", err.Error())
		return CheckoutMetadata{}
	}
	return meta
}

func (r *Reconciler) publish(ctx context.Context, eventType string, reg *models.Registration, inst *models.Installment) {
	event := Event{
		Type:             eventType,
		RegistrationID:   reg.ID.Hex(),
		ConfirmationCode: reg.ConfirmationCode,
		Amount:           reg.Amount,
		TotalPaid:        reg.TotalPaid,
		Currency:         reg.Currency,
		OccurredAt:       r.now(),
	}
	if inst != nil {
		event.InstallmentID = inst.ID.Hex()
		event.TransactionID = inst.TransactionID
		event.Amount = inst.Amount
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "failed to publish payment event",
			"type", eventType,
			"registration_id", event.RegistrationID,
			"error", err.Error(),
		)
	}
}

// finish journals the delivery and counts its outcome.
func (r *Reconciler) finish(ctx context.Context, entry *models.PaymentNotification, result *ReconcileResult, err error) {
	switch {
	case result != nil:
		entry.Outcome = result.Outcome
	case IsKind(err, KindValidation):
		entry.Outcome = models.OutcomeRejected
	case IsKind(err, KindNotFound):
		entry.Outcome = models.OutcomeNotFound
	default:
		entry.Outcome = models.OutcomeError
	}
	if err != nil {
		entry.ProcessingError = err.Error()
	}
	r.metrics.ObserveNotification(entry.Outcome)
	if jerr := r.journal.Record(ctx, entry); jerr != nil {
		r.logger.WarnContext(ctx, "failed to journal payment notification",
			"transaction_id", entry.TransactionID,
			"error", jerr.Error(),
		)
	}
}

func parsePaymentDate(raw string, now func() time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0).UTC()
	}
	if t, err := time.Parse(gatewayPaymentDateLayout, raw); err == nil {
		return t.UTC()
	}
	return now().UTC()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
