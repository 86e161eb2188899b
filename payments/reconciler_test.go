package payments_test

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/event-registration-go/metrics"
	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/payments"
	"github.com/phillip/event-registration-go/store"
)

const testSiteID = "site-42"

type ReconcilerSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.InMemoryRegistrationStore
	journal    *store.InMemoryNotificationJournal
	gateway    *stubGateway
	notifier   *countingNotifier
	publisher  *recordingPublisher
	archiver   *staticArchiver
	initiator  *payments.Initiator
	reconciler *payments.Reconciler
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemoryRegistrationStore()
	s.journal = store.NewInMemoryNotificationJournal()
	s.gateway = newStubGateway()
	s.notifier = &countingNotifier{}
	s.publisher = &recordingPublisher{}
	s.archiver = &staticArchiver{url: "https://res.cloudinary.test/raw/upload/receipts/code.html"}
	s.initiator = newInitiator(s.store, s.gateway)
	s.reconciler = s.newReconciler()
}

func (s *ReconcilerSuite) newReconciler(opts ...payments.Option) *payments.Reconciler {
	opts = append([]payments.Option{
		payments.WithLogger(discard),
		payments.WithClock(clock),
		payments.WithNotifier(s.notifier),
		payments.WithEventPublisher(s.publisher),
		payments.WithReceiptArchiver(s.archiver),
		payments.WithNotificationJournal(s.journal),
	}, opts...)
	return payments.NewReconciler(s.store, s.gateway, payments.ReconcilerConfig{SiteID: testSiteID}, opts...)
}

func (s *ReconcilerSuite) register(amount int64) *models.Registration {
	res, err := s.initiator.Initiate(s.ctx, input("awa@example.com", amount))
	s.Require().NoError(err)
	return s.reload(res.RegistrationID)
}

func (s *ReconcilerSuite) reload(id string) *models.Registration {
	oid, err := primitive.ObjectIDFromHex(id)
	s.Require().NoError(err)
	reg, err := s.store.FindByID(s.ctx, oid)
	s.Require().NoError(err)
	return reg
}

func notification(txID string, paidAt time.Time) payments.Notification {
	return payments.Notification{
		TransactionID: txID,
		SiteID:        testSiteID,
		StatusCode:    "00",
		PaymentDate:   strconv.FormatInt(paidAt.Unix(), 10),
		PaymentMethod: "OM",
	}
}

func withMetadata(n payments.Notification, meta payments.CheckoutMetadata) payments.Notification {
	data, _ := json.Marshal(meta)
	n.Metadata = string(data)
	return n
}

func (s *ReconcilerSuite) outcomes(txID string) []string {
	entries, err := s.journal.ListByTransaction(s.ctx, txID)
	s.Require().NoError(err)
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Outcome)
	}
	return out
}

func (s *ReconcilerSuite) TestSinglePaymentIsIdempotent() {
	reg := s.register(500000)
	inst := reg.Installments[0]
	paidAt := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	n := withMetadata(notification(inst.TransactionID, paidAt), payments.CheckoutMetadata{
		RegistrationID: reg.ID.Hex(),
		InstallmentID:  inst.ID.Hex(),
	})

	res, err := s.reconciler.HandleNotification(s.ctx, n)
	s.Require().NoError(err)
	s.True(res.Accepted)
	s.Equal(models.OutcomeApplied, res.Outcome)
	s.Equal("Payment confirmed and processed", res.Message)

	paid := s.reload(reg.ID.Hex())
	s.Equal(models.StatusCompleted, paid.PaymentStatus)
	s.True(paid.IsFullyPaid)
	s.True(paid.EmailSent)
	s.EqualValues(500000, paid.TotalPaid)
	s.Require().NotNil(paid.PaymentDate)
	s.True(paid.PaymentDate.Equal(paidAt))
	s.Equal("OM", paid.Installments[0].PaymentMethod)
	s.Equal(s.archiver.url, paid.ReceiptURL)

	res, err = s.reconciler.HandleNotification(s.ctx, n)
	s.Require().NoError(err)
	s.True(res.Accepted)
	s.Equal(models.OutcomeDuplicate, res.Outcome)

	again := s.reload(reg.ID.Hex())
	s.Equal(paid.TotalPaid, again.TotalPaid)
	s.Equal(paid.Installments, again.Installments)
	s.EqualValues(1, s.notifier.confirmations.Load())
	s.EqualValues(1, s.notifier.organization.Load())
	s.EqualValues(0, s.notifier.progress.Load())
	s.EqualValues(1, s.archiver.calls.Load())
	s.Zero(s.archiver.discarded.Load())
	s.Equal([]string{payments.EventInstallmentCompleted, payments.EventRegistrationPaid}, s.publisher.types())
	s.ElementsMatch([]string{models.OutcomeApplied, models.OutcomeDuplicate}, s.outcomes(inst.TransactionID))
}

func (s *ReconcilerSuite) TestInstallmentsCompleteInOrder() {
	reg := s.register(2500000)
	s.Require().Len(reg.Installments, 3)
	base := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	for i, inst := range reg.Installments[:2] {
		res, err := s.reconciler.HandleNotification(s.ctx, notification(inst.TransactionID, base.Add(time.Duration(i)*time.Hour)))
		s.Require().NoError(err)
		s.Equal(models.OutcomeApplied, res.Outcome)

		current := s.reload(reg.ID.Hex())
		s.Equal(models.StatusPending, current.PaymentStatus)
		s.False(current.IsFullyPaid)
		s.False(current.EmailSent)
		s.Nil(current.PaymentDate)
	}
	s.EqualValues(2, s.notifier.progress.Load())
	s.EqualValues(0, s.notifier.confirmations.Load())
	s.EqualValues(1999998, s.reload(reg.ID.Hex()).TotalPaid)

	last := reg.Installments[2]
	lastPaid := base.Add(5 * time.Hour)
	_, err := s.reconciler.HandleNotification(s.ctx, notification(last.TransactionID, lastPaid))
	s.Require().NoError(err)

	done := s.reload(reg.ID.Hex())
	s.True(done.IsFullyPaid)
	s.Equal(models.StatusCompleted, done.PaymentStatus)
	s.EqualValues(2500000, done.TotalPaid)
	s.Require().NotNil(done.PaymentDate)
	s.True(done.PaymentDate.Equal(lastPaid))
	s.EqualValues(2, s.notifier.progress.Load())
	s.EqualValues(1, s.notifier.confirmations.Load())
	s.EqualValues(1, s.notifier.organization.Load())
}

func (s *ReconcilerSuite) TestUnknownTransactionIsNotFound() {
	reg := s.register(2500000)

	_, err := s.reconciler.HandleNotification(s.ctx, notification("SIFIA-INST-0-0-ffffff", fixedNow))
	s.True(payments.IsKind(err, payments.KindNotFound), "got %v", err)

	s.Equal(reg.Installments, s.reload(reg.ID.Hex()).Installments)
	s.Empty(s.publisher.types())
	s.Equal([]string{models.OutcomeNotFound}, s.outcomes("SIFIA-INST-0-0-ffffff"))
}

func (s *ReconcilerSuite) TestVerificationFailureLeavesStateUntouched() {
	reg := s.register(500000)
	tx := reg.Installments[0].TransactionID

	s.Run("gateway error", func() {
		s.gateway.verifyErr = errors.New("connection reset by peer")
		defer func() { s.gateway.verifyErr = nil }()

		_, err := s.reconciler.HandleNotification(s.ctx, notification(tx, fixedNow))
		s.True(payments.IsKind(err, payments.KindGateway), "got %v", err)
	})

	s.Run("timeout", func() {
		s.gateway.verifyDelay = time.Second
		defer func() { s.gateway.verifyDelay = 0 }()

		r := payments.NewReconciler(s.store, s.gateway, payments.ReconcilerConfig{VerifyTimeout: 20 * time.Millisecond},
			payments.WithLogger(discard), payments.WithNotificationJournal(s.journal))
		_, err := r.HandleNotification(s.ctx, notification(tx, fixedNow))
		s.True(payments.IsKind(err, payments.KindGateway), "got %v", err)
	})

	current := s.reload(reg.ID.Hex())
	s.Equal(models.StatusPending, current.Installments[0].Status)
	s.Equal(models.StatusPending, current.PaymentStatus)
	s.EqualValues(0, s.notifier.confirmations.Load())
	s.Equal([]string{models.OutcomeError, models.OutcomeError}, s.outcomes(tx))
}

func (s *ReconcilerSuite) TestConcurrentDeliveriesSendOneConfirmation() {
	reg := s.register(500000)
	inst := reg.Installments[0]
	s.gateway.verifyDelay = 5 * time.Millisecond
	m := metrics.New(prometheus.NewRegistry())

	// separate reconcilers stand in for separate server processes
	reconcilers := []*payments.Reconciler{
		s.newReconciler(payments.WithMetrics(m)),
		s.newReconciler(payments.WithMetrics(m)),
		s.newReconciler(payments.WithMetrics(m)),
	}
	const deliveries = 12

	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		mu       sync.Mutex
		outcomes []string
	)
	for i := range deliveries {
		wg.Add(1)
		go func(r *payments.Reconciler) {
			defer wg.Done()
			<-start
			res, err := r.HandleNotification(s.ctx, notification(inst.TransactionID, fixedNow.Add(-time.Hour)))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcomes = append(outcomes, err.Error())
				return
			}
			outcomes = append(outcomes, res.Outcome)
		}(reconcilers[i%len(reconcilers)])
	}
	close(start)
	wg.Wait()

	s.Len(outcomes, deliveries)
	s.Equal(1, count(outcomes, models.OutcomeApplied))
	s.Equal(deliveries-1, count(outcomes, models.OutcomeDuplicate))

	journaled := s.outcomes(inst.TransactionID)
	s.Len(journaled, deliveries)
	s.ElementsMatch(outcomes, journaled)
	s.Equal(1.0, testutil.ToFloat64(m.WebhookNotifications.WithLabelValues(models.OutcomeApplied)))
	s.Equal(float64(deliveries-1), testutil.ToFloat64(m.WebhookNotifications.WithLabelValues(models.OutcomeDuplicate)))

	final := s.reload(reg.ID.Hex())
	s.Equal(models.StatusCompleted, final.Installments[0].Status)
	s.True(final.EmailSent)
	s.Require().NotNil(final.PaymentDate)
	s.True(final.PaymentDate.Equal(fixedNow.Add(-time.Hour)))
	s.EqualValues(1, s.notifier.confirmations.Load())
	s.EqualValues(1, s.notifier.organization.Load())
}

func (s *ReconcilerSuite) TestCoalescedDeliveriesAreJournaledSeparately() {
	reg := s.register(500000)
	tx := reg.Installments[0].TransactionID
	s.gateway.verifyDelay = 50 * time.Millisecond

	const deliveries = 5
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes []string
	)
	for range deliveries {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.reconciler.HandleNotification(s.ctx, notification(tx, fixedNow))
			s.NoError(err)
			if res != nil {
				mu.Lock()
				outcomes = append(outcomes, res.Outcome)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, count(outcomes, models.OutcomeApplied))
	s.Equal(deliveries-1, count(outcomes, models.OutcomeDuplicate))
	s.Len(s.outcomes(tx), deliveries)
	s.LessOrEqual(s.gateway.verifyCalls.Load(), int32(deliveries))
	s.EqualValues(1, s.notifier.confirmations.Load())
}

func (s *ReconcilerSuite) TestCancelledDeliveryDoesNotFailCoalescedOnes() {
	reg := s.register(500000)
	tx := reg.Installments[0].TransactionID
	s.gateway.verifyDelay = 80 * time.Millisecond

	first, cancel := context.WithCancel(s.ctx)
	defer cancel()

	type delivery struct {
		res *payments.ReconcileResult
		err error
	}
	firstDone := make(chan delivery, 1)
	secondDone := make(chan delivery, 1)
	go func() {
		res, err := s.reconciler.HandleNotification(first, notification(tx, fixedNow))
		firstDone <- delivery{res, err}
	}()
	time.Sleep(10 * time.Millisecond)
	go func() {
		res, err := s.reconciler.HandleNotification(s.ctx, notification(tx, fixedNow))
		secondDone <- delivery{res, err}
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	a, b := <-firstDone, <-secondDone
	s.Require().NoError(a.err)
	s.Require().NoError(b.err)
	s.ElementsMatch([]string{models.OutcomeApplied, models.OutcomeDuplicate}, []string{a.res.Outcome, b.res.Outcome})
	s.Equal(models.StatusCompleted, s.reload(reg.ID.Hex()).Installments[0].Status)
}

func (s *ReconcilerSuite) TestFailedSinglePaymentFailsRegistration() {
	reg := s.register(500000)
	inst := reg.Installments[0]
	s.gateway.status = "REFUSED"

	res, err := s.reconciler.HandleNotification(s.ctx, notification(inst.TransactionID, fixedNow))
	s.Require().NoError(err)
	s.False(res.Accepted)
	s.Equal(models.OutcomeFailed, res.Outcome)
	s.Equal("Payment failed or rejected", res.Message)

	current := s.reload(reg.ID.Hex())
	s.Equal(models.StatusFailed, current.Installments[0].Status)
	s.Equal(models.StatusFailed, current.PaymentStatus)
	s.EqualValues(0, s.notifier.confirmations.Load()+s.notifier.progress.Load())
	s.Equal([]string{payments.EventInstallmentFailed}, s.publisher.types())
}

func (s *ReconcilerSuite) TestFailedInstallmentKeepsRegistrationPending() {
	reg := s.register(2500000)
	second := reg.Installments[1]
	s.gateway.status = "REFUSED"

	res, err := s.reconciler.HandleNotification(s.ctx, withMetadata(notification(second.TransactionID, fixedNow), payments.CheckoutMetadata{
		RegistrationID: reg.ID.Hex(),
		InstallmentID:  second.ID.Hex(),
		IsInstallment:  true,
	}))
	s.Require().NoError(err)
	s.False(res.Accepted)
	s.Equal(second.ID.Hex(), res.InstallmentID)

	current := s.reload(reg.ID.Hex())
	s.Equal(models.StatusFailed, current.Installments[1].Status)
	s.Equal(models.StatusPending, current.PaymentStatus)
}

func (s *ReconcilerSuite) TestFailureDoesNotOverrideCompletion() {
	reg := s.register(2500000)
	first := reg.Installments[0]

	_, err := s.reconciler.HandleNotification(s.ctx, notification(first.TransactionID, fixedNow))
	s.Require().NoError(err)

	s.gateway.status = "REFUSED"
	res, err := s.reconciler.HandleNotification(s.ctx, notification(first.TransactionID, fixedNow))
	s.Require().NoError(err)
	s.False(res.Accepted)

	s.Equal(models.StatusCompleted, s.reload(reg.ID.Hex()).Installments[0].Status)
}

func (s *ReconcilerSuite) TestAcceptedAfterFailureCompletes() {
	reg := s.register(2500000)
	first := reg.Installments[0]

	s.gateway.status = "REFUSED"
	_, err := s.reconciler.HandleNotification(s.ctx, notification(first.TransactionID, fixedNow))
	s.Require().NoError(err)

	s.gateway.status = payments.StatusAccepted
	res, err := s.reconciler.HandleNotification(s.ctx, notification(first.TransactionID, fixedNow))
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, res.Outcome)
	s.Equal(models.StatusCompleted, s.reload(reg.ID.Hex()).Installments[0].Status)
}

func (s *ReconcilerSuite) TestFailureForUnknownTransactionIsAcknowledged() {
	s.gateway.status = "REFUSED"

	res, err := s.reconciler.HandleNotification(s.ctx, notification("SIFIA-INST-0-0-000000", fixedNow))
	s.Require().NoError(err)
	s.False(res.Accepted)
	s.Equal(models.OutcomeFailed, res.Outcome)
}

func (s *ReconcilerSuite) TestRejectsMalformedNotifications() {
	_, err := s.reconciler.HandleNotification(s.ctx, payments.Notification{TransactionID: "  "})
	var perr *payments.Error
	s.Require().True(errors.As(err, &perr))
	s.Equal(payments.KindValidation, perr.Kind)
	s.Equal([]string{"cpm_trans_id", "cpm_site_id", "cpm_trans_status"}, perr.Fields)

	n := notification("SIFIA-X", fixedNow)
	n.SiteID = "someone-else"
	_, err = s.reconciler.HandleNotification(s.ctx, n)
	s.True(payments.IsKind(err, payments.KindValidation), "got %v", err)

	s.Zero(s.gateway.verifyCalls.Load())
	s.Equal([]string{models.OutcomeRejected}, s.outcomes("SIFIA-X"))
}

func (s *ReconcilerSuite) TestMetadataFallsBackToTransactionWithinRegistration() {
	reg := s.register(2500000)
	second := reg.Installments[1]

	res, err := s.reconciler.HandleNotification(s.ctx, withMetadata(notification(second.TransactionID, fixedNow), payments.CheckoutMetadata{
		RegistrationID: reg.ID.Hex(),
		InstallmentID:  "garbage",
		IsInstallment:  true,
	}))
	s.Require().NoError(err)
	s.Equal(second.ID.Hex(), res.InstallmentID)
	s.Equal(models.StatusCompleted, s.reload(reg.ID.Hex()).Installments[1].Status)
}

func (s *ReconcilerSuite) TestUnparseableMetadataIsIgnored() {
	reg := s.register(500000)
	n := notification(reg.Installments[0].TransactionID, fixedNow)
	n.Metadata = "{not json"

	res, err := s.reconciler.HandleNotification(s.ctx, n)
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, res.Outcome)
}

func (s *ReconcilerSuite) TestPaymentMethodAndDateFallbacks() {
	reg := s.register(2500000)
	s.gateway.method = "MOMO"

	first := notification(reg.Installments[0].TransactionID, fixedNow)
	first.PaymentMethod = ""
	first.PaymentDate = "2025-03-30 14:05:00"
	_, err := s.reconciler.HandleNotification(s.ctx, first)
	s.Require().NoError(err)

	s.gateway.method = ""
	second := notification(reg.Installments[1].TransactionID, fixedNow)
	second.PaymentMethod = ""
	second.PaymentDate = "yesterday"
	_, err = s.reconciler.HandleNotification(s.ctx, second)
	s.Require().NoError(err)

	current := s.reload(reg.ID.Hex())
	s.Equal("MOMO", current.Installments[0].PaymentMethod)
	s.True(current.Installments[0].PaymentDate.Equal(time.Date(2025, 3, 30, 14, 5, 0, 0, time.UTC)))
	s.Equal(payments.DefaultPaymentMethod, current.Installments[1].PaymentMethod)
	s.True(current.Installments[1].PaymentDate.Equal(fixedNow))
}

func (s *ReconcilerSuite) TestEmailFailureDoesNotFailNotification() {
	reg := s.register(500000)
	s.notifier.err = errors.New("mail relay down")
	s.archiver.url = ""

	res, err := s.reconciler.HandleNotification(s.ctx, notification(reg.Installments[0].TransactionID, fixedNow))
	s.Require().NoError(err)
	s.Equal(models.OutcomeApplied, res.Outcome)

	current := s.reload(reg.ID.Hex())
	s.True(current.EmailSent)
	s.Equal(models.StatusCompleted, current.PaymentStatus)
	s.Empty(current.ReceiptURL)
}

func (s *ReconcilerSuite) TestAggregateInvariantHolds() {
	reg := s.register(2500000)
	statuses := []string{payments.StatusAccepted, "REFUSED", payments.StatusAccepted}

	for i, inst := range reg.Installments {
		s.gateway.status = statuses[i]
		_, err := s.reconciler.HandleNotification(s.ctx, notification(inst.TransactionID, fixedNow))
		s.Require().NoError(err)

		current := s.reload(reg.ID.Hex())
		var sum int64
		for _, in := range current.Installments {
			if in.Status == models.StatusCompleted {
				sum += in.Amount
			}
		}
		s.Equal(sum, current.TotalPaid)
		s.Equal(current.TotalPaid >= current.Amount, current.IsFullyPaid)
	}
	s.Equal(models.StatusPending, s.reload(reg.ID.Hex()).PaymentStatus)
}

func count(values []string, want string) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}
