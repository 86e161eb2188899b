package payments

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/phillip/event-registration-go/metrics"
	"github.com/phillip/event-registration-go/models"
)

// collaborators are the optional dependencies shared by the payment services.
// Anything not supplied falls back to a no-op.
type collaborators struct {
	logger    *slog.Logger
	metrics   *metrics.Metrics
	cache     ProgressCache
	publisher EventPublisher
	notifier  Notifier
	receipts  ReceiptArchiver
	journal   NotificationJournal
	now       func() time.Time
}

type Option func(*collaborators)

func WithLogger(logger *slog.Logger) Option {
	return func(c *collaborators) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *collaborators) { c.metrics = m }
}

func WithProgressCache(cache ProgressCache) Option {
	return func(c *collaborators) { c.cache = cache }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(c *collaborators) { c.publisher = p }
}

func WithNotifier(n Notifier) Option {
	return func(c *collaborators) { c.notifier = n }
}

func WithReceiptArchiver(a ReceiptArchiver) Option {
	return func(c *collaborators) { c.receipts = a }
}

func WithNotificationJournal(j NotificationJournal) Option {
	return func(c *collaborators) { c.journal = j }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *collaborators) { c.now = now }
}

func newCollaborators(opts []Option) collaborators {
	c := collaborators{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:     noopCache{},
		publisher: noopPublisher{},
		notifier:  noopNotifier{},
		receipts:  noopReceipts{},
		journal:   noopJournal{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// invalidate drops every cached progress entry that can resolve to reg. reg
// must be the committed document so its version fences older snapshots.
func (c *collaborators) invalidate(ctx context.Context, reg *models.Registration, extra ...string) {
	keys := append(progressKeys(reg), extra...)
	c.cache.Invalidate(ctx, reg.Version, keys...)
}

func progressKeys(reg *models.Registration) []string {
	keys := []string{RegistrationKey(reg.ID.Hex())}
	for _, inst := range reg.Installments {
		keys = append(keys, TransactionKey(inst.TransactionID))
	}
	return keys
}

// RegistrationKey and TransactionKey name progress cache entries.
func RegistrationKey(id string) string { return "reg:" + id }

func TransactionKey(transactionID string) string { return "tx:" + transactionID }

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*PaymentProgress, bool) { return nil, false }
func (noopCache) Set(context.Context, string, *PaymentProgress)        {}
func (noopCache) Invalidate(context.Context, int64, ...string)         {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

type noopNotifier struct{}

func (noopNotifier) SendConfirmation(context.Context, *models.Registration) error       { return nil }
func (noopNotifier) SendOrganizationNotice(context.Context, *models.Registration) error { return nil }
func (noopNotifier) SendInstallmentProgress(context.Context, *models.Registration, models.Installment, int) error {
	return nil
}

type noopReceipts struct{}

func (noopReceipts) ArchiveReceipt(context.Context, *models.Registration) (string, error) {
	return "", nil
}

func (noopReceipts) DiscardReceipt(context.Context, string) error { return nil }

type noopJournal struct{}

func (noopJournal) Record(context.Context, *models.PaymentNotification) error { return nil }
