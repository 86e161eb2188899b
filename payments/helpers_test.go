package payments_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/payments"
	"github.com/phillip/event-registration-go/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var fixedNow = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type stubGateway struct {
	mu          sync.Mutex
	checkouts   []payments.CheckoutRequest
	checkoutErr error
	status      string
	method      string
	verifyErr   error
	verifyDelay time.Duration
	verifyCalls atomic.Int32
}

func newStubGateway() *stubGateway {
	return &stubGateway{status: payments.StatusAccepted}
}

func (g *stubGateway) CreateCheckout(_ context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.checkoutErr != nil {
		return nil, g.checkoutErr
	}
	g.checkouts = append(g.checkouts, req)
	return &payments.CheckoutSession{PaymentURL: "https://checkout.test/pay/" + req.TransactionID, PaymentToken: "tok"}, nil
}

func (g *stubGateway) VerifyTransaction(ctx context.Context, _ string) (*payments.Verification, error) {
	g.verifyCalls.Add(1)
	g.mu.Lock()
	delay, status, method, verr := g.verifyDelay, g.status, g.method, g.verifyErr
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if verr != nil {
		return nil, verr
	}
	return &payments.Verification{Status: status, PaymentMethod: method}, nil
}

func (g *stubGateway) lastCheckout() payments.CheckoutRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.checkouts[len(g.checkouts)-1]
}

func (g *stubGateway) checkoutCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.checkouts)
}

type countingNotifier struct {
	confirmations atomic.Int32
	organization  atomic.Int32
	progress      atomic.Int32
	err           error
}

func (n *countingNotifier) SendConfirmation(context.Context, *models.Registration) error {
	n.confirmations.Add(1)
	return n.err
}

func (n *countingNotifier) SendOrganizationNotice(context.Context, *models.Registration) error {
	n.organization.Add(1)
	return n.err
}

func (n *countingNotifier) SendInstallmentProgress(context.Context, *models.Registration, models.Installment, int) error {
	n.progress.Add(1)
	return n.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []payments.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e payments.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type staticArchiver struct {
	url       string
	calls     atomic.Int32
	discarded atomic.Int32
}

func (a *staticArchiver) DiscardReceipt(context.Context, string) error {
	a.discarded.Add(1)
	return nil
}

func (a *staticArchiver) ArchiveReceipt(context.Context, *models.Registration) (string, error) {
	a.calls.Add(1)
	if a.url == "" {
		return "", errors.New("archive offline")
	}
	return a.url, nil
}

// sequenceGenerator hands out fixed ids in order, repeating the last one.
type sequenceGenerator struct {
	mu  sync.Mutex
	ids []string
	n   int
}

func (g *sequenceGenerator) GenerateUnique(context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.ids[min(g.n, len(g.ids)-1)]
	g.n++
	return id, nil
}

func input(email string, amount int64) payments.RegistrationInput {
	return payments.RegistrationInput{
		FirstName:         "Awa",
		LastName:          "Traoré",
		Email:             email,
		Phone:             "+2250700000000",
		Country:           "CI",
		Postal:            "00225",
		City:              "Abidjan",
		Address:           "Plateau",
		ParticipantTypeID: "pt-1",
		ParticipantType:   "Exhibitor",
		PackageID:         "pkg-1",
		PackageName:       "Gold",
		Amount:            amount,
	}
}

func newInitiator(s *store.InMemoryRegistrationStore, g payments.Gateway, opts ...payments.Option) *payments.Initiator {
	opts = append([]payments.Option{payments.WithLogger(discard), payments.WithClock(clock)}, opts...)
	return payments.NewInitiator(
		s,
		g,
		payments.NewConfirmationCodeGenerator("SIFIA-2025", s.ConfirmationCodeExists),
		payments.NewTransactionIDGenerator("SIFIA", s.TransactionIDExists),
		payments.InitiatorConfig{EventName: "SIFIA 2025", FrontendURL: "https://sifia.test"},
		opts...,
	)
}
