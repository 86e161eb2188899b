package payments

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/sentinel"
)

const maxCodeAttempts = 3

// RegistrationInput is a registration form submission.
type RegistrationInput struct {
	FirstName         string `json:"first_name" form:"first_name" validate:"required"`
	LastName          string `json:"last_name" form:"last_name" validate:"required"`
	Email             string `json:"email" form:"email" validate:"required,email"`
	Phone             string `json:"phone" form:"phone" validate:"required"`
	Company           string `json:"company" form:"company"`
	Country           string `json:"country" form:"country" validate:"required"`
	Postal            string `json:"postal" form:"postal" validate:"required"`
	City              string `json:"city" form:"city" validate:"required"`
	Address           string `json:"address" form:"address" validate:"required"`
	ParticipantTypeID string `json:"participant_type_id" form:"participant_type_id" validate:"required"`
	ParticipantType   string `json:"participant_type" form:"participant_type" validate:"required"`
	PackageID         string `json:"package_id" form:"package_id" validate:"required"`
	PackageName       string `json:"package_name" form:"package_name" validate:"required"`
	Sector            string `json:"sector" form:"sector"`
	AdditionalInfo    string `json:"additional_info" form:"additional_info"`
	Amount            int64  `json:"amount" form:"amount" validate:"required,gt=0"`
	Currency          string `json:"currency" form:"currency"`
	Language          string `json:"language" form:"language" validate:"omitempty,oneof=en fr"`
}

func (in *RegistrationInput) normalize() {
	for _, f := range []*string{
		&in.FirstName, &in.LastName, &in.Phone, &in.Company, &in.Country, &in.Postal,
		&in.City, &in.Address, &in.ParticipantTypeID, &in.ParticipantType, &in.PackageID,
		&in.PackageName, &in.Sector, &in.AdditionalInfo, &in.Currency, &in.Language,
	} {
		*f = strings.TrimSpace(*f)
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Language = strings.ToLower(in.Language)
}

func (in RegistrationInput) toRegistration(now time.Time) *models.Registration {
	currency := in.Currency
	if currency == "" {
		currency = models.DefaultCurrency
	}
	language := in.Language
	if language == "" {
		language = models.LanguageFrench
	}
	return &models.Registration{
		ID:                primitive.NewObjectID(),
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		Email:             in.Email,
		Phone:             in.Phone,
		Company:           in.Company,
		Country:           in.Country,
		Postal:            in.Postal,
		City:              in.City,
		Address:           in.Address,
		ParticipantTypeID: in.ParticipantTypeID,
		ParticipantType:   in.ParticipantType,
		PackageID:         in.PackageID,
		PackageName:       in.PackageName,
		Sector:            in.Sector,
		AdditionalInfo:    in.AdditionalInfo,
		Language:          language,
		Amount:            in.Amount,
		Currency:          currency,
		PaymentStatus:     models.StatusPending,
		Installments:      []models.Installment{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

type InitiatorConfig struct {
	// InstallmentLimit caps a single gateway transaction. Zero means MaxTransactionAmount.
	InstallmentLimit int64
	EventName        string
	FrontendURL      string
}

// InitiateResult carries either an installment plan summary or a checkout URL.
type InitiateResult struct {
	RegistrationID       string
	ConfirmationCode     string
	RequiresInstallments bool
	TotalInstallments    int
	PaymentURL           string
}

type InstallmentCheckout struct {
	RegistrationID    string
	InstallmentID     string
	InstallmentNumber int
	TotalInstallments int
	PaymentURL        string
}

// Initiator creates registrations, attaches installment plans and opens
// gateway checkout sessions.
type Initiator struct {
	collaborators
	store        RegistrationStore
	gateway      Gateway
	codes        IDGenerator
	transactions IDGenerator
	validate     *validator.Validate
	cfg          InitiatorConfig
}

func NewInitiator(store RegistrationStore, gateway Gateway, codes, transactions IDGenerator, cfg InitiatorConfig, opts ...Option) *Initiator {
	if cfg.InstallmentLimit <= 0 {
		cfg.InstallmentLimit = MaxTransactionAmount
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	return &Initiator{
		collaborators: newCollaborators(opts),
		store:         store,
		gateway:       gateway,
		codes:         codes,
		transactions:  transactions,
		validate:      v,
		cfg:           cfg,
	}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

// Initiate handles a registration submission. Amounts above the installment
// limit return a plan summary; smaller ones go straight to a checkout session.
func (s *Initiator) Initiate(ctx context.Context, in RegistrationInput) (*InitiateResult, error) {
	in.normalize()
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	reg, err := s.findOrCreate(ctx, in)
	if err != nil {
		return nil, err
	}

	reg, err = s.attachPlan(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	if reg.IsFullyPaid {
		return nil, NewValidationError("registration is already fully paid")
	}

	result := &InitiateResult{
		RegistrationID:    reg.ID.Hex(),
		ConfirmationCode:  reg.ConfirmationCode,
		TotalInstallments: len(reg.Installments),
	}
	if len(reg.Installments) > 1 {
		result.RequiresInstallments = true
		s.logger.InfoContext(ctx, "registration requires installment payments",
			"registration_id", result.RegistrationID,
			"installments", result.TotalInstallments,
		)
		return result, nil
	}

	inst := reg.Installments[0]
	if inst.Status == models.StatusFailed {
		reg, inst, err = s.retryFailed(ctx, reg.ID, inst.ID)
		if err != nil {
			return nil, err
		}
	}

	session, err := s.checkout(ctx, reg, inst, false)
	if err != nil {
		return nil, err
	}
	result.PaymentURL = session.PaymentURL
	return result, nil
}

// CreatePlan attaches an installment plan to a registration that has none.
func (s *Initiator) CreatePlan(ctx context.Context, registrationID string) (*models.Registration, error) {
	id, err := parseObjectID(registrationID, "registration_id")
	if err != nil {
		return nil, err
	}
	reg, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "registration not found")
	}
	if reg.HasPlan() {
		return nil, NewValidationError("installments already exist for this registration")
	}
	return s.attachPlan(ctx, id)
}

// EnsurePlan returns the registration, creating its plan first when missing.
func (s *Initiator) EnsurePlan(ctx context.Context, registrationID string) (*models.Registration, error) {
	id, err := parseObjectID(registrationID, "registration_id")
	if err != nil {
		return nil, err
	}
	return s.attachPlan(ctx, id)
}

// CheckoutInstallment opens a checkout session for one installment of a plan.
// A failed installment is first given a fresh transaction id.
func (s *Initiator) CheckoutInstallment(ctx context.Context, installmentID string) (*InstallmentCheckout, error) {
	id, err := parseObjectID(installmentID, "installment_id")
	if err != nil {
		return nil, err
	}
	reg, err := s.store.FindByInstallmentID(ctx, id)
	if err != nil {
		return nil, storeError(err, "registration or installment not found")
	}
	inst := reg.Installment(id)
	if inst == nil {
		return nil, NewNotFoundError("installment not found")
	}

	current := *inst
	switch current.Status {
	case models.StatusCompleted:
		return nil, NewValidationError("this installment has already been paid")
	case models.StatusFailed:
		reg, current, err = s.retryFailed(ctx, reg.ID, id)
		if err != nil {
			return nil, err
		}
	}

	session, err := s.checkout(ctx, reg, current, true)
	if err != nil {
		return nil, err
	}
	return &InstallmentCheckout{
		RegistrationID:    reg.ID.Hex(),
		InstallmentID:     current.ID.Hex(),
		InstallmentNumber: current.Number(),
		TotalInstallments: len(reg.Installments),
		PaymentURL:        session.PaymentURL,
	}, nil
}

func (s *Initiator) validateInput(in RegistrationInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return NewValidationError("invalid registration input")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return NewValidationError("missing or invalid required fields", fields...)
}

// findOrCreate reuses the registration keyed by (email, package) or inserts a
// new one under a fresh confirmation code.
func (s *Initiator) findOrCreate(ctx context.Context, in RegistrationInput) (*models.Registration, error) {
	existing, err := s.store.FindByEmailAndPackage(ctx, in.Email, in.PackageID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, NewPersistenceError("failed to look up registration", err)
	}

	reg := in.toRegistration(s.now())
	for range maxCodeAttempts {
		code, err := s.codes.GenerateUnique(ctx)
		if err != nil {
			return nil, err
		}
		reg.ConfirmationCode = code

		err = s.store.Insert(ctx, reg)
		if err == nil {
			s.logger.InfoContext(ctx, "registration created",
				"registration_id", reg.ID.Hex(),
				"confirmation_code", reg.ConfirmationCode,
			)
			return reg, nil
		}

		var dup *sentinel.DuplicateKeyError
		if !errors.As(err, &dup) {
			return nil, NewPersistenceError("failed to save registration", err)
		}
		if dup.Key == sentinel.KeyEmailPackage {
			// another submission for the same pair won the insert
			existing, err := s.store.FindByEmailAndPackage(ctx, in.Email, in.PackageID)
			if err != nil {
				return nil, storeError(err, "failed to look up registration")
			}
			return existing, nil
		}
		s.logger.WarnContext(ctx, "confirmation code collision, retrying", "code", code)
	}
	return nil, NewConflictError("could not allocate a unique confirmation code", sentinel.ErrConflict)
}

// attachPlan splits the registration amount into installments when no plan
// exists yet. An existing plan is never replaced.
func (s *Initiator) attachPlan(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	var plan []models.Installment
	reg, changed, err := mutate(ctx, s.store, id, s.now, func(reg *models.Registration) (bool, error) {
		if reg.HasPlan() {
			return false, nil
		}
		if plan == nil {
			built, err := s.buildPlan(ctx, reg.Amount)
			if err != nil {
				return false, err
			}
			plan = built
		}
		reg.Installments = append([]models.Installment(nil), plan...)
		reg.Recompute()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.invalidate(ctx, reg)
		s.logger.InfoContext(ctx, "installment plan attached",
			"registration_id", reg.ID.Hex(),
			"installments", len(reg.Installments),
		)
	}
	return reg, nil
}

func (s *Initiator) buildPlan(ctx context.Context, amount int64) ([]models.Installment, error) {
	amounts, err := SplitAmount(amount, s.cfg.InstallmentLimit)
	if err != nil {
		return nil, NewValidationError("amount must be a positive value", "amount")
	}

	seen := make(map[string]struct{}, len(amounts))
	plan := make([]models.Installment, 0, len(amounts))
	for i, a := range amounts {
		txID, err := s.uniqueTransactionID(ctx, seen)
		if err != nil {
			return nil, err
		}
		plan = append(plan, models.Installment{
			ID:            primitive.NewObjectID(),
			Amount:        a,
			Status:        models.StatusPending,
			TransactionID: txID,
			Index:         i,
		})
	}
	return plan, nil
}

func (s *Initiator) uniqueTransactionID(ctx context.Context, seen map[string]struct{}) (string, error) {
	for range defaultGenerateAttempts {
		txID, err := s.transactions.GenerateUnique(ctx)
		if err != nil {
			return "", err
		}
		if _, dup := seen[txID]; dup {
			continue
		}
		seen[txID] = struct{}{}
		return txID, nil
	}
	return "", NewConflictError("could not generate a unique transaction id", nil)
}

// retryFailed moves a failed installment back to pending under a new
// transaction id. Index and amount are untouched.
func (s *Initiator) retryFailed(ctx context.Context, regID, instID primitive.ObjectID) (*models.Registration, models.Installment, error) {
	var fresh, previous string
	reg, changed, err := mutate(ctx, s.store, regID, s.now, func(reg *models.Registration) (bool, error) {
		inst := reg.Installment(instID)
		if inst == nil {
			return false, NewNotFoundError("installment not found")
		}
		if inst.Status != models.StatusFailed {
			return false, nil
		}
		if fresh == "" {
			txID, err := s.uniqueTransactionID(ctx, map[string]struct{}{})
			if err != nil {
				return false, err
			}
			fresh = txID
		}
		previous = inst.TransactionID
		inst.TransactionID = fresh
		inst.Status = models.StatusPending
		inst.PaymentDate = nil
		inst.PaymentMethod = ""
		reg.Recompute()
		return true, nil
	})
	if err != nil {
		return nil, models.Installment{}, err
	}
	if changed {
		s.invalidate(ctx, reg, TransactionKey(previous))
		s.logger.InfoContext(ctx, "failed installment reissued",
			"registration_id", reg.ID.Hex(),
			"installment_id", instID.Hex(),
			"transaction_id", fresh,
		)
	}
	return reg, *reg.Installment(instID), nil
}

func (s *Initiator) checkout(ctx context.Context, reg *models.Registration, inst models.Installment, isInstallment bool) (*CheckoutSession, error) {
	total := len(reg.Installments)
	description := fmt.Sprintf("%s - %s - %s", s.cfg.EventName, reg.ParticipantType, reg.PackageName)
	returnURL := s.cfg.FrontendURL + "/payment-success"
	cancelURL := s.cfg.FrontendURL + "/payment-failure"
	meta := CheckoutMetadata{
		RegistrationID: reg.ID.Hex(),
		InstallmentID:  inst.ID.Hex(),
		IsInstallment:  isInstallment,
	}
	flow := "single"
	if isInstallment {
		flow = "installment"
		description = fmt.Sprintf("%s - Installment %d/%d", description, inst.Number(), total)
		returnURL += "?installment=" + inst.ID.Hex()
		cancelURL += "?installment=" + inst.ID.Hex()
		meta.InstallmentNumber = inst.Number()
		meta.TotalInstallments = total
	}

	language := models.LanguageEnglish
	if reg.Language == models.LanguageFrench {
		language = models.LanguageFrench
	}

	req := CheckoutRequest{
		TransactionID: inst.TransactionID,
		Amount:        inst.Amount,
		Currency:      reg.Currency,
		Description:   description,
		Customer: Customer{
			ID:      reg.ID.Hex(),
			Name:    reg.FirstName,
			Surname: reg.LastName,
			Email:   reg.Email,
			Phone:   strings.TrimPrefix(reg.Phone, "+"),
			Address: reg.Address,
			City:    reg.City,
			State:   reg.Country,
			Country: reg.Country,
			Zip:     reg.Postal,
		},
		ReturnURL: returnURL,
		CancelURL: cancelURL,
		Language:  language,
		Metadata:  meta,
	}

	started := time.Now()
	session, err := s.gateway.CreateCheckout(ctx, req)
	s.metrics.ObserveGatewayCall("checkout", started, err)
	if err != nil {
		if KindOf(err) == "" {
			err = NewGatewayError("failed to create payment session", err)
		}
		s.logger.ErrorContext(ctx, "checkout creation failed",
			"registration_id", reg.ID.Hex(),
			"transaction_id", inst.TransactionID,
			"error", err.Error(),
		)
		return nil, err
	}
	if session == nil || session.PaymentURL == "" {
		return nil, NewGatewayError("gateway returned no payment session", nil)
	}

	s.metrics.IncrementCheckouts(flow)
	s.logger.InfoContext(ctx, "checkout session created",
		"registration_id", reg.ID.Hex(),
		"transaction_id", inst.TransactionID,
		"flow", flow,
	)
	return session, nil
}

func parseObjectID(raw, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, NewValidationError("invalid "+strings.ReplaceAll(field, "_", " "), field)
	}
	return id, nil
}
