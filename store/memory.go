package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/sentinel"
)

// InMemoryRegistrationStore mirrors RegistrationStore semantics, including
// the unique keys and the version compare-and-swap. Values are copied on the
// way in and out.
type InMemoryRegistrationStore struct {
	mu   sync.RWMutex
	regs map[primitive.ObjectID]*models.Registration
}

func NewInMemoryRegistrationStore() *InMemoryRegistrationStore {
	return &InMemoryRegistrationStore{regs: make(map[primitive.ObjectID]*models.Registration)}
}

func (s *InMemoryRegistrationStore) Insert(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	if _, ok := s.regs[reg.ID]; ok {
		return fmt.Errorf("duplicate id: %w", sentinel.ErrConflict)
	}
	if err := s.checkUnique(reg); err != nil {
		return err
	}
	s.regs[reg.ID] = clone(reg)
	return nil
}

func (s *InMemoryRegistrationStore) Replace(_ context.Context, reg *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.regs[reg.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != reg.Version {
		return fmt.Errorf("registration %s at version %d: %w", reg.ID.Hex(), reg.Version, sentinel.ErrConflict)
	}
	if err := s.checkUnique(reg); err != nil {
		return err
	}
	reg.Version++
	s.regs[reg.ID] = clone(reg)
	return nil
}

func (s *InMemoryRegistrationStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if reg, ok := s.regs[id]; ok {
		return clone(reg), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryRegistrationStore) FindByEmailAndPackage(_ context.Context, email, packageID string) (*models.Registration, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.find(func(reg *models.Registration) bool {
		return reg.Email == email && reg.PackageID == packageID
	})
}

func (s *InMemoryRegistrationStore) FindByInstallmentID(_ context.Context, id primitive.ObjectID) (*models.Registration, error) {
	return s.find(func(reg *models.Registration) bool {
		return reg.Installment(id) != nil
	})
}

func (s *InMemoryRegistrationStore) FindByTransactionID(_ context.Context, transactionID string) (*models.Registration, error) {
	return s.find(func(reg *models.Registration) bool {
		return reg.InstallmentByTransaction(transactionID) != nil
	})
}

func (s *InMemoryRegistrationStore) ConfirmationCodeExists(_ context.Context, code string) (bool, error) {
	_, err := s.find(func(reg *models.Registration) bool { return reg.ConfirmationCode == code })
	return err == nil, nil
}

func (s *InMemoryRegistrationStore) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	_, err := s.FindByTransactionID(ctx, transactionID)
	return err == nil, nil
}

func (s *InMemoryRegistrationStore) List(_ context.Context, f RegistrationFilter, now time.Time) ([]models.Registration, RegistrationPage, error) {
	f = f.normalized()
	search := strings.ToLower(f.Search)
	from, to, ranged := DateRange(f.DateRange, now)

	s.mu.RLock()
	matched := make([]models.Registration, 0, len(s.regs))
	for _, reg := range s.regs {
		if search != "" && !containsAny(search, reg.FirstName, reg.LastName, reg.Email, reg.ConfirmationCode) {
			continue
		}
		if f.PaymentStatus != "" && reg.PaymentStatus != f.PaymentStatus {
			continue
		}
		if f.ParticipantType != "" && reg.ParticipantType != f.ParticipantType {
			continue
		}
		if ranged && (reg.CreatedAt.Before(from) || !reg.CreatedAt.Before(to)) {
			continue
		}
		matched = append(matched, *clone(reg))
	}
	s.mu.RUnlock()

	field, asc := f.sortField(), f.ascending()
	sort.SliceStable(matched, func(i, j int) bool {
		less, equal := compareField(field, &matched[i], &matched[j])
		if equal {
			less = matched[i].ID.Hex() < matched[j].ID.Hex()
		}
		if asc {
			return less
		}
		return !less
	})

	total := int64(len(matched))
	start := min(int(f.skip()), len(matched))
	end := min(start+f.Limit, len(matched))
	return matched[start:end], newPage(total, f), nil
}

func (s *InMemoryRegistrationStore) find(match func(*models.Registration) bool) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reg := range s.regs {
		if match(reg) {
			return clone(reg), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// checkUnique enforces the same unique keys as the Mongo indexes. Callers
// hold the write lock.
func (s *InMemoryRegistrationStore) checkUnique(reg *models.Registration) error {
	for id, other := range s.regs {
		if id == reg.ID {
			continue
		}
		if other.ConfirmationCode == reg.ConfirmationCode {
			return &sentinel.DuplicateKeyError{Key: sentinel.KeyConfirmationCode}
		}
		if other.Email == reg.Email && other.PackageID == reg.PackageID {
			return &sentinel.DuplicateKeyError{Key: sentinel.KeyEmailPackage}
		}
		if sharesTransactionID(other, reg) {
			return &sentinel.DuplicateKeyError{Key: sentinel.KeyTransactionID}
		}
	}
	return nil
}

func sharesTransactionID(a, b *models.Registration) bool {
	for _, x := range a.Installments {
		if x.TransactionID == "" {
			continue
		}
		for _, y := range b.Installments {
			if x.TransactionID == y.TransactionID {
				return true
			}
		}
	}
	return false
}

func clone(reg *models.Registration) *models.Registration {
	out := *reg
	out.PaymentDate = cloneTime(reg.PaymentDate)
	out.Installments = make([]models.Installment, len(reg.Installments))
	for i, inst := range reg.Installments {
		inst.PaymentDate = cloneTime(inst.PaymentDate)
		out.Installments[i] = inst
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

// compareField orders a before b on field and reports ties.
func compareField(field string, a, b *models.Registration) (less, equal bool) {
	switch field {
	case "amount":
		return a.Amount < b.Amount, a.Amount == b.Amount
	case "total_paid":
		return a.TotalPaid < b.TotalPaid, a.TotalPaid == b.TotalPaid
	case "last_name":
		return a.LastName < b.LastName, a.LastName == b.LastName
	case "first_name":
		return a.FirstName < b.FirstName, a.FirstName == b.FirstName
	case "payment_status":
		return a.PaymentStatus < b.PaymentStatus, a.PaymentStatus == b.PaymentStatus
	case "updated_at":
		return a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
	default:
		return a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
	}
}
