package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/sentinel"
)

const (
	registrationsCollection = "registrations"

	confirmationCodeIndex = "confirmation_code_unique"
	emailPackageIndex     = "email_package_unique"
	transactionIDIndex    = "installment_transaction_id_unique"

	queryTimeout = 5 * time.Second
)

// RegistrationStore keeps registrations in MongoDB, one document per
// registration with its installments embedded.
type RegistrationStore struct {
	col *mongo.Collection
}

func NewRegistrationStore(db *mongo.Database) *RegistrationStore {
	return &RegistrationStore{col: db.Collection(registrationsCollection)}
}

// EnsureIndexes creates the unique keys and the installment lookup indexes.
func (s *RegistrationStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "confirmation_code", Value: 1}},
			Options: options.Index().SetName(confirmationCodeIndex).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "package_id", Value: 1}},
			Options: options.Index().SetName(emailPackageIndex).SetUnique(true),
		},
		{Keys: bson.D{{Key: "installments._id", Value: 1}}},
		{
			// Registrations without a plan carry no transaction ids and must
			// not collide on a missing value.
			Keys: bson.D{{Key: "installments.transaction_id", Value: 1}},
			Options: options.Index().
				SetName(transactionIDIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"installments.transaction_id": bson.M{"$type": "string"}}),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create registration indexes: %w", err)
	}
	return nil
}

func (s *RegistrationStore) Insert(ctx context.Context, reg *models.Registration) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if reg.ID.IsZero() {
		reg.ID = primitive.NewObjectID()
	}
	if _, err := s.col.InsertOne(ctx, reg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKey(err)
		}
		return mongoError("insert registration", err)
	}
	return nil
}

// Replace writes reg only if the stored version still equals reg.Version.
func (s *RegistrationStore) Replace(ctx context.Context, reg *models.Registration) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	expected := reg.Version
	next := *reg
	next.Version = expected + 1

	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": reg.ID, "version": expected}, &next)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateKey(err)
		}
		return mongoError("replace registration", err)
	}
	if res.MatchedCount == 0 {
		n, err := s.col.CountDocuments(ctx, bson.M{"_id": reg.ID}, options.Count().SetLimit(1))
		if err != nil {
			return mongoError("replace registration", err)
		}
		if n == 0 {
			return fmt.Errorf("replace registration %s: %w", reg.ID.Hex(), sentinel.ErrNotFound)
		}
		return fmt.Errorf("replace registration %s at version %d: %w", reg.ID.Hex(), expected, sentinel.ErrConflict)
	}
	reg.Version = next.Version
	return nil
}

func (s *RegistrationStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *RegistrationStore) FindByEmailAndPackage(ctx context.Context, email, packageID string) (*models.Registration, error) {
	return s.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email)), "package_id": packageID})
}

func (s *RegistrationStore) FindByInstallmentID(ctx context.Context, id primitive.ObjectID) (*models.Registration, error) {
	return s.findOne(ctx, bson.M{"installments._id": id})
}

func (s *RegistrationStore) FindByTransactionID(ctx context.Context, transactionID string) (*models.Registration, error) {
	if transactionID == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"installments.transaction_id": transactionID})
}

func (s *RegistrationStore) ConfirmationCodeExists(ctx context.Context, code string) (bool, error) {
	return s.exists(ctx, bson.M{"confirmation_code": code})
}

func (s *RegistrationStore) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	return s.exists(ctx, bson.M{"installments.transaction_id": transactionID})
}

// List returns one page of registrations matching f, newest first by default.
func (s *RegistrationStore) List(ctx context.Context, f RegistrationFilter, now time.Time) ([]models.Registration, RegistrationPage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	f = f.normalized()
	filter := bson.M{}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
			bson.M{"email": pattern},
			bson.M{"confirmation_code": pattern},
		}
	}
	if f.PaymentStatus != "" {
		filter["payment_status"] = f.PaymentStatus
	}
	if f.ParticipantType != "" {
		filter["participant_type"] = f.ParticipantType
	}
	if from, to, ok := DateRange(f.DateRange, now); ok {
		filter["created_at"] = bson.M{"$gte": from, "$lt": to}
	}

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, RegistrationPage{}, fmt.Errorf("count registrations: %w", err)
	}

	direction := -1
	if f.ascending() {
		direction = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: f.sortField(), Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(f.skip()).
		SetLimit(int64(f.Limit))

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, RegistrationPage{}, fmt.Errorf("list registrations: %w", err)
	}
	regs := []models.Registration{}
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, RegistrationPage{}, fmt.Errorf("decode registrations: %w", err)
	}
	return regs, newPage(total, f), nil
}

func (s *RegistrationStore) findOne(ctx context.Context, filter bson.M) (*models.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var reg models.Registration
	if err := s.col.FindOne(ctx, filter).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, mongoError("find registration", err)
	}
	return &reg, nil
}

func (s *RegistrationStore) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := s.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, mongoError("count registrations", err)
	}
	return n > 0, nil
}

// duplicateKey names the unique index a write collided with.
func duplicateKey(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, confirmationCodeIndex):
		return &sentinel.DuplicateKeyError{Key: sentinel.KeyConfirmationCode}
	case strings.Contains(msg, emailPackageIndex):
		return &sentinel.DuplicateKeyError{Key: sentinel.KeyEmailPackage}
	case strings.Contains(msg, transactionIDIndex):
		return &sentinel.DuplicateKeyError{Key: sentinel.KeyTransactionID}
	default:
		return fmt.Errorf("duplicate key: %w", sentinel.ErrConflict)
	}
}

// mongoError marks timeouts and network failures as sentinel.ErrUnavailable.
func mongoError(op string, err error) error {
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w: %w", op, sentinel.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
