package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/event-registration-go/models"
	"github.com/phillip/event-registration-go/sentinel"
)

const adminsCollection = "admins"

// AdminStore keeps back-office accounts.
type AdminStore struct {
	col *mongo.Collection
}

func NewAdminStore(db *mongo.Database) *AdminStore {
	return &AdminStore{col: db.Collection(adminsCollection)}
}

func (s *AdminStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create admin indexes: %w", err)
	}
	return nil
}

func (s *AdminStore) Create(ctx context.Context, admin *models.Admin) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	admin.Username = strings.ToLower(strings.TrimSpace(admin.Username))
	if _, err := s.col.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("admin %q: %w", admin.Username, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *AdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var admin models.Admin
	err := s.col.FindOne(ctx, bson.M{"username": strings.ToLower(strings.TrimSpace(username))}).Decode(&admin)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &admin, nil
}

type InMemoryAdminStore struct {
	mu     sync.RWMutex
	admins map[string]models.Admin
}

func NewInMemoryAdminStore() *InMemoryAdminStore {
	return &InMemoryAdminStore{admins: make(map[string]models.Admin)}
}

func (s *InMemoryAdminStore) Create(_ context.Context, admin *models.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if admin.ID.IsZero() {
		admin.ID = primitive.NewObjectID()
	}
	admin.Username = strings.ToLower(strings.TrimSpace(admin.Username))
	if _, ok := s.admins[admin.Username]; ok {
		return fmt.Errorf("admin %q: %w", admin.Username, sentinel.ErrConflict)
	}
	s.admins[admin.Username] = *admin
	return nil
}

func (s *InMemoryAdminStore) FindByUsername(_ context.Context, username string) (*models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &admin, nil
}
