package store

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/phillip/event-registration-go/models"
)

const notificationsCollection = "payment_notifications"

// NotificationJournal appends one document per gateway callback delivery.
type NotificationJournal struct {
	col *mongo.Collection
}

func NewNotificationJournal(db *mongo.Database) *NotificationJournal {
	return &NotificationJournal{col: db.Collection(notificationsCollection)}
}

func (j *NotificationJournal) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := j.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "transaction_id", Value: 1}, {Key: "received_at", Value: -1}}},
		{Keys: bson.D{{Key: "registration_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create notification indexes: %w", err)
	}
	return nil
}

func (j *NotificationJournal) Record(ctx context.Context, entry *models.PaymentNotification) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if _, err := j.col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert payment notification: %w", err)
	}
	return nil
}

// ListByTransaction returns deliveries for one transaction, newest first.
func (j *NotificationJournal) ListByTransaction(ctx context.Context, transactionID string) ([]models.PaymentNotification, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := j.col.Find(ctx, bson.M{"transaction_id": transactionID},
		options.Find().SetSort(bson.D{{Key: "received_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list payment notifications: %w", err)
	}
	entries := []models.PaymentNotification{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode payment notifications: %w", err)
	}
	return entries, nil
}

type InMemoryNotificationJournal struct {
	mu      sync.Mutex
	entries []models.PaymentNotification
}

func NewInMemoryNotificationJournal() *InMemoryNotificationJournal {
	return &InMemoryNotificationJournal{}
}

func (j *InMemoryNotificationJournal) Record(_ context.Context, entry *models.PaymentNotification) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, *entry)
	return nil
}

func (j *InMemoryNotificationJournal) ListByTransaction(_ context.Context, transactionID string) ([]models.PaymentNotification, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := []models.PaymentNotification{}
	for i := len(j.entries) - 1; i >= 0; i-- {
		if j.entries[i].TransactionID == transactionID {
			out = append(out, j.entries[i])
		}
	}
	return out, nil
}
