package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/phillip/event-registration-go/payments"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if f.err == nil {
			f.records = append(f.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestPublish(t *testing.T) {
	p := &fakeProducer{}
	pub := NewKafkaPublisher(p, "", nil)

	event := payments.Event{
		Type:             payments.EventRegistrationPaid,
		RegistrationID:   "reg-1",
		ConfirmationCode: "SIFIA-2025-ABC123",
		Amount:           2500000,
		TotalPaid:        2500000,
		Currency:         "FCFA",
		OccurredAt:       time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, pub.Publish(context.Background(), event))

	require.Len(t, p.records, 1)
	rec := p.records[0]
	assert.Equal(t, DefaultTopic, rec.Topic)
	assert.Equal(t, "reg-1", string(rec.Key))
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, payments.EventRegistrationPaid, string(rec.Headers[0].Value))

	var decoded payments.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestPublishError(t *testing.T) {
	boom := errors.New("broker unreachable")
	pub := NewKafkaPublisher(&fakeProducer{err: boom}, "payments", nil)

	err := pub.Publish(context.Background(), payments.Event{Type: payments.EventInstallmentFailed})
	assert.ErrorIs(t, err, boom)
}
