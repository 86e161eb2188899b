//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/phillip/event-registration-go/cache"
	"github.com/phillip/event-registration-go/payments"
)

type ProgressCacheSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	cache     *cache.ProgressCache
}

func TestProgressCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProgressCacheSuite))
}

func (s *ProgressCacheSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	client, err := cache.Connect(ctx, url)
	s.Require().NoError(err)
	s.cache = cache.NewProgressCache(client, time.Minute, nil)
}

func (s *ProgressCacheSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *ProgressCacheSuite) TestRoundTripAndInvalidate() {
	ctx := context.Background()
	progress := &payments.PaymentProgress{
		RegistrationID:   "r1",
		ConfirmationCode: "SIFIA-2025-ABC123",
		Amount:           2500000,
		TotalPaid:        999999,
		PercentagePaid:   39.99996,
		PaymentStatus:    "pending",
		Version:          2,
	}

	_, ok := s.cache.Get(ctx, payments.RegistrationKey("r1"))
	s.False(ok)

	s.cache.Set(ctx, payments.RegistrationKey("r1"), progress)
	s.cache.Set(ctx, payments.TransactionKey("tx-1"), progress)

	got, ok := s.cache.Get(ctx, payments.RegistrationKey("r1"))
	s.Require().True(ok)
	s.Equal(progress.ConfirmationCode, got.ConfirmationCode)
	s.Equal(progress.TotalPaid, got.TotalPaid)

	s.cache.Invalidate(ctx, 3, payments.RegistrationKey("r1"), payments.TransactionKey("tx-1"))
	_, ok = s.cache.Get(ctx, payments.RegistrationKey("r1"))
	s.False(ok)
	_, ok = s.cache.Get(ctx, payments.TransactionKey("tx-1"))
	s.False(ok)
}

func (s *ProgressCacheSuite) TestSnapshotOlderThanInvalidationIsRefused() {
	ctx := context.Background()
	key := payments.RegistrationKey("r2")
	pending := &payments.PaymentProgress{RegistrationID: "r2", PaymentStatus: "pending", Version: 4}
	completed := &payments.PaymentProgress{RegistrationID: "r2", PaymentStatus: "completed", IsFullyPaid: true, Version: 5}

	// a reader loaded version 4, then the write committing version 5 invalidated
	s.cache.Invalidate(ctx, 5, key)
	s.cache.Set(ctx, key, pending)
	_, ok := s.cache.Get(ctx, key)
	s.False(ok)

	s.cache.Set(ctx, key, completed)
	got, ok := s.cache.Get(ctx, key)
	s.Require().True(ok)
	s.Equal("completed", got.PaymentStatus)

	s.cache.Set(ctx, key, pending)
	got, ok = s.cache.Get(ctx, key)
	s.Require().True(ok)
	s.Equal("completed", got.PaymentStatus)
}
