package order

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
)

func newReaperFixture() (*ReservationReaper, *MockOrderRepository, *MockLedger, *recordingAudit) {
	orderRepo := new(MockOrderRepository)
	ledger := new(MockLedger)
	audit := new(recordingAudit)
	reaper := NewReservationReaper(orderRepo, ledger, 30*time.Minute, time.Minute, 100, audit, zap.NewNop())
	return reaper, orderRepo, ledger, audit
}

func TestReapExpiredCancelsAndReleases(t *testing.T) {
	reaper, orderRepo, ledger, audit := newReaperFixture()
	o := hostedOrder(t, uuid.New())

	orderRepo.On("FindAwaitingPaymentBefore", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return([]order.Order{*o}, nil)
	orderRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)
	ledger.On("Release", mock.Anything, o.Items[0].ProductID, (*uuid.UUID)(nil), int64(2)).Return(nil)

	stats, err := reaper.ReapExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, 0, stats.Failed)
	ledger.AssertExpectations(t)
	assert.True(t, audit.has("order.expired"))

	orderRepo.AssertCalled(t, "SaveWithLock", mock.Anything, mock.MatchedBy(func(saved *order.Order) bool {
		return saved.Status == order.StatusCancelled
	}))
}

func TestReapSkipsConcurrentlySettledOrder(t *testing.T) {
	reaper, orderRepo, ledger, _ := newReaperFixture()
	o := hostedOrder(t, uuid.New())

	orderRepo.On("FindAwaitingPaymentBefore", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return([]order.Order{*o}, nil)
	orderRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*order.Order")).
		Return(shared.ErrConcurrencyConflict)

	stats, err := reaper.ReapExpired(context.Background())
	require.NoError(t, err)

	// A verify beat the reaper to the order; its stock stays reserved
	assert.Equal(t, 0, stats.Failed)
	ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReapNothingExpired(t *testing.T) {
	reaper, orderRepo, ledger, _ := newReaperFixture()

	orderRepo.On("FindAwaitingPaymentBefore", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return([]order.Order{}, nil)

	stats, err := reaper.ReapExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Found)
	ledger.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReaperRunStopsOnCancel(t *testing.T) {
	reaper, orderRepo, _, _ := newReaperFixture()
	reaper.interval = 5 * time.Millisecond

	orderRepo.On("FindAwaitingPaymentBefore", mock.Anything, mock.AnythingOfType("time.Time"), 100).
		Return([]order.Order{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after context cancellation")
	}
}
