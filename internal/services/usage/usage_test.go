package usage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tapfolio/entitlement-service/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) IncrementContactCount(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *MockRepository) DecrementContactCount(ctx context.Context, userUID string) error {
	args := m.Called(ctx, userUID)
	return args.Error(0)
}

func (m *MockRepository) IncrementExportCount(ctx context.Context, userUID, monthKey string) error {
	args := m.Called(ctx, userUID, monthKey)
	return args.Error(0)
}

func (m *MockRepository) GetUsageStats(ctx context.Context, userUID, monthKey string) (models.UsageStats, error) {
	args := m.Called(ctx, userUID, monthKey)
	return args.Get(0).(models.UsageStats), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newServiceAt(repo Repository, instant time.Time) *Service {
	svc := NewService(repo, newNoopLogger())
	svc.now = func() time.Time { return instant }
	return svc
}

func TestService_IncrementExportCount_UsesCurrentMonthKey(t *testing.T) {
	repo := new(MockRepository)
	repo.On("IncrementExportCount", mock.Anything, "u1", "2025-01").Return(nil).Once()

	svc := newServiceAt(repo, time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC))

	require.NoError(t, svc.IncrementExportCount(context.Background(), "u1"))
	repo.AssertExpectations(t)
}

func TestService_IncrementExportCount_NewMonthNewKey(t *testing.T) {
	repo := new(MockRepository)
	repo.On("IncrementExportCount", mock.Anything, "u1", "2025-01").Return(nil).Once()
	repo.On("IncrementExportCount", mock.Anything, "u1", "2025-02").Return(nil).Once()

	svc := newServiceAt(repo, time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC))
	require.NoError(t, svc.IncrementExportCount(context.Background(), "u1"))

	// The month turns over; the next export lands on a fresh counter.
	svc.now = func() time.Time { return time.Date(2025, 2, 1, 0, 1, 0, 0, time.UTC) }
	require.NoError(t, svc.IncrementExportCount(context.Background(), "u1"))

	repo.AssertExpectations(t)
}

func TestService_GetUsageStats_OK(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUsageStats", mock.Anything, "u1", "2025-01").
		Return(models.UsageStats{ContactsCount: 7, ExportsCount: 2, MonthKey: "2025-01"}, nil).Once()

	svc := newServiceAt(repo, time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC))

	stats, err := svc.GetUsageStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, stats.ContactsCount)
	assert.Equal(t, 2, stats.ExportsCount)
}

func TestService_GetUsageStats_ErrorDegradesToZero(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetUsageStats", mock.Anything, "u1", "2025-01").
		Return(models.UsageStats{}, errors.New("db down")).Once()

	svc := newServiceAt(repo, time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC))

	stats, err := svc.GetUsageStats(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.UsageStats{MonthKey: "2025-01"}, stats)
}

func TestService_ContactCounters_Delegate(t *testing.T) {
	repo := new(MockRepository)
	repo.On("IncrementContactCount", mock.Anything, "u1").Return(nil).Once()
	repo.On("DecrementContactCount", mock.Anything, "u1").Return(nil).Once()

	svc := NewService(repo, newNoopLogger())

	require.NoError(t, svc.IncrementContactCount(context.Background(), "u1"))
	require.NoError(t, svc.DecrementContactCount(context.Background(), "u1"))
	repo.AssertExpectations(t)
}
