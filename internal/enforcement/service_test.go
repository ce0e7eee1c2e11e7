package enforcement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/audit"
	"github.com/scamshield-ai/scamshield/internal/risk"
	"github.com/scamshield-ai/scamshield/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetRiskState(ctx context.Context, userID uuid.UUID) (*users.RiskState, error) {
	args := m.Called(ctx, userID)
	state, _ := args.Get(0).(*users.RiskState)
	return state, args.Error(1)
}

func (m *mockUserStore) SetRiskState(ctx context.Context, userID uuid.UUID, frozen, throttled bool) error {
	args := m.Called(ctx, userID, frozen, throttled)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type mockLock struct {
	mock.Mock
}

func (m *mockLock) Acquire(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestLockProvider(lock *mockLock) LockProvider {
	return func(key string) Locker { return lock }
}

func grantedLock() *mockLock {
	lock := new(mockLock)
	lock.On("Acquire", mock.Anything).Return(nil)
	lock.On("Release", mock.Anything).Return(nil)
	return lock
}

func TestApplyHighThrottlesNeverFreezes(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	store.On("GetRiskState", ctx, userID).Return(&users.RiskState{UserID: userID}, nil).Once()
	store.On("SetRiskState", ctx, userID, false, true).Return(nil).Once()

	recorder := new(mockRecorder)
	recorder.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionAccountThrottled
	})).Return(nil).Once()

	service := NewService(store, recorder, newTestLockProvider(grantedLock()), false)
	result, err := service.Apply(ctx, userID, risk.LevelHigh, risk.LevelLow, 65, 0)

	require.NoError(t, err)
	assert.Equal(t, OutcomeThrottled, result.Outcome)
	assert.True(t, result.StateChanged)
	assert.Equal(t, []string{audit.ActionAccountThrottled}, result.ActionsTaken)
	store.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestApplyCriticalFreezesAndAuditsBothScores(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	store.On("GetRiskState", ctx, userID).Return(&users.RiskState{UserID: userID}, nil).Once()
	store.On("SetRiskState", ctx, userID, true, false).Return(nil).Once()

	recorder := new(mockRecorder)
	recorder.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionAccountFrozen &&
			entry.Metadata["unified_score"] == 82.0 &&
			entry.Metadata["anomaly_score"] == 100.0 &&
			entry.IsSuspicious
	})).Return(nil).Once()

	service := NewService(store, recorder, newTestLockProvider(grantedLock()), false)
	result, err := service.Apply(ctx, userID, risk.LevelCritical, risk.LevelCritical, 82, 100)

	require.NoError(t, err)
	assert.Equal(t, OutcomeFrozen, result.Outcome)
	store.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestApplyReappliedTierStillAuditsByDefault(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	store.On("GetRiskState", ctx, userID).Return(&users.RiskState{UserID: userID, IsFrozen: true}, nil).Once()

	recorder := new(mockRecorder)
	recorder.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionAccountFrozen
	})).Return(nil).Once()

	service := NewService(store, recorder, newTestLockProvider(grantedLock()), false)
	result, err := service.Apply(ctx, userID, risk.LevelCritical, risk.LevelLow, 85, 0)

	require.NoError(t, err)
	assert.False(t, result.StateChanged)
	store.AssertNotCalled(t, "SetRiskState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	recorder.AssertExpectations(t)
}

func TestApplyReappliedTierSkipsAuditWhenDeduped(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	store.On("GetRiskState", ctx, userID).Return(&users.RiskState{UserID: userID, IsFrozen: true}, nil).Once()

	recorder := new(mockRecorder)

	service := NewService(store, recorder, newTestLockProvider(grantedLock()), true)
	result, err := service.Apply(ctx, userID, risk.LevelCritical, risk.LevelLow, 85, 0)

	require.NoError(t, err)
	assert.False(t, result.StateChanged)
	assert.Empty(t, result.ActionsTaken)
	recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestApplyThrottleDoesNotLiftFreeze(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	store.On("GetRiskState", ctx, userID).Return(&users.RiskState{UserID: userID, IsFrozen: true}, nil).Once()
	store.On("SetRiskState", ctx, userID, true, true).Return(nil).Once()

	recorder := new(mockRecorder)
	recorder.On("Record", ctx, mock.Anything).Return(nil).Once()

	service := NewService(store, recorder, newTestLockProvider(grantedLock()), false)
	result, err := service.Apply(ctx, userID, risk.LevelHigh, risk.LevelLow, 70, 0)

	require.NoError(t, err)
	assert.True(t, result.StateChanged)
	store.AssertExpectations(t)
}

func TestApplyMediumFlagsWithoutTouchingState(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	recorder := new(mockRecorder)
	recorder.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionUserFlagged
	})).Return(nil).Once()

	service := NewService(store, recorder, newTestLockProvider(grantedLock()), false)
	result, err := service.Apply(ctx, userID, risk.LevelMedium, risk.LevelLow, 45, 0)

	require.NoError(t, err)
	assert.Equal(t, OutcomeFlagged, result.Outcome)
	assert.False(t, result.StateChanged)
	store.AssertNotCalled(t, "GetRiskState", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetRiskState", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	recorder.AssertExpectations(t)
}

func TestApplyLowDoesNothing(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	recorder := new(mockRecorder)
	lock := new(mockLock)

	service := NewService(store, recorder, newTestLockProvider(lock), false)
	result, err := service.Apply(ctx, userID, risk.LevelLow, risk.LevelLow, 10, 0)

	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, result.Outcome)
	assert.Empty(t, result.ActionsTaken)
	lock.AssertNotCalled(t, "Acquire", mock.Anything)
	recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestApplySerializesUnderLock(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	store := new(mockUserStore)
	store.On("GetRiskState", ctx, userID).Return(&users.RiskState{UserID: userID}, nil).Once()
	store.On("SetRiskState", ctx, userID, true, false).Return(nil).Once()

	recorder := new(mockRecorder)
	recorder.On("Record", ctx, mock.Anything).Return(nil).Once()

	lock := grantedLock()
	service := NewService(store, recorder, newTestLockProvider(lock), false)
	_, err := service.Apply(ctx, userID, risk.LevelCritical, risk.LevelLow, 90, 0)

	require.NoError(t, err)
	lock.AssertCalled(t, "Acquire", mock.Anything)
	lock.AssertCalled(t, "Release", mock.Anything)
}

func TestResetClearsStateAndAuditsAdmin(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	userID := uuid.New()

	store := new(mockUserStore)
	store.On("SetRiskState", ctx, userID, false, false).Return(nil).Once()

	recorder := new(mockRecorder)
	recorder.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionAccountReset &&
			entry.ActorID != nil && *entry.ActorID == adminID &&
			entry.EntityID == userID
	})).Return(nil).Once()

	service := NewService(store, recorder, newTestLockProvider(grantedLock()), false)
	err := service.Reset(ctx, adminID, userID)

	require.NoError(t, err)
	store.AssertExpectations(t)
	recorder.AssertExpectations(t)
}
