package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/qbsync-cli/internal/core/domain"
)

// --- Mock implementations for history testing ---
// Note: These are prefixed with "his" to avoid conflicts with other mocks
// in this package.

// hisMockRunStore implements driven.RunStore with a scriptable save failure.
type hisMockRunStore struct {
	impMockRunStore

	saveErr error
	saveCtx context.Context
}

func (s *hisMockRunStore) SaveRun(ctx context.Context, run domain.SyncRun) error {
	s.saveCtx = ctx
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.impMockRunStore.SaveRun(ctx, run)
}

func hisOutcome() *domain.BatchOutcome {
	outcome := &domain.BatchOutcome{Total: 2}
	outcome.Record(domain.RecordResult{Key: "1001", Status: domain.StatusSucceeded})
	outcome.Record(domain.RecordResult{Key: "1002", Status: domain.StatusFailed, Detail: "validation failed"})
	return outcome
}

// --- Tests ---

func TestHistoryService_Record_SavesRun(t *testing.T) {
	store := &hisMockRunStore{}
	svc := NewHistoryService(store)

	started := time.Now().Add(-5 * time.Second)
	id := svc.Record(context.Background(), domain.RunKindImport, started, time.Now(), hisOutcome())

	require.NotEmpty(t, id)
	require.Len(t, store.saved, 1)
	assert.Equal(t, id, store.saved[0].ID)
	assert.Equal(t, domain.RunKindImport, store.saved[0].Kind)
	assert.Equal(t, 1, store.saved[0].Succeeded)
	assert.Equal(t, 1, store.saved[0].Failed)
}

func TestHistoryService_Record_NilStore(t *testing.T) {
	svc := NewHistoryService(nil)

	id := svc.Record(context.Background(), domain.RunKindImport, time.Now(), time.Now(), hisOutcome())

	// Without a store, recording is a no-op
	assert.Empty(t, id)
}

func TestHistoryService_Record_StoreFailureIsSwallowed(t *testing.T) {
	store := &hisMockRunStore{saveErr: errors.New("database is locked")}
	svc := NewHistoryService(store)

	// A history failure must never surface into the batch that produced it
	id := svc.Record(context.Background(), domain.RunKindDownload, time.Now(), time.Now(), hisOutcome())

	assert.Empty(t, id)
	assert.Empty(t, store.saved)
}

func TestHistoryService_Record_SurvivesCancelledContext(t *testing.T) {
	store := &hisMockRunStore{}
	svc := NewHistoryService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id := svc.Record(ctx, domain.RunKindImport, time.Now(), time.Now(), hisOutcome())

	// An aborted run is exactly the one worth recording
	require.NotEmpty(t, id)
	require.NotNil(t, store.saveCtx)
	assert.NoError(t, store.saveCtx.Err())
}

func TestHistoryService_List(t *testing.T) {
	store := &hisMockRunStore{}
	svc := NewHistoryService(store)
	svc.Record(context.Background(), domain.RunKindImport, time.Now(), time.Now(), hisOutcome())

	runs, err := svc.List(context.Background(), 10)

	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestHistoryService_List_NilStore(t *testing.T) {
	svc := NewHistoryService(nil)

	runs, err := svc.List(context.Background(), 10)

	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestHistoryService_Show(t *testing.T) {
	store := &hisMockRunStore{}
	svc := NewHistoryService(store)
	id := svc.Record(context.Background(), domain.RunKindDownload, time.Now(), time.Now(), hisOutcome())

	run, err := svc.Show(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, id, run.ID)
	assert.Len(t, run.Results, 2)
}

func TestHistoryService_Show_NotFound(t *testing.T) {
	store := &hisMockRunStore{}
	svc := NewHistoryService(store)

	_, err := svc.Show(context.Background(), "missing-id")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryService_Show_NilStore(t *testing.T) {
	svc := NewHistoryService(nil)

	_, err := svc.Show(context.Background(), "any-id")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
