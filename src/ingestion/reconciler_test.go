// src/ingestion/reconciler_test.go
package ingestion

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/centavo/backend/src/models"
)

// fakeStore is an in-memory TransactionStore. injectRace causes the next
// insert to fail with a duplicate-key error while still recording the row,
// simulating a concurrent writer that won the insert.
type fakeStore struct {
	byUserAndHash map[string]*models.Transaction
	nextID        int64

	listErr    error
	insertErr  error
	injectRace bool
	findErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byUserAndHash: make(map[string]*models.Transaction)}
}

func (s *fakeStore) key(userID int64, hash string) string {
	return fmt.Sprintf("%d/%s", userID, hash)
}

func (s *fakeStore) ListTransactionFingerprints(userID int64) (map[string]struct{}, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make(map[string]struct{})
	for _, tx := range s.byUserAndHash {
		if tx.UserID == userID {
			out[tx.TransactionHash] = struct{}{}
		}
	}
	return out, nil
}

func (s *fakeStore) InsertTransaction(tx *models.Transaction) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	k := s.key(tx.UserID, tx.TransactionHash)
	if _, exists := s.byUserAndHash[k]; exists {
		return fmt.Errorf("%w (userID %d, hash %s)", models.ErrDuplicateTransaction, tx.UserID, tx.TransactionHash)
	}
	if s.injectRace {
		s.injectRace = false
		concurrent := *tx
		s.nextID++
		concurrent.ID = s.nextID
		s.byUserAndHash[k] = &concurrent
		return fmt.Errorf("%w (userID %d, hash %s)", models.ErrDuplicateTransaction, tx.UserID, tx.TransactionHash)
	}
	s.nextID++
	tx.ID = s.nextID
	s.byUserAndHash[k] = tx
	return nil
}

func (s *fakeStore) FindTransactionByUserAndHash(userID int64, hash string) (*models.Transaction, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	tx, ok := s.byUserAndHash[s.key(userID, hash)]
	if !ok {
		return nil, nil
	}
	return tx, nil
}

func draftFor(detail string, amount float64) *models.TransactionDraft {
	return &models.TransactionDraft{
		Type:    "POS",
		Details: strptr(detail),
		Amount:  amount,
		Date:    time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestReconcilePersistsNewDrafts(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store)

	result, err := r.Reconcile([]*models.TransactionDraft{
		draftFor("coffee", -4.50),
		draftFor("rent", -600),
	}, 1)
	require.NoError(t, err)

	assert.Len(t, result.Persisted, 2)
	assert.Equal(t, 0, result.Duplicates)
	assert.Empty(t, result.Errors)
	for _, tx := range result.Persisted {
		assert.NotZero(t, tx.ID)
		assert.Equal(t, int64(1), tx.UserID)
		assert.Len(t, tx.TransactionHash, 64)
	}
}

func TestReconcileSkipsDuplicatesWithinBatch(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store)

	same := draftFor("coffee", -4.50)
	result, err := r.Reconcile([]*models.TransactionDraft{same, draftFor("coffee", -4.50), draftFor("rent", -600)}, 1)
	require.NoError(t, err)

	assert.Len(t, result.Persisted, 2)
	assert.Equal(t, 1, result.Duplicates)
	assert.Empty(t, result.Errors)
}

func TestReconcileSkipsPreExistingDuplicates(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store)

	first, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50)}, 1)
	require.NoError(t, err)
	require.Len(t, first.Persisted, 1)

	second, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50), draftFor("rent", -600)}, 1)
	require.NoError(t, err)

	assert.Len(t, second.Persisted, 1)
	assert.Equal(t, 1, second.Duplicates)
}

func TestReconcileHashIsUserIndependent(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store)

	forUser1, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50)}, 1)
	require.NoError(t, err)
	forUser2, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50)}, 2)
	require.NoError(t, err)

	// Same content hashes identically for both users, and both inserts land.
	require.Len(t, forUser1.Persisted, 1)
	require.Len(t, forUser2.Persisted, 1)
	assert.Equal(t, forUser1.Persisted[0].TransactionHash, forUser2.Persisted[0].TransactionHash)
}

func TestReconcileConvergesOnInsertRace(t *testing.T) {
	store := newFakeStore()
	store.injectRace = true
	r := NewReconciler(store)

	result, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50)}, 1)
	require.NoError(t, err)

	// The row exists (inserted by the "concurrent" writer) so the outcome is
	// counted as persisted, not an error.
	require.Len(t, result.Persisted, 1)
	assert.NotZero(t, result.Persisted[0].ID)
	assert.Equal(t, 0, result.Duplicates)
	assert.Empty(t, result.Errors)
}

func TestReconcileRaceFetchFailureIsReported(t *testing.T) {
	store := newFakeStore()
	store.injectRace = true
	store.findErr = errors.New("connection lost")
	r := NewReconciler(store)

	result, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50), draftFor("rent", -600)}, 1)
	require.NoError(t, err)

	// The raced draft becomes a per-draft error; the rest of the batch still runs.
	assert.Len(t, result.Persisted, 1)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "could not be fetched")
	require.NotNil(t, result.Errors[0].Transaction)
}

func TestReconcileInsertErrorDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore()
	r := NewReconciler(store)

	store.insertErr = errors.New("disk full")
	failed, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50), draftFor("rent", -600)}, 1)
	require.NoError(t, err)
	assert.Empty(t, failed.Persisted)
	require.Len(t, failed.Errors, 2)
	assert.Contains(t, failed.Errors[0].Message, "disk full")

	store.insertErr = nil
	retried, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50)}, 1)
	require.NoError(t, err)
	assert.Len(t, retried.Persisted, 1, "failed drafts are not remembered as seen")
}

func TestReconcileFingerprintLoadFailureAborts(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("table missing")
	r := NewReconciler(store)

	result, err := r.Reconcile([]*models.TransactionDraft{draftFor("coffee", -4.50)}, 1)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading existing transaction fingerprints")
}
