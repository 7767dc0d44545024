package players

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/teenpatti-player/deck"
	"github.com/wfunc/teenpatti-player/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(deck.NewSource(1), quartz.NewMock(t))
}

func TestStore_RegisterAndGet(t *testing.T) {
	store := newTestStore(t)

	rec := store.Register("alice", 100)
	assert.Equal(t, "alice", rec.ID)
	assert.Equal(t, int64(100), rec.Balance)
	assert.Len(t, rec.Hand, deck.HandSize)
	assert.Zero(t, rec.CurrentBet)
	assert.True(t, rec.IsActive)

	got, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestStore_GetUnknown(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get("nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = store.Update("nobody", func(*models.PlayerRecord) error { return nil })
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := newTestStore(t)
	store.Register("alice", 100)

	rec, err := store.Get("alice")
	require.NoError(t, err)
	original := rec.Hand[0]
	rec.Hand[0] = "XX"
	rec.Balance = 0

	again, err := store.Get("alice")
	require.NoError(t, err)
	assert.Equal(t, original, again.Hand[0])
	assert.Equal(t, int64(100), again.Balance)
}

func TestStore_ReRegisterOverwrites(t *testing.T) {
	store := newTestStore(t)
	store.Register("bob", 100)

	_, err := store.Update("bob", func(rec *models.PlayerRecord) error {
		rec.Balance -= 30
		rec.CurrentBet += 30
		rec.IsActive = false
		return nil
	})
	require.NoError(t, err)

	store.Register("bob", 100)
	rec, err := store.Get("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(100), rec.Balance)
	assert.Zero(t, rec.CurrentBet)
	assert.True(t, rec.IsActive)
	assert.Len(t, rec.Hand, deck.HandSize)
	assert.Equal(t, 1, store.Len())
}

func TestStore_UpdateRejectedLeavesRecordUnchanged(t *testing.T) {
	store := newTestStore(t)
	before := store.Register("carol", 100)
	errBoom := errors.New("boom")

	_, err := store.Update("carol", func(rec *models.PlayerRecord) error {
		rec.Balance = 1
		rec.IsActive = false
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	_, err = store.Update("carol", func(rec *models.PlayerRecord) error {
		rec.Balance -= 101
		return nil
	})
	assert.ErrorIs(t, err, ErrNegativeBalance)

	after, err := store.Get("carol")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_UpdateCannotChangeID(t *testing.T) {
	store := newTestStore(t)
	store.Register("dave", 10)

	rec, err := store.Update("dave", func(rec *models.PlayerRecord) error {
		rec.ID = "mallory"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "dave", rec.ID)
}

func TestStore_ResetAllIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		store.Register(id, 100)
		_, err := store.Update(id, func(rec *models.PlayerRecord) error {
			rec.Balance -= 40
			rec.CurrentBet += 40
			rec.IsActive = false
			return nil
		})
		require.NoError(t, err)
	}

	check := func() {
		for _, rec := range store.Snapshot() {
			assert.Equal(t, int64(100), rec.Balance)
			assert.Zero(t, rec.CurrentBet)
			assert.True(t, rec.IsActive)
			assert.Len(t, rec.Hand, deck.HandSize)
		}
	}

	store.ResetAll(100)
	check()
	store.ResetAll(100)
	check()
	assert.Equal(t, 3, store.Len())
}

func TestStore_SnapshotSorted(t *testing.T) {
	store := newTestStore(t)
	store.Register("zed", 1)
	store.Register("amy", 1)
	store.Register("kim", 1)

	snap := store.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "amy", snap[0].ID)
	assert.Equal(t, "kim", snap[1].ID)
	assert.Equal(t, "zed", snap[2].ID)
}

func TestStore_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	store := newTestStore(t)
	store.Register("eve", 100)

	var wg sync.WaitGroup
	var succeeded atomic.Int64
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update("eve", func(rec *models.PlayerRecord) error {
				if rec.Balance < 10 {
					return errors.New("insufficient")
				}
				rec.Balance -= 10
				rec.CurrentBet += 10
				return nil
			})
			if err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	rec, err := store.Get("eve")
	require.NoError(t, err)
	assert.Equal(t, int64(10), succeeded.Load())
	assert.Zero(t, rec.Balance)
	assert.Equal(t, int64(100), rec.CurrentBet)
}
