package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	dir := t.TempDir()
	st, err := OpenBoltStore(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// eachStore runs a subtest against both StateStore implementations.
func eachStore(t *testing.T, fn func(t *testing.T, st StateStore)) {
	t.Helper()
	t.Run("mem", func(t *testing.T) { fn(t, NewMemStore()) })
	t.Run("bolt", func(t *testing.T) { fn(t, tempBoltStore(t)) })
}

func TestStore_DefaultsAreZero(t *testing.T) {
	eachStore(t, func(t *testing.T, st StateStore) {
		balance, err := st.Balance("nobody")
		require.NoError(t, err)
		assert.Zero(t, balance)

		total, err := st.TotalShares()
		require.NoError(t, err)
		assert.Zero(t, total)

		current, err := st.CurrentRound()
		require.NoError(t, err)
		assert.Zero(t, current)

		pool, err := st.PoolAmount(1)
		require.NoError(t, err)
		assert.Zero(t, pool)

		snapshot, err := st.SharesSnapshot(1)
		require.NoError(t, err)
		assert.Zero(t, snapshot)

		active, err := st.RoundActive(1)
		require.NoError(t, err)
		assert.False(t, active)

		claimed, err := st.Claimed("nobody", 1)
		require.NoError(t, err)
		assert.False(t, claimed)

		reserve, err := st.Reserve()
		require.NoError(t, err)
		assert.Zero(t, reserve)

		paid, err := st.DividendsPaid(1)
		require.NoError(t, err)
		assert.Zero(t, paid)
	})
}

func TestStore_BalanceRoundTrip(t *testing.T) {
	eachStore(t, func(t *testing.T, st StateStore) {
		require.NoError(t, st.SetBalance("alice", 1000))
		require.NoError(t, st.SetBalance("bob", 500))

		balance, err := st.Balance("alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), balance)

		require.NoError(t, st.SetBalance("alice", 250))
		balance, err = st.Balance("alice")
		require.NoError(t, err)
		assert.Equal(t, uint64(250), balance)

		balance, err = st.Balance("bob")
		require.NoError(t, err)
		assert.Equal(t, uint64(500), balance)
	})
}

func TestStore_Counters(t *testing.T) {
	eachStore(t, func(t *testing.T, st StateStore) {
		require.NoError(t, st.SetTotalShares(1500))
		require.NoError(t, st.SetCurrentRound(3))
		require.NoError(t, st.SetReserve(15000))

		total, err := st.TotalShares()
		require.NoError(t, err)
		assert.Equal(t, uint64(1500), total)

		current, err := st.CurrentRound()
		require.NoError(t, err)
		assert.Equal(t, uint64(3), current)

		reserve, err := st.Reserve()
		require.NoError(t, err)
		assert.Equal(t, uint64(15000), reserve)
	})
}

func TestStore_PutRound(t *testing.T) {
	eachStore(t, func(t *testing.T, st StateStore) {
		require.NoError(t, st.PutRound(1, 15000, 1500, true))
		require.NoError(t, st.PutRound(2, 9000, 2000, false))

		pool, err := st.PoolAmount(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(15000), pool)

		snapshot, err := st.SharesSnapshot(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(1500), snapshot)

		active, err := st.RoundActive(1)
		require.NoError(t, err)
		assert.True(t, active)

		active, err = st.RoundActive(2)
		require.NoError(t, err)
		assert.False(t, active)
	})
}

func TestStore_Claims(t *testing.T) {
	eachStore(t, func(t *testing.T, st StateStore) {
		require.NoError(t, st.SetClaimed("alice", 1))

		claimed, err := st.Claimed("alice", 1)
		require.NoError(t, err)
		assert.True(t, claimed)

		// Same account, different round; different account, same round.
		claimed, err = st.Claimed("alice", 2)
		require.NoError(t, err)
		assert.False(t, claimed)

		claimed, err = st.Claimed("bob", 1)
		require.NoError(t, err)
		assert.False(t, claimed)
	})
}

// Claim keys are round-prefixed composites; accounts whose names share a
// prefix with another account plus the round encoding must not collide.
func TestStore_ClaimKeyNoCollision(t *testing.T) {
	eachStore(t, func(t *testing.T, st StateStore) {
		require.NoError(t, st.SetClaimed("ab", 1))

		claimed, err := st.Claimed("a", 1)
		require.NoError(t, err)
		assert.False(t, claimed)

		claimed, err = st.Claimed("abc", 1)
		require.NoError(t, err)
		assert.False(t, claimed)
	})
}

func TestStore_DividendsPaidAccumulates(t *testing.T) {
	eachStore(t, func(t *testing.T, st StateStore) {
		require.NoError(t, st.AddDividendsPaid(1, 5000))
		require.NoError(t, st.AddDividendsPaid(1, 2500))
		require.NoError(t, st.AddDividendsPaid(2, 100))

		paid, err := st.DividendsPaid(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(7500), paid)

		paid, err = st.DividendsPaid(2)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), paid)
	})
}

func TestBoltStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	st, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, st.SetBalance("alice", 1000))
	require.NoError(t, st.SetTotalShares(1000))
	require.NoError(t, st.PutRound(1, 15000, 1000, true))
	require.NoError(t, st.SetClaimed("alice", 1))
	require.NoError(t, st.SetReserve(10000))
	require.NoError(t, st.Close())

	st, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer st.Close()

	balance, err := st.Balance("alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)

	pool, err := st.PoolAmount(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(15000), pool)

	claimed, err := st.Claimed("alice", 1)
	require.NoError(t, err)
	assert.True(t, claimed)

	reserve, err := st.Reserve()
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), reserve)
}
