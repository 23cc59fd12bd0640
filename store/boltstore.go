package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

var (
	bucketBalances  = []byte("balances")
	bucketPools     = []byte("pools")
	bucketSnapshots = []byte("snapshots")
	bucketActive    = []byte("active")
	bucketClaims    = []byte("claims")
	bucketPaid      = []byte("paid")
	bucketMeta      = []byte("meta")
)

var (
	keyTotalShares  = []byte("total_shares")
	keyCurrentRound = []byte("current_round")
	keyReserve      = []byte("reserve")
)

// BoltStore is a bbolt-backed implementation of StateStore.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ StateStore = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		buckets := [][]byte{
			bucketBalances, bucketPools, bucketSnapshots,
			bucketActive, bucketClaims, bucketPaid, bucketMeta,
		}
		for _, name := range buckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// roundKey encodes a round number as an 8-byte big-endian key for sorted
// storage.
func roundKey(round uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, round)
	return k
}

// claimKeyBytes builds the composite (round, account) key used in the
// claims bucket. The fixed-width round prefix keeps one round's claims
// contiguous and makes the split point unambiguous for any account string.
func claimKeyBytes(account string, round uint64) []byte {
	k := make([]byte, 8+len(account))
	binary.BigEndian.PutUint64(k, round)
	copy(k[8:], account)
	return k
}

// encodeUint64 serializes a counter value as 8 big-endian bytes.
func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// decodeUint64 reads a stored counter value, treating absent as zero.
func decodeUint64(data []byte) uint64 {
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// getUint64 reads one uint64 value from a bucket, 0 if absent.
func (s *BoltStore) getUint64(bucket, key []byte) (uint64, error) {
	var v uint64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v = decodeUint64(tx.Bucket(bucket).Get(key))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("store: get %s: %w", bucket, err)
	}
	return v, nil
}

// putUint64 writes one uint64 value into a bucket.
func (s *BoltStore) putUint64(bucket, key []byte, v uint64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucket).Put(key, encodeUint64(v))
	})
	if err != nil {
		return fmt.Errorf("store: put %s: %w", bucket, err)
	}
	return nil
}

// Balance returns the share balance for an account, 0 if absent.
func (s *BoltStore) Balance(account string) (uint64, error) {
	return s.getUint64(bucketBalances, []byte(account))
}

// SetBalance stores the share balance for an account.
func (s *BoltStore) SetBalance(account string, shares uint64) error {
	return s.putUint64(bucketBalances, []byte(account), shares)
}

// TotalShares returns the global total of issued shares.
func (s *BoltStore) TotalShares() (uint64, error) {
	return s.getUint64(bucketMeta, keyTotalShares)
}

// SetTotalShares stores the global total of issued shares.
func (s *BoltStore) SetTotalShares(total uint64) error {
	return s.putUint64(bucketMeta, keyTotalShares, total)
}

// CurrentRound returns the highest round number created, 0 if none.
func (s *BoltStore) CurrentRound() (uint64, error) {
	return s.getUint64(bucketMeta, keyCurrentRound)
}

// SetCurrentRound stores the current-round pointer.
func (s *BoltStore) SetCurrentRound(round uint64) error {
	return s.putUint64(bucketMeta, keyCurrentRound, round)
}

// PoolAmount returns the pool allocated to a round, 0 if absent.
func (s *BoltStore) PoolAmount(round uint64) (uint64, error) {
	return s.getUint64(bucketPools, roundKey(round))
}

// SharesSnapshot returns the snapshot captured at round creation.
func (s *BoltStore) SharesSnapshot(round uint64) (uint64, error) {
	return s.getUint64(bucketSnapshots, roundKey(round))
}

// RoundActive reports whether a round exists and is active.
func (s *BoltStore) RoundActive(round uint64) (bool, error) {
	var active bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketActive).Get(roundKey(round))
		active = len(data) == 1 && data[0] == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store: get active flag: %w", err)
	}
	return active, nil
}

// PutRound stores a round's pool, snapshot and active flag in one
// transaction.
func (s *BoltStore) PutRound(round, pool, snapshot uint64, active bool) error {
	key := roundKey(round)
	flag := byte(0)
	if active {
		flag = 1
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketPools).Put(key, encodeUint64(pool)); err != nil {
			return fmt.Errorf("put pool: %w", err)
		}
		if err := tx.Bucket(bucketSnapshots).Put(key, encodeUint64(snapshot)); err != nil {
			return fmt.Errorf("put snapshot: %w", err)
		}
		if err := tx.Bucket(bucketActive).Put(key, []byte{flag}); err != nil {
			return fmt.Errorf("put active flag: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: put round %d: %w", round, err)
	}
	return nil
}

// Claimed reports whether an account has claimed a round.
func (s *BoltStore) Claimed(account string, round uint64) (bool, error) {
	var claimed bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		claimed = tx.Bucket(bucketClaims).Get(claimKeyBytes(account, round)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store: get claim flag: %w", err)
	}
	return claimed, nil
}

// SetClaimed marks an account's claim for a round. Presence of the key is
// the flag; the single-byte value keeps Get from conflating an empty value
// with an absent key.
func (s *BoltStore) SetClaimed(account string, round uint64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketClaims).Put(claimKeyBytes(account, round), []byte{1})
	})
	if err != nil {
		return fmt.Errorf("store: put claim flag: %w", err)
	}
	return nil
}

// Reserve returns the aggregate owed-and-unpaid counter.
func (s *BoltStore) Reserve() (uint64, error) {
	return s.getUint64(bucketMeta, keyReserve)
}

// SetReserve stores the reserve counter.
func (s *BoltStore) SetReserve(amount uint64) error {
	return s.putUint64(bucketMeta, keyReserve, amount)
}

// DividendsPaid returns the total amount paid out for a round.
func (s *BoltStore) DividendsPaid(round uint64) (uint64, error) {
	return s.getUint64(bucketPaid, roundKey(round))
}

// AddDividendsPaid adds an amount to a round's paid counter.
func (s *BoltStore) AddDividendsPaid(round, amount uint64) error {
	key := roundKey(round)
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPaid)
		total := decodeUint64(b.Get(key)) + amount
		return b.Put(key, encodeUint64(total))
	})
	if err != nil {
		return fmt.Errorf("store: add dividends paid: %w", err)
	}
	return nil
}
