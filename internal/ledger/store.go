package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
)

const keyPrefix = "coins:"

// Store persists one integer balance per wallet key. Every write is
// synchronous so the balance survives a process restart.
type Store interface {
	Load(ctx context.Context, wallet string) (int64, bool, error)
	Save(ctx context.Context, wallet string, balance int64) error
	Close() error
}

// BadgerStore keeps balances in an embedded Badger database, the service-side
// stand-in for a browser's local storage: one value under a fixed key.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) the balance database at path. An empty path
// opens an in-memory database, used by tests.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("ledger: open store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Load(ctx context.Context, wallet string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + wallet))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ledger: load balance: %w", err)
	}
	balance, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("ledger: corrupt balance for %q: %w", wallet, err)
	}
	return balance, true, nil
}

func (s *BadgerStore) Save(ctx context.Context, wallet string, balance int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+wallet), []byte(strconv.FormatInt(balance, 10)))
	})
	if err != nil {
		return fmt.Errorf("ledger: save balance: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
