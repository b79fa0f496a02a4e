package persistence

import (
	"encoding/json"
	"errors"

	"crypto-trading-bot-go/internal/models"

	"github.com/dgraph-io/badger/v3"
)

// badgerRepository is the BadgerDB implementation of StateRepository.
// Badger writes are transactional, so a crash mid-save cannot leave a torn
// snapshot behind.
type badgerRepository struct {
	db       *badger.DB
	stateKey []byte
}

// NewBadgerRepository opens (or creates) the state database at dbPath.
func NewBadgerRepository(dbPath string) (StateRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	// Badger's own logging would drown ours; DB errors still surface
	// through the operation results.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &badgerRepository{
		db:       db,
		stateKey: []byte("bot_state"),
	}, nil
}

// newInMemoryRepository is used by tests: same code paths, no disk.
func newInMemoryRepository() (StateRepository, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerRepository{db: db, stateKey: []byte("bot_state")}, nil
}

// SaveState marshals the state to JSON and writes it in one transaction.
func (r *badgerRepository) SaveState(state *models.BotState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.stateKey, data)
	})
}

// LoadState reads the snapshot back. A missing key means a fresh start and
// returns (nil, nil); an unreadable value returns an error so the caller can
// fall back to defaults.
func (r *badgerRepository) LoadState() (*models.BotState, error) {
	var state models.BotState

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(r.stateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 0 {
				return errors.New("state value is empty in database")
			}
			return json.Unmarshal(val, &state)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Close gracefully closes the database.
func (r *badgerRepository) Close() error {
	return r.db.Close()
}
