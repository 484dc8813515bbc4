package store

import (
	"fmt"

	"github.com/dgraph-io/badger"
	cm "github.com/gridsim/simnode/src/common"
	"github.com/gridsim/simnode/src/message"
)

const resultPrefix = "result"

// BadgerStore wraps an InmemStore cache around a Badger database. Results
// are written through to disk in their canonical serialized form, so the
// emission history survives the process; the coordinator itself never reads
// it back.
type BadgerStore struct {
	inmemStore *InmemStore
	db         *badger.DB
	path       string
}

// NewBadgerStore creates or opens a BadgerStore at the given path.
func NewBadgerStore(cacheSize int, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.SyncWrites = false
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	store := &BadgerStore{
		inmemStore: NewInmemStore(cacheSize),
		db:         handle,
		path:       path,
	}
	return store, nil
}

// CacheSize ...
func (s *BadgerStore) CacheSize() int {
	return s.inmemStore.CacheSize()
}

// SetResult ...
func (s *BadgerStore) SetResult(result *message.ResultMessage) error {
	if err := s.inmemStore.SetResult(result); err != nil {
		return err
	}
	return s.dbSetResult(result)
}

// GetResult checks the cache first and falls back to the database.
func (s *BadgerStore) GetResult(epoch int) (*message.ResultMessage, error) {
	result, err := s.inmemStore.GetResult(epoch)
	if err != nil {
		result, err = s.dbGetResult(epoch)
	}
	return result, mapError(err, resultPrefix, fmt.Sprintf("%d", epoch))
}

// LastEpoch ...
func (s *BadgerStore) LastEpoch() int {
	return s.inmemStore.LastEpoch()
}

// Close ...
func (s *BadgerStore) Close() error {
	if err := s.inmemStore.Close(); err != nil {
		return err
	}
	return s.db.Close()
}

// StorePath ...
func (s *BadgerStore) StorePath() string {
	return s.path
}

//++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++
//DB Methods

func resultKey(epoch int) []byte {
	return []byte(fmt.Sprintf("%s_%09d", resultPrefix, epoch))
}

func (s *BadgerStore) dbGetResult(epoch int) (*message.ResultMessage, error) {
	var resultBytes []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(resultKey(epoch))
		if err != nil {
			return err
		}
		resultBytes, err = item.Value()
		return err
	})

	if err != nil {
		return nil, err
	}

	result := new(message.ResultMessage)
	if err := result.Unmarshal(resultBytes); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *BadgerStore) dbSetResult(result *message.ResultMessage) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	val, err := result.Marshal()
	if err != nil {
		return err
	}

	//insert [result_epoch] => [result bytes]
	if err := tx.Set(resultKey(result.Epoch), val); err != nil {
		return err
	}

	return tx.Commit(nil)
}

func isDBKeyNotFound(err error) bool {
	return err == badger.ErrKeyNotFound
}

func mapError(err error, name, key string) error {
	if err != nil {
		if isDBKeyNotFound(err) {
			return cm.NewStoreErr(name, cm.KeyNotFound, key)
		}
	}
	return err
}
