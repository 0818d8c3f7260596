package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbIterator "github.com/syndtr/goleveldb/leveldb/iterator"
	leveldbOpt "github.com/syndtr/goleveldb/leveldb/opt"
	leveldbStorage "github.com/syndtr/goleveldb/leveldb/storage"
	leveldbUtil "github.com/syndtr/goleveldb/leveldb/util"

	"boscoin.io/feedback/lib/common"
	"boscoin.io/feedback/lib/errors"
)

// LevelDBCore is satisfied by both `*leveldb.DB` and `*leveldb.Transaction`.
type LevelDBCore interface {
	Has([]byte, *leveldbOpt.ReadOptions) (bool, error)
	Get([]byte, *leveldbOpt.ReadOptions) ([]byte, error)
	NewIterator(*leveldbUtil.Range, *leveldbOpt.ReadOptions) leveldbIterator.Iterator
	Put([]byte, []byte, *leveldbOpt.WriteOptions) error
	Write(*leveldb.Batch, *leveldbOpt.WriteOptions) error
	Delete([]byte, *leveldbOpt.WriteOptions) error
}

type LevelDBBackend struct {
	DB   *leveldb.DB
	Core LevelDBCore
}

func setLevelDBCoreError(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*errors.Error); ok {
		return e
	}

	return errors.NewError(
		errors.StorageCoreError.Code,
		fmt.Sprintf("%s: %s", errors.StorageCoreError.Message, err.Error()),
	)
}

func (st *LevelDBBackend) Init(config *Config) (err error) {
	var db *leveldb.DB

	switch config.Scheme {
	case "file":
		db, err = leveldb.OpenFile(config.Path, nil)
	case "memory":
		db, err = leveldb.Open(leveldbStorage.NewMemStorage(), nil)
	default:
		err = fmt.Errorf("unknown storage scheme, %q", config.Scheme)
	}
	if err != nil {
		return setLevelDBCoreError(err)
	}

	st.DB = db
	st.Core = db

	return
}

func (st *LevelDBBackend) Close() error {
	return st.DB.Close()
}

func (st *LevelDBBackend) IsTransaction() bool {
	_, ok := st.Core.(*leveldb.Transaction)
	return ok
}

//
// OpenTransaction returns a new `LevelDBBackend` whose writes are only
// visible to itself until `Commit`. Only one transaction can be open at
// a time, others block until it is committed or discarded.
//
func (st *LevelDBBackend) OpenTransaction() (*LevelDBBackend, error) {
	if st.IsTransaction() {
		return nil, setLevelDBCoreError(fmt.Errorf("already in transaction"))
	}

	transaction, err := st.DB.OpenTransaction()
	if err != nil {
		return nil, setLevelDBCoreError(err)
	}

	return &LevelDBBackend{DB: st.DB, Core: transaction}, nil
}

func (st *LevelDBBackend) Discard() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return setLevelDBCoreError(fmt.Errorf("not in transaction"))
	}

	ts.Discard()
	return nil
}

func (st *LevelDBBackend) Commit() error {
	ts, ok := st.Core.(*leveldb.Transaction)
	if !ok {
		return setLevelDBCoreError(fmt.Errorf("not in transaction"))
	}

	return setLevelDBCoreError(ts.Commit())
}

func (st *LevelDBBackend) makeKey(key string) []byte {
	return []byte(key)
}

func (st *LevelDBBackend) encode(v interface{}) ([]byte, error) {
	if s, ok := v.(common.Serializable); ok {
		return s.Serialize()
	}

	return common.EncodeJSONValue(v)
}

func (st *LevelDBBackend) Has(k string) (bool, error) {
	ok, err := st.Core.Has(st.makeKey(k), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return false, nil
		}
		return false, setLevelDBCoreError(err)
	}

	return ok, nil
}

func (st *LevelDBBackend) GetRaw(k string) ([]byte, error) {
	b, err := st.Core.Get(st.makeKey(k), nil)
	if err == leveldb.ErrNotFound {
		return nil, errors.StorageRecordDoesNotExist
	}

	return b, setLevelDBCoreError(err)
}

func (st *LevelDBBackend) Get(k string, i interface{}) error {
	b, err := st.GetRaw(k)
	if err != nil {
		return err
	}

	return setLevelDBCoreError(common.DecodeJSONValue(b, i))
}

// New stores `v` under `k`; `k` must not exist yet.
func (st *LevelDBBackend) New(k string, v interface{}) error {
	return st.News(Item{Key: k, Value: v})
}

func (st *LevelDBBackend) News(vs ...Item) error {
	return st.write(vs, false)
}

// Set overwrites the existing value of `k`.
func (st *LevelDBBackend) Set(k string, v interface{}) error {
	return st.Sets(Item{Key: k, Value: v})
}

func (st *LevelDBBackend) Sets(vs ...Item) error {
	return st.write(vs, true)
}

//
// Put stores `v` under `k` whether or not `k` exists. Useful for counters
// and other records which are lazily created.
//
func (st *LevelDBBackend) Put(k string, v interface{}) error {
	encoded, err := st.encode(v)
	if err != nil {
		return setLevelDBCoreError(err)
	}

	return setLevelDBCoreError(st.Core.Put(st.makeKey(k), encoded, nil))
}

func (st *LevelDBBackend) write(vs []Item, mustExist bool) error {
	if len(vs) < 1 {
		return setLevelDBCoreError(fmt.Errorf("empty values"))
	}

	batch := new(leveldb.Batch)
	for _, v := range vs {
		exists, err := st.Has(v.Key)
		if err != nil {
			return err
		}
		if mustExist && !exists {
			return errors.StorageRecordDoesNotExist.Clone().SetData("key", v.Key)
		} else if !mustExist && exists {
			return errors.StorageRecordAlreadyExists.Clone().SetData("key", v.Key)
		}

		encoded, err := st.encode(v.Value)
		if err != nil {
			return setLevelDBCoreError(err)
		}
		batch.Put(st.makeKey(v.Key), encoded)
	}

	return setLevelDBCoreError(st.Core.Write(batch, nil))
}

func (st *LevelDBBackend) Remove(k string) error {
	exists, err := st.Has(k)
	if err != nil {
		return err
	} else if !exists {
		return errors.StorageRecordDoesNotExist.Clone().SetData("key", k)
	}

	return setLevelDBCoreError(st.Core.Delete(st.makeKey(k), nil))
}

//
// GetIterator walks the records under `prefix`.
//
// The returned function gives the next item and false when there is
// nothing left; the second function releases the iterator and must be
// called when the walk stops early. When `option` has a cursor, the walk
// starts right after the cursor key.
//
func (st *LevelDBBackend) GetIterator(prefix string, option ListOptions) (func() (IterItem, bool), func()) {
	var reverse bool
	var cursor []byte
	var limit uint64
	if option != nil {
		reverse = option.Reverse()
		cursor = option.Cursor()
		limit = option.Limit()
	}

	var dbRange *leveldbUtil.Range
	if len(prefix) > 0 {
		dbRange = leveldbUtil.BytesPrefix(st.makeKey(prefix))
	}

	iter := st.Core.NewIterator(dbRange, nil)

	var released bool
	release := func() {
		if !released {
			iter.Release()
			released = true
		}
	}

	var started bool
	start := func() bool {
		started = true
		switch {
		case len(cursor) < 1 && reverse:
			return iter.Last()
		case len(cursor) < 1:
			return iter.First()
		case reverse:
			// Seek lands on the first key >= cursor; step back until it
			// is below the cursor.
			if !iter.Seek(cursor) {
				return iter.Last()
			}
			return iter.Prev()
		default:
			if !iter.Seek(cursor) {
				return false
			}
			if string(iter.Key()) == string(cursor) {
				return iter.Next()
			}
			return true
		}
	}

	var n uint64
	return func() (IterItem, bool) {
		if released {
			return IterItem{}, false
		}
		if limit > 0 && n >= limit {
			release()
			return IterItem{}, false
		}

		var ok bool
		if !started {
			ok = start()
		} else if reverse {
			ok = iter.Prev()
		} else {
			ok = iter.Next()
		}
		if !ok {
			release()
			return IterItem{}, false
		}

		n++

		// leveldb reuses the buffers of Key and Value
		key := append([]byte(nil), iter.Key()...)
		value := append([]byte(nil), iter.Value()...)
		return IterItem{N: n, Key: key, Value: value}, true
	}, release
}
