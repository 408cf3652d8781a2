// Package leveldb implements the ability to read and write records to a
// LevelDB key/value store keyed by record number.
package leveldb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// recordPrefix namespaces the record keys inside the store.
var recordPrefix = []byte("rec:")

// LevelDB represents the serialization implementation for reading and
// storing records in a LevelDB database. This implements the sale.Storage
// interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens or creates the database at the specified path.
func New(dbPath string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb %s: %w", dbPath, err)
	}

	return &LevelDB{db: db}, nil
}

// Close releases the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write takes the specified record and stores it under its number. Writes
// are synced so an accepted call survives a crash.
func (l *LevelDB) Write(rec sale.Record) error {
	key := recordKey(rec.Number)

	exists, err := l.db.Has(key, nil)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("record %d already exists", rec.Number)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return l.db.Put(key, data, &opt.WriteOptions{Sync: true})
}

// GetRecord returns the record with the specified number.
func (l *LevelDB) GetRecord(num uint64) (sale.Record, error) {
	data, err := l.db.Get(recordKey(num), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return sale.Record{}, sale.ErrNotFound
		}
		return sale.Record{}, err
	}

	var rec sale.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return sale.Record{}, fmt.Errorf("decoding record %d: %w", num, err)
	}

	return rec, nil
}

// ForEach returns an iterator to walk through all the records
// starting with record number 1.
func (l *LevelDB) ForEach() sale.Iterator {
	return &levelIterator{
		iter: l.db.NewIterator(util.BytesPrefix(recordPrefix), nil),
	}
}

// Reset deletes every record in a single batch.
func (l *LevelDB) Reset() error {
	iter := l.db.NewIterator(util.BytesPrefix(recordPrefix), nil)
	defer iter.Release()

	var batch leveldb.Batch
	for iter.Next() {
		batch.Delete(iter.Key())
	}
	if err := iter.Error(); err != nil {
		return err
	}

	return l.db.Write(&batch, &opt.WriteOptions{Sync: true})
}

// recordKey encodes the number big endian so keys sort in record order.
func recordKey(num uint64) []byte {
	key := make([]byte, len(recordPrefix)+8)
	copy(key, recordPrefix)
	binary.BigEndian.PutUint64(key[len(recordPrefix):], num)
	return key
}

// =============================================================================

// levelIterator walks the records in key order using a LevelDB iterator.
type levelIterator struct {
	iter iterator.Iterator
	eor  bool
}

// Next retrieves the next record.
func (li *levelIterator) Next() (sale.Record, error) {
	if li.eor {
		return sale.Record{}, sale.ErrNotFound
	}

	if !li.iter.Next() {
		if err := li.iter.Error(); err != nil {
			return sale.Record{}, fmt.Errorf("reading records: %w", err)
		}
		li.eor = true
		li.iter.Release()
		return sale.Record{}, sale.ErrNotFound
	}

	var rec sale.Record
	if err := json.Unmarshal(li.iter.Value(), &rec); err != nil {
		return sale.Record{}, fmt.Errorf("decoding record: %w", err)
	}

	return rec, nil
}

// Done returns the end of records value.
func (li *levelIterator) Done() bool {
	return li.eor
}

// Close releases the underlying LevelDB iterator. It is safe to call after
// the records are exhausted.
func (li *levelIterator) Close() {
	li.iter.Release()
}
