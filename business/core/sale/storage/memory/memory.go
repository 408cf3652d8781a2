// Package memory implements the ability to read and write records to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/crowdsale/business/core/sale"
)

// Memory represents the serialization implementation for reading and storing
// records in memory using a slice. This implements the sale.Storage
// interface.
type Memory struct {
	mu      sync.RWMutex
	records []sale.Record
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified record and stores it in memory.
func (m *Memory) Write(rec sale.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := uint64(len(m.records))
	if l+1 != rec.Number {
		return fmt.Errorf("record %d is out of order, exp %d", rec.Number, l+1)
	}

	m.records = append(m.records, rec)

	return nil
}

// GetRecord returns the record with the specified number.
func (m *Memory) GetRecord(num uint64) (sale.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := uint64(len(m.records))
	if num == 0 || num > l {
		return sale.Record{}, sale.ErrNotFound
	}

	return m.records[num-1], nil
}

// ForEach returns an iterator to walk through all the records
// starting with record number 1.
func (m *Memory) ForEach() sale.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the records.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
	return nil
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the records in memory.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current record number being iterated over.
	eor     bool    // Represents the iterator is at the end of the records.
}

// Next retrieves the next record.
func (mi *memoryIterator) Next() (sale.Record, error) {
	if mi.eor {
		return sale.Record{}, sale.ErrNotFound
	}

	mi.current++
	rec, err := mi.storage.GetRecord(mi.current)
	if errors.Is(err, sale.ErrNotFound) {
		mi.eor = true
	}

	return rec, err
}

// Done returns the end of records value.
func (mi *memoryIterator) Done() bool {
	return mi.eor
}

// Close implements the sale.Iterator interface. Nothing is held open.
func (mi *memoryIterator) Close() {}
