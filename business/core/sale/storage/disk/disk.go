// Package disk implements the ability to read and write records to disk
// with each record stored in its own file.
package disk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/ardanlabs/crowdsale/business/core/sale"
)

// Disk represents the serialization implementation for reading and storing
// records in their own separate files on disk. This implements the
// sale.Storage interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, err
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each new record and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Write takes the specified record and stores it on disk in a file labeled
// with the record number.
func (d *Disk) Write(rec sale.Record) error {

	// Marshal the record for writing to disk in a more human readable format.
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	// Create a new file for this record. An existing file means the record
	// number was already used.
	f, err := os.OpenFile(d.getPath(rec.Number), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	// Write the new record to disk.
	if _, err := f.Write(data); err != nil {
		return err
	}

	return nil
}

// GetRecord searches the records on disk to locate and return the
// contents of the specified record by number.
func (d *Disk) GetRecord(num uint64) (sale.Record, error) {

	// Open the record file for the specified number.
	f, err := os.OpenFile(d.getPath(num), os.O_RDONLY, 0600)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sale.Record{}, sale.ErrNotFound
		}
		return sale.Record{}, err
	}
	defer f.Close()

	// Decode the contents of the record.
	var rec sale.Record
	if err := json.NewDecoder(f).Decode(&rec); err != nil {
		return sale.Record{}, fmt.Errorf("decoding record %d: %w", num, err)
	}

	return rec, nil
}

// ForEach returns an iterator to walk through all the records
// starting with record number 1.
func (d *Disk) ForEach() sale.Iterator {
	return &diskIterator{disk: d}
}

// Reset will clear out the records on disk.
func (d *Disk) Reset() error {
	if err := os.RemoveAll(d.dbPath); err != nil {
		return err
	}

	return os.MkdirAll(d.dbPath, 0755)
}

// getPath forms the path to the specified record.
func (d *Disk) getPath(num uint64) string {
	name := strconv.FormatUint(num, 10)
	return path.Join(d.dbPath, fmt.Sprintf("%s.json", name))
}

// =============================================================================

// diskIterator represents the iteration implementation for walking
// through and reading records on disk.
type diskIterator struct {
	disk    *Disk  // Access to the disk storage API.
	current uint64 // Current record number being iterated over.
	eor     bool   // Represents the iterator is at the end of the records.
}

// Next retrieves the next record from disk.
func (di *diskIterator) Next() (sale.Record, error) {
	if di.eor {
		return sale.Record{}, sale.ErrNotFound
	}

	di.current++
	rec, err := di.disk.GetRecord(di.current)
	if errors.Is(err, sale.ErrNotFound) {
		di.eor = true
	}

	return rec, err
}

// Done returns the end of records value.
func (di *diskIterator) Done() bool {
	return di.eor
}

// Close implements the sale.Iterator interface. Each record file is closed
// as soon as it is read.
func (di *diskIterator) Close() {}
