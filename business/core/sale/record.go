package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardanlabs/crowdsale/foundation/signature"
)

// ErrNotFound is returned by storage when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the call records.
type Storage interface {
	Write(rec Record) error
	GetRecord(num uint64) (Record, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the records. Done only reports
// true once the records are exhausted; a failed read returns its error with
// Done still false. Close must be called when the caller stops iterating.
type Iterator interface {
	Next() (Record, error)
	Done() bool
	Close()
}

// =============================================================================

// Record is a call as it was accepted for execution. Records are numbered
// from 1 and each one carries the hash of the record before it.
type Record struct {
	Number    uint64     `json:"number"`
	PrevHash  string     `json:"prev_hash"`
	TimeStamp int64      `json:"timestamp"` // Unix nanoseconds the call was executed at.
	Call      SignedCall `json:"call"`
}

// Hash returns the unique hash for the record.
func (rec Record) Hash() string {
	if rec.Number == 0 {
		return signature.ZeroHash
	}

	return signature.Hash(rec)
}

// Time returns the clock the call executed with.
func (rec Record) Time() time.Time {
	return time.Unix(0, rec.TimeStamp).UTC()
}

// ValidateRecord checks the record follows the specified parent record.
func (rec Record) ValidateRecord(parent Record) error {
	if rec.Number != parent.Number+1 {
		return fmt.Errorf("record %d out of order, exp %d", rec.Number, parent.Number+1)
	}

	if rec.PrevHash != parent.Hash() {
		return fmt.Errorf("record %d parent hash doesn't match, got %s, exp %s", rec.Number, rec.PrevHash, parent.Hash())
	}

	if rec.TimeStamp < parent.TimeStamp {
		return fmt.Errorf("record %d timestamp is before its parent", rec.Number)
	}

	return nil
}
