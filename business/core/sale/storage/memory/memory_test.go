package memory_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/business/core/sale/storage/memory"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

func chain(n int) []sale.Record {
	var recs []sale.Record
	var parent sale.Record
	for i := 1; i <= n; i++ {
		rec := sale.Record{
			Number:    uint64(i),
			PrevHash:  parent.Hash(),
			TimeStamp: int64(i) * 1_000_000_000,
			Call: sale.SignedCall{
				Call: sale.Call{Nonce: uint64(i), Op: crowdsale.OpBuyTokens, Value: uint64(i * 10)},
			},
		}
		recs = append(recs, rec)
		parent = rec
	}
	return recs
}

func Test_Storage(t *testing.T) {
	t.Log("Given the need to store and read back call records.")
	{
		strg, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the store: %v", failed, err)
		}

		recs := chain(3)
		for _, rec := range recs {
			if err := strg.Write(rec); err != nil {
				t.Fatalf("\t%s\tShould be able to write record %d: %v", failed, rec.Number, err)
			}
		}
		t.Logf("\t%s\tShould be able to write the records.", success)

		if err := strg.Write(recs[1]); err == nil {
			t.Fatalf("\t%s\tShould not be able to write a record number twice.", failed)
		}
		t.Logf("\t%s\tShould not be able to write a record number twice.", success)

		rec, err := strg.GetRecord(2)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to get record 2: %v", failed, err)
		}
		if rec.Hash() != recs[1].Hash() {
			t.Fatalf("\t%s\tShould read back the same record, got %s, exp %s", failed, rec.Hash(), recs[1].Hash())
		}
		t.Logf("\t%s\tShould read back the same record.", success)

		if _, err := strg.GetRecord(4); !errors.Is(err, sale.ErrNotFound) {
			t.Fatalf("\t%s\tShould get ErrNotFound for a missing record: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrNotFound for a missing record.", success)

		var parent sale.Record
		iter := strg.ForEach()
		for rec, err := iter.Next(); !iter.Done(); rec, err = iter.Next() {
			if err != nil {
				t.Fatalf("\t%s\tShould be able to iterate: %v", failed, err)
			}
			if err := rec.ValidateRecord(parent); err != nil {
				t.Fatalf("\t%s\tShould iterate a valid chain: %v", failed, err)
			}
			parent = rec
		}
		iter.Close()

		if parent.Number != 3 {
			t.Fatalf("\t%s\tShould iterate 3 records, got %d.", failed, parent.Number)
		}
		t.Logf("\t%s\tShould iterate the records in order.", success)

		if err := strg.Reset(); err != nil {
			t.Fatalf("\t%s\tShould be able to reset: %v", failed, err)
		}
		iter = strg.ForEach()
		iter.Next()
		iter.Close()
		if !iter.Done() {
			t.Fatalf("\t%s\tShould have no records after a reset.", failed)
		}
		t.Logf("\t%s\tShould have no records after a reset.", success)

		if err := strg.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close: %v", failed, err)
		}
	}
}
