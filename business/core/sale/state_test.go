package sale_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/business/core/sale/storage/memory"
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
	"github.com/ardanlabs/crowdsale/foundation/events"
	"github.com/ardanlabs/crowdsale/foundation/genesis"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

var (
	openTime  = time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	closeTime = time.Date(2026, time.October, 31, 0, 0, 0, 0, time.UTC)
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

type party struct {
	key   *ecdsa.PrivateKey
	id    account.ID
	nonce uint64
}

func newParty(t *testing.T, hexKey string) *party {
	var key *ecdsa.PrivateKey
	var err error
	switch hexKey {
	case "":
		key, err = crypto.GenerateKey()
	default:
		key, err = crypto.HexToECDSA(hexKey)
	}
	if err != nil {
		t.Fatalf("\t%s\tShould be able to build a key: %v", failed, err)
	}

	return &party{key: key, id: account.FromPublicKey(key.PublicKey)}
}

func (p *party) call(t *testing.T, call sale.Call) sale.SignedCall {
	p.nonce++
	call.Nonce = p.nonce

	sc, err := call.Sign(p.key)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the call: %v", failed, err)
	}
	return sc
}

type fixture struct {
	clock   *clock
	owner   *party
	buyer   *party
	gen     genesis.Genesis
	storage *memory.Memory
	events  *events.Events
	state   *sale.State
}

func newFixture(t *testing.T) *fixture {
	owner := newParty(t, "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	buyer := newParty(t, "")

	gen := genesis.Genesis{
		Date:      openTime,
		Owner:     string(owner.id),
		OpenTime:  openTime,
		CloseTime: closeTime,
		GoalMin:   100,
		GoalMax:   500,
		Balances: map[string]uint64{
			string(owner.id): 1000,
			string(buyer.id): 1000,
		},
	}

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	f := fixture{
		clock:   &clock{now: openTime.Add(time.Hour)},
		owner:   owner,
		buyer:   buyer,
		gen:     gen,
		storage: strg,
		events:  events.New(),
	}
	f.state = f.open(t)

	return &f
}

func (f *fixture) open(t *testing.T) *sale.State {
	cfg := sale.Config{
		Genesis: f.gen,
		Storage: f.storage,
		Events:  f.events,
		Now:     f.clock.Now,
	}

	state, err := sale.New(cfg)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the sale: %v", failed, err)
	}
	return state
}

// =============================================================================

func Test_SubmitCall(t *testing.T) {
	t.Log("Given the need to execute signed calls against the sale.")
	{
		f := newFixture(t)
		ctx := context.Background()
		ch := f.events.Acquire("test")

		receipt, err := f.state.SubmitCall(ctx, f.buyer.call(t, sale.Call{Op: crowdsale.OpBuyTokens, Value: 150}))
		if err != nil {
			t.Fatalf("\t%s\tShould be able to buy tokens: %v", failed, err)
		}
		if receipt.Caller != f.buyer.id || len(receipt.Find(crowdsale.EventTransfer)) != 1 {
			t.Fatalf("\t%s\tShould get a receipt with a transfer event: %+v", failed, receipt)
		}
		t.Logf("\t%s\tShould be able to buy tokens.", success)

		if got := f.state.BalanceOf(f.buyer.id); got != 150 {
			t.Fatalf("\t%s\tShould have an allocation of 150, got %d.", failed, got)
		}
		if info := f.state.Account(f.buyer.id); info.Balance != 850 || info.Nonce != 1 {
			t.Fatalf("\t%s\tShould have paid 150 and used nonce 1: %+v", failed, info)
		}
		t.Logf("\t%s\tShould update the ledger and the native account.", success)

		select {
		case msg := <-ch:
			if msg.Kind != sale.EventReceipt {
				t.Fatalf("\t%s\tShould receive a receipt message, got %s.", failed, msg.Kind)
			}
		default:
			t.Fatalf("\t%s\tShould send the receipt to subscribers.", failed)
		}
		t.Logf("\t%s\tShould send the receipt to subscribers.", success)

		f.buyer.nonce = 0
		replay := f.buyer.call(t, sale.Call{Op: crowdsale.OpBuyTokens, Value: 10})
		if _, err := f.state.SubmitCall(ctx, replay); !errors.Is(err, sale.ErrInvalidCall) {
			t.Fatalf("\t%s\tShould reject a reused nonce: %v", failed, err)
		}
		if f.state.LatestRecord().Number != 1 {
			t.Fatalf("\t%s\tShould not record an invalid call.", failed)
		}
		t.Logf("\t%s\tShould reject a call with a bad signature or reused nonce.", success)

		_, err = f.state.SubmitCall(ctx, f.buyer.call(t, sale.Call{Op: crowdsale.OpEscrowClaim, Amount: 10}))
		if !errors.Is(err, crowdsale.ErrWrongStatus) {
			t.Fatalf("\t%s\tShould reject a claim while open: %v", failed, err)
		}
		if f.state.LatestRecord().Number != 2 || f.state.Account(f.buyer.id).Nonce != 2 {
			t.Fatalf("\t%s\tShould record the rejected call and consume its nonce.", failed)
		}
		t.Logf("\t%s\tShould record a call rejected by the sale.", success)

		if _, err := f.state.SubmitCall(ctx, f.buyer.call(t, sale.Call{Op: sale.OpDeposit, Value: 50})); err != nil {
			t.Fatalf("\t%s\tShould be able to deposit: %v", failed, err)
		}
		sum := f.state.Summary()
		if sum.TotalRaised != 150 || sum.Escrow != 150 {
			t.Fatalf("\t%s\tShould not count a deposit: %+v", failed, sum)
		}
		if got := f.state.Account(sum.Address).Balance; got != 200 {
			t.Fatalf("\t%s\tShould hold the deposit at the sale address, got %d.", failed, got)
		}
		t.Logf("\t%s\tShould hold a deposit outside of the ledger.", success)

		if _, err := f.state.SubmitCall(ctx, f.buyer.call(t, sale.Call{Op: crowdsale.OpAlterGoal, GoalMin: 1, GoalMax: 2})); !errors.Is(err, crowdsale.ErrUnauthorized) {
			t.Fatalf("\t%s\tShould reject a goal change by a non owner: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a goal change by a non owner.", success)

		if _, err := (sale.Call{Op: "mint"}).Sign(f.buyer.key); err == nil {
			t.Fatalf("\t%s\tShould not sign an unknown operation.", failed)
		}
		t.Logf("\t%s\tShould not sign an unknown operation.", success)
	}
}

func Test_Replay(t *testing.T) {
	t.Log("Given the need to rebuild the sale from its records.")
	{
		f := newFixture(t)
		ctx := context.Background()

		if _, err := f.state.SubmitCall(ctx, f.buyer.call(t, sale.Call{Op: crowdsale.OpBuyTokens, Value: 120})); err != nil {
			t.Fatalf("\t%s\tShould be able to buy tokens: %v", failed, err)
		}

		// The withdraw only succeeds because it executes after the close.
		f.clock.now = closeTime.Add(time.Minute)
		if _, err := f.state.SubmitCall(ctx, f.owner.call(t, sale.Call{Op: crowdsale.OpEscrowWithdraw})); err != nil {
			t.Fatalf("\t%s\tShould be able to withdraw after the close: %v", failed, err)
		}
		if _, err := f.state.SubmitCall(ctx, f.buyer.call(t, sale.Call{Op: crowdsale.OpEscrowClaim, Amount: 20})); err != nil {
			t.Fatalf("\t%s\tShould be able to claim after the close: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to run the sale to completion.", success)

		f.clock.now = closeTime.Add(24 * time.Hour)
		replayed := f.open(t)

		if !reflect.DeepEqual(f.state.Summary(), replayed.Summary()) {
			t.Fatalf("\t%s\tShould rebuild the same summary:\n%+v\n%+v", failed, f.state.Summary(), replayed.Summary())
		}
		if !reflect.DeepEqual(f.state.Ledger(), replayed.Ledger()) {
			t.Fatalf("\t%s\tShould rebuild the same ledger.", failed)
		}
		if !reflect.DeepEqual(f.state.Accounts(), replayed.Accounts()) {
			t.Fatalf("\t%s\tShould rebuild the same native accounts.", failed)
		}
		if replayed.LatestRecord().Hash() != f.state.LatestRecord().Hash() {
			t.Fatalf("\t%s\tShould rebuild the same record chain.", failed)
		}
		t.Logf("\t%s\tShould rebuild the same sale from its records.", success)

		recs, err := replayed.Records(2, 0)
		if err != nil || len(recs) != 2 || recs[0].Number != 2 {
			t.Fatalf("\t%s\tShould return records 2 through 3: %d: %v", failed, len(recs), err)
		}
		t.Logf("\t%s\tShould return a range of records.", success)

		if err := replayed.Reset(); err != nil {
			t.Fatalf("\t%s\tShould be able to reset: %v", failed, err)
		}
		if replayed.LatestRecord().Number != 0 || replayed.Summary().TotalRaised != 0 {
			t.Fatalf("\t%s\tShould return to the genesis state after a reset.", failed)
		}
		t.Logf("\t%s\tShould return to the genesis state after a reset.", success)
	}
}

func Test_ReplayBrokenChain(t *testing.T) {
	t.Log("Given the need to detect tampered records.")
	{
		f := newFixture(t)

		rec := sale.Record{
			Number:    1,
			PrevHash:  "0xbad",
			TimeStamp: openTime.Add(time.Hour).UnixNano(),
			Call:      f.buyer.call(t, sale.Call{Op: crowdsale.OpBuyTokens, Value: 10}),
		}
		if err := f.storage.Write(rec); err != nil {
			t.Fatalf("\t%s\tShould be able to write the record: %v", failed, err)
		}

		cfg := sale.Config{
			Genesis: f.gen,
			Storage: f.storage,
			Now:     f.clock.Now,
		}
		if _, err := sale.New(cfg); err == nil {
			t.Fatalf("\t%s\tShould refuse to replay a broken chain.", failed)
		}
		t.Logf("\t%s\tShould refuse to replay a broken chain.", success)
	}
}

// =============================================================================

// failingStorage returns a read error once the iterator reaches record failAt.
type failingStorage struct {
	*memory.Memory
	failAt uint64
	closed bool
}

func (fs *failingStorage) ForEach() sale.Iterator {
	return &failingIterator{storage: fs, inner: fs.Memory.ForEach()}
}

type failingIterator struct {
	storage *failingStorage
	inner   sale.Iterator
	current uint64
}

func (fi *failingIterator) Next() (sale.Record, error) {
	fi.current++
	if fi.current == fi.storage.failAt {
		return sale.Record{}, errIO
	}
	return fi.inner.Next()
}

func (fi *failingIterator) Done() bool {
	return fi.inner.Done()
}

func (fi *failingIterator) Close() {
	fi.storage.closed = true
	fi.inner.Close()
}

var errIO = errors.New("input/output error")

func Test_ReplayReadError(t *testing.T) {
	t.Log("Given the need to stop when stored records can't be read.")
	{
		f := newFixture(t)
		ctx := context.Background()

		for i := 0; i < 3; i++ {
			if _, err := f.state.SubmitCall(ctx, f.buyer.call(t, sale.Call{Op: crowdsale.OpBuyTokens, Value: 10})); err != nil {
				t.Fatalf("\t%s\tShould be able to submit a call: %v", failed, err)
			}
		}

		strg := failingStorage{Memory: f.storage, failAt: 2}
		cfg := sale.Config{
			Genesis: f.gen,
			Storage: &strg,
			Now:     f.clock.Now,
		}

		_, err := sale.New(cfg)
		if !errors.Is(err, errIO) {
			t.Fatalf("\t%s\tShould fail to construct the sale with the read error: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail to construct the sale with the read error.", success)

		if !strg.closed {
			t.Fatalf("\t%s\tShould close the iterator.", failed)
		}
		t.Logf("\t%s\tShould close the iterator.", success)
	}
}
