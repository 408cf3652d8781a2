// Package sale is the core API for the crowdsale service. It serializes
// signed calls against a single sale, persists every accepted call and
// rebuilds the sale from those records on startup.
package sale

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/crowdsale/business/sys/metrics"
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/bank"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
	"github.com/ardanlabs/crowdsale/foundation/events"
	"github.com/ardanlabs/crowdsale/foundation/genesis"
)

// ErrInvalidCall is returned when a call is not signed properly or reuses
// a nonce. Such calls are never recorded.
var ErrInvalidCall = errors.New("invalid call")

// EventReceipt is the kind of message sent to subscribers for every
// committed call.
const EventReceipt = "receipt"

// =============================================================================

// Config represents the configuration required to start the sale.
type Config struct {
	Genesis   genesis.Genesis
	Storage   Storage
	Events    *events.Events
	Now       func() time.Time
	EvHandler crowdsale.EventHandler
}

// State manages the sale and the records of every call made against it.
type State struct {
	mu sync.Mutex

	genesis   genesis.Genesis
	storage   Storage
	events    *events.Events
	evHandler crowdsale.EventHandler
	now       func() time.Time
	clock     time.Time
	latest    Record

	bank *bank.Bank
	sale *crowdsale.Sale
}

// New constructs the sale from the genesis information and replays every
// record found in storage.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	if cfg.Storage == nil {
		return nil, errors.New("storage is required")
	}

	state := State{
		genesis:   cfg.Genesis,
		storage:   cfg.Storage,
		events:    cfg.Events,
		evHandler: ev,
		now:       now,
	}

	if err := state.build(); err != nil {
		return nil, err
	}

	if err := state.replay(); err != nil {
		return nil, err
	}

	return &state, nil
}

// Shutdown cleanly brings the sale down.
func (s *State) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	return s.storage.Close()
}

// Reset wipes the records from storage and rebuilds the sale from genesis.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Reset(); err != nil {
		return err
	}

	s.latest = Record{}
	return s.build()
}

// =============================================================================

// SubmitCall validates the signed call, records it and executes it against
// the sale. A call rejected by the sale is still recorded and consumes its
// nonce.
func (s *State) SubmitCall(ctx context.Context, sc SignedCall) (crowdsale.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := s.validateCall(sc)
	if err != nil {
		return crowdsale.Receipt{}, err
	}

	rec := Record{
		Number:    s.latest.Number + 1,
		PrevHash:  s.latest.Hash(),
		TimeStamp: s.now().UTC().UnixNano(),
		Call:      sc,
	}

	// Records must be ordered in time since the status is derived from it.
	if rec.TimeStamp < s.latest.TimeStamp {
		rec.TimeStamp = s.latest.TimeStamp
	}

	if err := s.storage.Write(rec); err != nil {
		return crowdsale.Receipt{}, fmt.Errorf("writing record %d: %w", rec.Number, err)
	}
	s.latest = rec

	receipt, err := s.apply(ctx, from, rec)
	if err != nil {
		metrics.AddCall(string(sc.Op), "rejected")
		return crowdsale.Receipt{}, err
	}
	metrics.AddCall(string(sc.Op), "accepted")

	if s.events != nil {
		s.events.Send(EventReceipt, receipt)
	}

	return receipt, nil
}

// =============================================================================

// build constructs the bank and the sale from the genesis information.
func (s *State) build() error {
	balances, err := s.genesis.AccountBalances()
	if err != nil {
		return err
	}

	owner, err := s.genesis.OwnerID()
	if err != nil {
		return fmt.Errorf("genesis owner: %w", err)
	}

	beneficiary, err := s.genesis.BeneficiaryID()
	if err != nil {
		return fmt.Errorf("genesis beneficiary: %w", err)
	}

	bnk := bank.New(balances)

	cfg := crowdsale.Config{
		Owner:       owner,
		Beneficiary: beneficiary,
		OpenTime:    s.genesis.OpenTime,
		CloseTime:   s.genesis.CloseTime,
		GoalMin:     s.genesis.GoalMin,
		GoalMax:     s.genesis.GoalMax,
		Bank:        bnk,
		Now:         s.clockNow,
		EvHandler:   s.evHandler,
	}

	sale, err := crowdsale.New(cfg)
	if err != nil {
		return err
	}

	s.bank = bnk
	s.sale = sale

	return nil
}

// replay executes every stored record in order, using the time each call
// was originally executed at.
func (s *State) replay() error {
	iter := s.storage.ForEach()
	defer iter.Close()

	for {
		rec, err := iter.Next()
		if err != nil {
			if iter.Done() && errors.Is(err, ErrNotFound) {
				break
			}
			return fmt.Errorf("reading record %d: %w", s.latest.Number+1, err)
		}

		if err := rec.ValidateRecord(s.latest); err != nil {
			return err
		}

		from, err := s.validateCall(rec.Call)
		if err != nil {
			return fmt.Errorf("record %d: %w", rec.Number, err)
		}

		s.latest = rec

		if _, err := s.apply(context.Background(), from, rec); err != nil {
			s.evHandler("state: replay: record[%d]: rejected: %s", rec.Number, err)
		}
	}

	s.evHandler("state: replay: records[%d]", s.latest.Number)

	return nil
}

// validateCall checks the signature and the nonce of the call and returns
// the account that signed it.
func (s *State) validateCall(sc SignedCall) (account.ID, error) {
	if err := sc.Validate(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCall, err)
	}

	from, err := sc.FromAccount()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCall, err)
	}

	if err := s.bank.ValidateNonce(from, sc.Nonce); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidCall, err)
	}

	return from, nil
}

// apply executes the recorded call with the clock set to the record time.
func (s *State) apply(ctx context.Context, from account.ID, rec Record) (crowdsale.Receipt, error) {
	s.clock = rec.Time()
	defer func() {
		s.clock = time.Time{}
	}()

	s.bank.UpdateNonce(from, rec.Call.Nonce)

	call := rec.Call.Call
	switch call.Op {
	case crowdsale.OpBuyTokens:
		return s.sale.BuyTokens(ctx, from, call.Value)

	case crowdsale.OpGrantTokens:
		return s.sale.GrantTokens(ctx, from, call.To, call.Value)

	case crowdsale.OpEscrowRefund:
		return s.sale.EscrowRefund(ctx, from)

	case crowdsale.OpEscrowWithdraw:
		return s.sale.EscrowWithdraw(ctx, from)

	case crowdsale.OpEscrowClaim:
		return s.sale.EscrowClaim(ctx, from, call.Amount)

	case crowdsale.OpAlterGoal:
		return s.sale.AlterGoal(ctx, from, call.GoalMin, call.GoalMax)

	case OpDeposit:
		return s.deposit(ctx, from, call.Value)
	}

	return crowdsale.Receipt{}, fmt.Errorf("unknown operation %q", call.Op)
}

// deposit sends native value to the sale address outside of the ledger.
func (s *State) deposit(ctx context.Context, from account.ID, value uint64) (crowdsale.Receipt, error) {
	if value == 0 {
		return crowdsale.Receipt{}, &crowdsale.CallError{Op: OpDeposit, Caller: from, Status: s.sale.Status(), Err: crowdsale.ErrZeroValue}
	}

	if err := s.bank.Transfer(ctx, from, s.sale.Address(), value); err != nil {
		return crowdsale.Receipt{}, &crowdsale.CallError{Op: OpDeposit, Caller: from, Status: s.sale.Status(), Err: fmt.Errorf("%w: %w", crowdsale.ErrTransfer, err)}
	}

	s.evHandler("state: deposit: from[%s]: value[%d]", from, value)

	receipt := crowdsale.Receipt{
		Op:     OpDeposit,
		Caller: from,
		Value:  value,
		Status: s.sale.Status(),
	}

	return receipt, nil
}

// clockNow is the clock handed to the sale. While a call executes it is
// pinned to the record time.
func (s *State) clockNow() time.Time {
	if !s.clock.IsZero() {
		return s.clock
	}
	return s.now()
}
