// Package crowdsale implements a capped crowdsale ledger. Contributions are
// accepted during a time window and recorded as an allocation per account.
// Once the window closes, or the hard cap is reached, the sale resolves to
// goal reached, where escrow is withdrawn by the beneficiary and allocations
// can be claimed, or goal not reached, where contributors are refunded.
//
// Every operation is all or nothing. Changes are applied before any value
// leaves the sale and are reverted if the transfer fails, so a recipient
// that calls back into the sale while being paid observes the updated state.
package crowdsale

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/journal"
)

// EventHandler defines a function that is called when events occur in the
// processing of operations.
type EventHandler func(v string, args ...any)

// Bank represents the behavior required to move native value in and out of
// the sale. A transfer may call back into the sale before it returns.
type Bank interface {
	Transfer(ctx context.Context, from account.ID, to account.ID, amount uint64) error
}

// Config represents the construction parameters of a sale.
type Config struct {
	Owner       account.ID
	Beneficiary account.ID
	Address     account.ID
	OpenTime    time.Time
	CloseTime   time.Time
	GoalMin     uint64
	GoalMax     uint64
	Bank        Bank
	Now         func() time.Time
	EvHandler   EventHandler
}

// Sale is the crowdsale ledger. It is not safe for concurrent use: every
// call must run to completion before the next one starts, with the
// exception of calls made from inside a value transfer performed by the
// sale itself.
type Sale struct {
	owner       account.ID
	beneficiary account.ID
	address     account.ID
	window      Window
	bank        Bank
	now         func() time.Time
	evHandler   EventHandler

	goal        Goal
	ledger      map[account.ID]uint64
	totalRaised uint64
	escrow      uint64

	journal journal.Journal
	events  []Event
}

// New constructs a sale. The beneficiary defaults to the owner and the sale
// address defaults to the contract address derived from the owner.
func New(cfg Config) (*Sale, error) {
	if !cfg.Owner.IsID() || cfg.Owner.IsZero() {
		return nil, errors.New("owner account is not properly formatted")
	}

	if cfg.Bank == nil {
		return nil, errors.New("bank is required")
	}

	if cfg.CloseTime.Before(cfg.OpenTime) {
		return nil, fmt.Errorf("close time %s is before open time %s", cfg.CloseTime, cfg.OpenTime)
	}

	beneficiary := cfg.Beneficiary
	if beneficiary == "" {
		beneficiary = cfg.Owner
	}
	if !beneficiary.IsID() || beneficiary.IsZero() {
		return nil, errors.New("beneficiary account is not properly formatted")
	}

	address := cfg.Address
	if address == "" {
		address = account.Contract(cfg.Owner, 0)
	}
	if !address.IsID() {
		return nil, errors.New("sale account is not properly formatted")
	}

	// The sale can't pay itself, so escrow held for either of these
	// accounts could never leave.
	switch address {
	case cfg.Owner:
		return nil, fmt.Errorf("sale account %s is the owner account", address)
	case beneficiary:
		return nil, fmt.Errorf("sale account %s is the beneficiary account", address)
	}

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

	s := Sale{
		owner:       cfg.Owner,
		beneficiary: beneficiary,
		address:     address,
		window:      Window{OpenTime: cfg.OpenTime, CloseTime: cfg.CloseTime},
		bank:        cfg.Bank,
		now:         now,
		evHandler:   ev,
		goal:        Goal{Min: cfg.GoalMin, Max: cfg.GoalMax},
		ledger:      make(map[account.ID]uint64),
	}

	return &s, nil
}

// =============================================================================

// Summary represents a point in time view of the sale.
type Summary struct {
	Address     account.ID `json:"address"`
	Owner       account.ID `json:"owner"`
	Beneficiary account.ID `json:"beneficiary"`
	Window      Window     `json:"window"`
	Goal        Goal       `json:"goal"`
	TotalRaised uint64     `json:"total_raised"`
	Escrow      uint64     `json:"escrow"`
	Status      Status     `json:"status"`
}

// Summary returns a view of the sale at the current time.
func (s *Sale) Summary() Summary {
	return Summary{
		Address:     s.address,
		Owner:       s.owner,
		Beneficiary: s.beneficiary,
		Window:      s.window,
		Goal:        s.goal,
		TotalRaised: s.totalRaised,
		Escrow:      s.escrow,
		Status:      s.Status(),
	}
}

// Status derives the status of the sale at the current time.
func (s *Sale) Status() Status {
	return DeriveStatus(s.now(), s.window, s.totalRaised, s.goal)
}

// BalanceOf returns the allocation held by the account.
func (s *Sale) BalanceOf(id account.ID) uint64 {
	return s.ledger[id]
}

// RefundBalance returns the amount the account would be refunded right now.
func (s *Sale) RefundBalance(id account.ID) uint64 {
	if s.Status() != StatusGoalNotReached {
		return 0
	}
	return s.ledger[id]
}

// GoalLimitMinInWei returns the soft cap.
func (s *Sale) GoalLimitMinInWei() uint64 {
	return s.goal.Min
}

// GoalLimitMaxInWei returns the hard cap.
func (s *Sale) GoalLimitMaxInWei() uint64 {
	return s.goal.Max
}

// TotalRaised returns the sum of all allocations.
func (s *Sale) TotalRaised() uint64 {
	return s.totalRaised
}

// EscrowBalance returns the value held by the sale on behalf of contributors.
// Value sent to the sale address outside of the sale is not included.
func (s *Sale) EscrowBalance() uint64 {
	return s.escrow
}

// Address returns the account that holds the escrow.
func (s *Sale) Address() account.ID {
	return s.address
}

// Owner returns the account that created the sale.
func (s *Sale) Owner() account.ID {
	return s.owner
}

// Beneficiary returns the account that receives the escrow and claims.
func (s *Sale) Beneficiary() account.ID {
	return s.beneficiary
}

// Ledger makes a copy of all allocations, including zeroed entries.
func (s *Sale) Ledger() map[account.ID]uint64 {
	ledger := make(map[account.ID]uint64, len(s.ledger))
	for id, amount := range s.ledger {
		ledger[id] = amount
	}
	return ledger
}

// =============================================================================

// setAllocation updates a ledger entry and journals the previous entry.
func (s *Sale) setAllocation(id account.ID, amount uint64) {
	prev, exists := s.ledger[id]
	s.journal.Append(func() {
		if !exists {
			delete(s.ledger, id)
			return
		}
		s.ledger[id] = prev
	})

	s.ledger[id] = amount
}

// setTotals updates the total raised and escrow and journals the previous
// values.
func (s *Sale) setTotals(totalRaised uint64, escrow uint64) {
	prevTotal, prevEscrow := s.totalRaised, s.escrow
	s.journal.Append(func() {
		s.totalRaised = prevTotal
		s.escrow = prevEscrow
	})

	s.totalRaised = totalRaised
	s.escrow = escrow
}

// setGoal updates the goal and journals the previous goal.
func (s *Sale) setGoal(goal Goal) {
	prev := s.goal
	s.journal.Append(func() {
		s.goal = prev
	})

	s.goal = goal
}

// emit records an event that is kept only if the operation succeeds.
func (s *Sale) emit(evt Event) {
	n := len(s.events)
	s.journal.Append(func() {
		s.events = s.events[:n]
	})

	s.events = append(s.events, evt)
}

// add returns a + b or an error if the sum does not fit.
func add(a uint64, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}
