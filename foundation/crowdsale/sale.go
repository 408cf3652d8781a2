package crowdsale

import (
	"context"
	"fmt"

	"github.com/ardanlabs/crowdsale/foundation/account"
)

// BuyTokens records a contribution from the caller. The sale must be open.
// A contribution that takes the total past the hard cap is accepted in full
// and closes the sale.
func (s *Sale) BuyTokens(ctx context.Context, caller account.ID, value uint64) (Receipt, error) {
	return s.execute(OpBuyTokens, caller, func(status Status) (uint64, error) {
		if status != StatusOpen {
			return 0, ErrWrongStatus
		}

		if err := s.credit(caller, value); err != nil {
			return 0, err
		}

		if err := s.pay(ctx, caller, s.address, value); err != nil {
			return 0, err
		}

		return value, nil
	})
}

// GrantTokens records an allocation paid for by the owner on behalf of the
// specified account, regardless of the status. An empty to account grants
// the allocation to the owner.
func (s *Sale) GrantTokens(ctx context.Context, caller account.ID, to account.ID, value uint64) (Receipt, error) {
	return s.execute(OpGrantTokens, caller, func(status Status) (uint64, error) {
		if caller != s.owner {
			return 0, ErrUnauthorized
		}

		if to == "" {
			to = caller
		}
		if !to.IsID() || to.IsZero() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAccount, to)
		}

		if err := s.credit(to, value); err != nil {
			return 0, err
		}

		if err := s.pay(ctx, caller, s.address, value); err != nil {
			return 0, err
		}

		return value, nil
	})
}

// EscrowRefund pays the caller back their full allocation once the sale
// closed without reaching the soft cap. The allocation is zeroed before the
// value is sent.
func (s *Sale) EscrowRefund(ctx context.Context, caller account.ID) (Receipt, error) {
	return s.execute(OpEscrowRefund, caller, func(status Status) (uint64, error) {
		if status != StatusGoalNotReached {
			return 0, ErrWrongStatus
		}

		amount := s.ledger[caller]
		if amount == 0 {
			return 0, ErrInsufficientBalance
		}

		if s.escrow < amount {
			return 0, fmt.Errorf("%w: escrow holds %d, owed %d", ErrInsufficientBalance, s.escrow, amount)
		}

		s.setAllocation(caller, 0)
		s.setTotals(s.totalRaised-amount, s.escrow-amount)

		if err := s.pay(ctx, s.address, caller, amount); err != nil {
			return 0, err
		}

		return amount, nil
	})
}

// EscrowWithdraw pays the entire escrow to the beneficiary once the goal is
// reached. Allocations are not affected. Once the escrow is empty the call
// succeeds without moving any value.
func (s *Sale) EscrowWithdraw(ctx context.Context, caller account.ID) (Receipt, error) {
	return s.execute(OpEscrowWithdraw, caller, func(status Status) (uint64, error) {
		if status != StatusGoalReached {
			return 0, ErrWrongStatus
		}

		if caller != s.beneficiary && caller != s.owner {
			return 0, ErrUnauthorized
		}

		amount := s.escrow
		if amount == 0 {
			return 0, nil
		}

		s.setTotals(s.totalRaised, 0)

		if err := s.pay(ctx, s.address, s.beneficiary, amount); err != nil {
			return 0, err
		}

		return amount, nil
	})
}

// EscrowClaim assigns the specified amount of the caller's allocation to the
// beneficiary once the goal is reached. No value is moved.
func (s *Sale) EscrowClaim(ctx context.Context, caller account.ID, amount uint64) (Receipt, error) {
	return s.execute(OpEscrowClaim, caller, func(status Status) (uint64, error) {
		if status != StatusGoalReached {
			return 0, ErrWrongStatus
		}

		if amount == 0 {
			return 0, ErrZeroValue
		}

		balance := s.ledger[caller]
		if amount > balance {
			return 0, fmt.Errorf("%w: holds %d, claimed %d", ErrInsufficientBalance, balance, amount)
		}

		s.setAllocation(caller, balance-amount)
		s.setAllocation(s.beneficiary, s.ledger[s.beneficiary]+amount)

		s.emit(transferEvent(caller, s.beneficiary, amount))
		s.emit(claimEvent(caller, amount))

		return amount, nil
	})
}

// AlterGoal replaces the goal while the outcome of the sale is still open.
// The goal is not validated; keeping min at or below max is the owner's
// responsibility.
func (s *Sale) AlterGoal(ctx context.Context, caller account.ID, goalMin uint64, goalMax uint64) (Receipt, error) {
	return s.execute(OpAlterGoal, caller, func(status Status) (uint64, error) {
		if caller != s.owner {
			return 0, ErrUnauthorized
		}

		if status.Terminal() {
			return 0, ErrWrongStatus
		}

		goal := Goal{Min: goalMin, Max: goalMax}
		s.setGoal(goal)
		s.emit(goalChangeEvent(goal))

		return 0, nil
	})
}

// =============================================================================

// execute runs an operation as a single unit. The status is derived once
// before the operation starts. Any error reverts every change the operation
// made, including the changes of nested operations.
func (s *Sale) execute(op Op, caller account.ID, fn func(status Status) (uint64, error)) (Receipt, error) {
	status := s.Status()

	snapshot := s.journal.Enter()
	mark := len(s.events)

	value, err := fn(status)
	if err != nil {
		s.journal.Exit(snapshot, err)
		s.evHandler("crowdsale: %s: rejected: caller[%s] status[%s]: %s", op, caller, status, err)
		return Receipt{}, &CallError{Op: op, Caller: caller, Status: status, Err: err}
	}

	events := make([]Event, len(s.events)-mark)
	copy(events, s.events[mark:])

	if s.journal.Exit(snapshot, nil) {
		s.events = s.events[:0]
	}

	rcpt := Receipt{
		Op:     op,
		Caller: caller,
		Value:  value,
		Status: s.Status(),
		Events: events,
	}

	s.evHandler("crowdsale: %s: caller[%s] value[%d] status[%s->%s]", op, caller, value, status, rcpt.Status)

	return rcpt, nil
}

// credit adds a newly paid for allocation to the ledger and escrow.
func (s *Sale) credit(to account.ID, value uint64) error {
	if value == 0 {
		return ErrZeroValue
	}

	balance, err := add(s.ledger[to], value)
	if err != nil {
		return err
	}

	total, err := add(s.totalRaised, value)
	if err != nil {
		return err
	}

	escrow, err := add(s.escrow, value)
	if err != nil {
		return err
	}

	s.setAllocation(to, balance)
	s.setTotals(total, escrow)
	s.emit(transferEvent(account.Zero, to, value))

	return nil
}

// pay moves value through the bank. This is always the last step of an
// operation.
func (s *Sale) pay(ctx context.Context, from account.ID, to account.ID, amount uint64) error {
	if err := s.bank.Transfer(ctx, from, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransfer, err)
	}
	return nil
}
