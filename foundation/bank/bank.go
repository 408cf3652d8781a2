// Package bank maintains the native value held by every account and moves
// value between accounts. A recipient can register a receive hook that runs
// as part of a transfer paid to it, which may call back into the system.
package bank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/journal"
)

// ErrInsufficientFunds is returned when the paying account does not hold
// enough value for the transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Info represents the information stored for an individual account.
type Info struct {
	Balance uint64
	Nonce   uint64
}

// Receiver is run when value is transferred to the account it is registered
// for. Returning an error fails the transfer and reverts every change made
// since the transfer started, including changes made by the receiver.
type Receiver func(ctx context.Context, from account.ID, amount uint64) error

// Bank manages the native balances of all accounts. Mutating calls must be
// serialized by the caller. Reads are safe for concurrent use.
type Bank struct {
	mu        sync.RWMutex
	info      map[account.ID]Info
	receivers map[account.ID]Receiver
	journal   journal.Journal
}

// New constructs a bank with the specified starting balances.
func New(balances map[account.ID]uint64) *Bank {
	b := Bank{
		info:      make(map[account.ID]Info),
		receivers: make(map[account.ID]Receiver),
	}

	for id, balance := range balances {
		b.info[id] = Info{Balance: balance}
	}

	return &b
}

// Register sets the receive hook for the specified account.
func (b *Bank) Register(id account.ID, r Receiver) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.receivers[id] = r
}

// Unregister removes the receive hook for the specified account.
func (b *Bank) Unregister(id account.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.receivers, id)
}

// Transfer moves value between two accounts. The receive hook of the
// recipient runs after the balances are updated and without any lock held.
func (b *Bank) Transfer(ctx context.Context, from account.ID, to account.ID, amount uint64) (err error) {
	if from == to {
		return fmt.Errorf("sending value to yourself, from %s, to %s", from, to)
	}

	snapshot := b.journal.Enter()
	defer func() {
		b.journal.Exit(snapshot, err)
	}()

	if err := b.move(from, to, amount); err != nil {
		return err
	}

	b.mu.RLock()
	recv := b.receivers[to]
	b.mu.RUnlock()

	if recv != nil {
		if err := recv(ctx, from, amount); err != nil {
			return fmt.Errorf("receiver %s rejected transfer: %w", to, err)
		}
	}

	return nil
}

// Balance returns the native balance of the specified account.
func (b *Bank) Balance(id account.ID) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.info[id].Balance
}

// Query returns the information for the specified account.
func (b *Bank) Query(id account.ID) Info {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.info[id]
}

// Copy makes a copy of the current information for all accounts.
func (b *Bank) Copy() map[account.ID]Info {
	b.mu.RLock()
	defer b.mu.RUnlock()

	accounts := make(map[account.ID]Info, len(b.info))
	for id, info := range b.info {
		accounts[id] = info
	}
	return accounts
}

// ValidateNonce validates the nonce is larger than the last nonce used by
// the account.
func (b *Bank) ValidateNonce(id account.ID, nonce uint64) error {
	b.mu.RLock()
	info := b.info[id]
	b.mu.RUnlock()

	if nonce <= info.Nonce {
		return fmt.Errorf("invalid nonce, got %d, exp > %d", nonce, info.Nonce)
	}

	return nil
}

// UpdateNonce records the nonce as the last one used by the account.
func (b *Bank) UpdateNonce(id account.ID, nonce uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	info := b.info[id]
	info.Nonce = nonce
	b.info[id] = info
}

// =============================================================================

// move updates both balances and journals the previous values.
func (b *Bank) move(from account.ID, to account.ID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	fromInfo := b.info[from]
	toInfo := b.info[to]

	if fromInfo.Balance < amount {
		return fmt.Errorf("%w, %s holds %d, needs %d", ErrInsufficientFunds, from, fromInfo.Balance, amount)
	}

	if toInfo.Balance > math.MaxUint64-amount {
		return fmt.Errorf("balance overflow for %s", to)
	}

	b.journal.Append(b.restore(from, fromInfo))
	b.journal.Append(b.restore(to, toInfo))

	fromInfo.Balance -= amount
	toInfo.Balance += amount

	b.info[from] = fromInfo
	b.info[to] = toInfo

	return nil
}

// restore returns an undo action that puts back the balance of an account.
// Nonces are never journaled since they are updated outside of transfers.
func (b *Bank) restore(id account.ID, prev Info) func() {
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		info := b.info[id]
		info.Balance = prev.Balance
		b.info[id] = info
	}
}
