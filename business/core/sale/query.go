package sale

import (
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/bank"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
	"github.com/ardanlabs/crowdsale/foundation/genesis"
)

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// Summary returns a view of the sale at the current time.
func (s *State) Summary() crowdsale.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sale.Summary()
}

// Status returns the status of the sale at the current time.
func (s *State) Status() crowdsale.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sale.Status()
}

// BalanceOf returns the allocation held by the account.
func (s *State) BalanceOf(id account.ID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sale.BalanceOf(id)
}

// RefundBalance returns what the account could claim back right now.
func (s *State) RefundBalance(id account.ID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sale.RefundBalance(id)
}

// Ledger returns a copy of every allocation.
func (s *State) Ledger() map[account.ID]uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sale.Ledger()
}

// Account returns the native balance and nonce for the account.
func (s *State) Account(id account.ID) bank.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bank.Query(id)
}

// Accounts returns a copy of the native balances and nonces.
func (s *State) Accounts() map[account.ID]bank.Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bank.Copy()
}

// LatestRecord returns the last record written.
func (s *State) LatestRecord() Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latest
}

// Records returns the records in the specified range, inclusive. A to of 0
// means through the latest record.
func (s *State) Records(from uint64, to uint64) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if from == 0 {
		from = 1
	}
	if to == 0 || to > s.latest.Number {
		to = s.latest.Number
	}

	var out []Record
	for num := from; num <= to; num++ {
		rec, err := s.storage.GetRecord(num)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, nil
}
