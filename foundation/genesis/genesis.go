// Package genesis maintains access to the genesis file that defines a sale
// and the starting native balances of the accounts taking part in it.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/crowdsale/foundation/account"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date        time.Time         `json:"date"`
	Owner       string            `json:"owner"`       // Account that creates the sale and may alter the goal.
	Beneficiary string            `json:"beneficiary"` // Account that receives the escrow, defaults to the owner.
	OpenTime    time.Time         `json:"open_time"`   // Contributions accepted from this time, inclusive.
	CloseTime   time.Time         `json:"close_time"`  // Contributions accepted until this time, exclusive.
	GoalMin     uint64            `json:"goal_min"`    // Soft cap in the smallest unit of value.
	GoalMax     uint64            `json:"goal_max"`    // Hard cap in the smallest unit of value.
	Balances    map[string]uint64 `json:"balances"`    // Starting native balances.
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// OwnerID returns the validated owner account.
func (g Genesis) OwnerID() (account.ID, error) {
	return account.ToID(g.Owner)
}

// BeneficiaryID returns the validated beneficiary account, or an empty id
// when none is configured.
func (g Genesis) BeneficiaryID() (account.ID, error) {
	if g.Beneficiary == "" {
		return "", nil
	}
	return account.ToID(g.Beneficiary)
}

// AccountBalances returns the starting balances keyed by validated account.
func (g Genesis) AccountBalances() (map[account.ID]uint64, error) {
	balances := make(map[account.ID]uint64, len(g.Balances))
	for hex, balance := range g.Balances {
		id, err := account.ToID(hex)
		if err != nil {
			return nil, fmt.Errorf("genesis balance %q: %w", hex, err)
		}
		balances[id] = balance
	}
	return balances, nil
}
