package commands

import (
	"fmt"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/foundation/genesis"
	"go.uber.org/zap"
)

// Ledger replays the stored calls against the genesis sale, which also
// verifies the record chain, and prints the result.
func Ledger(log *zap.SugaredLogger, store Store) error {
	gen, err := genesis.Load(store.GenesisPath)
	if err != nil {
		return err
	}

	strg, err := store.open()
	if err != nil {
		return err
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	state, err := sale.New(sale.Config{
		Genesis:   gen,
		Storage:   strg,
		EvHandler: ev,
	})
	if err != nil {
		strg.Close()
		return err
	}
	defer state.Shutdown()

	sum := state.Summary()
	fmt.Printf("Records:      %d\n", state.LatestRecord().Number)
	fmt.Printf("Latest Hash:  %s\n", state.LatestRecord().Hash())
	fmt.Printf("Status:       %s\n", sum.Status)
	fmt.Printf("Goal:         %d - %d\n", sum.Goal.Min, sum.Goal.Max)
	fmt.Printf("Total Raised: %d\n", sum.TotalRaised)
	fmt.Printf("Escrow:       %d\n\n", sum.Escrow)

	for id, amount := range state.Ledger() {
		fmt.Printf("Allocation: %s  %d\n", id, amount)
	}
	fmt.Println()

	for id, info := range state.Accounts() {
		fmt.Printf("Account: %s  Balance: %d  Nonce: %d\n", id, info.Balance, info.Nonce)
	}

	return nil
}
