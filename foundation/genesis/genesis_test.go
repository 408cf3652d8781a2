package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/crowdsale/foundation/genesis"
)

const doc = `{
	"date": "2026-01-01T00:00:00Z",
	"owner": "0xdd6b972ffcc631a62cae1bb9d80b7ff429c8eba4",
	"open_time": "2026-01-02T00:00:00Z",
	"close_time": "2026-02-02T00:00:00Z",
	"goal_min": 100,
	"goal_max": 1000,
	"balances": {
		"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4": 5000,
		"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32": 2500
	}
}`

func Test_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(doc), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %s", err)
	}

	gen, err := genesis.Load(path)
	if err != nil {
		t.Fatalf("Should be able to load the genesis file: %s", err)
	}

	owner, err := gen.OwnerID()
	if err != nil {
		t.Fatalf("Should be able to validate the owner: %s", err)
	}

	if owner != "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4" {
		t.Fatalf("Should normalize the owner, got %s", owner)
	}

	beneficiary, err := gen.BeneficiaryID()
	if err != nil || beneficiary != "" {
		t.Fatalf("Should not default the beneficiary here: %q %v", beneficiary, err)
	}

	balances, err := gen.AccountBalances()
	if err != nil {
		t.Fatalf("Should be able to validate the balances: %s", err)
	}

	if len(balances) != 2 || balances[owner] != 5000 {
		t.Fatalf("Should load the balances: %v", balances)
	}

	if gen.GoalMin != 100 || gen.GoalMax != 1000 || !gen.CloseTime.After(gen.OpenTime) {
		t.Fatalf("Should load the sale parameters: %+v", gen)
	}
}
