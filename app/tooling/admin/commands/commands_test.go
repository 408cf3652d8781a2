package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/conf/v3"
	"go.uber.org/zap"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

const genesisJSON = `{
	"owner": "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4",
	"open_time": "2026-10-01T00:00:00Z",
	"close_time": "2026-10-31T00:00:00Z",
	"goal_min": 100,
	"goal_max": 500,
	"balances": {"0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4": 1000}
}`

func Test_Commands(t *testing.T) {
	t.Log("Given the need to inspect a record store offline.")
	{
		root := t.TempDir()
		genPath := filepath.Join(root, "genesis.json")
		if err := os.WriteFile(genPath, []byte(genesisJSON), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the genesis file: %v", failed, err)
		}

		if _, err := (Store{Kind: "memory"}).open(); err == nil {
			t.Fatalf("\t%s\tShould refuse to inspect a memory store.", failed)
		}
		t.Logf("\t%s\tShould refuse to inspect a memory store.", success)

		for _, kind := range []string{"disk", "leveldb"} {
			store := Store{
				Kind:        kind,
				DBPath:      filepath.Join(root, kind),
				GenesisPath: genPath,
			}

			if err := Records(conf.Args{"records", "1", "10"}, store); err != nil {
				t.Fatalf("\t%s\t%s: Should be able to list an empty store: %v", failed, kind, err)
			}
			t.Logf("\t%s\t%s: Should be able to list an empty store.", success, kind)

			if err := Records(conf.Args{"records", "one"}, store); err == nil {
				t.Fatalf("\t%s\t%s: Should reject a bad range.", failed, kind)
			}
			t.Logf("\t%s\t%s: Should reject a bad range.", success, kind)

			if err := Ledger(zap.NewNop().Sugar(), store); err != nil {
				t.Fatalf("\t%s\t%s: Should be able to replay an empty store: %v", failed, kind, err)
			}
			t.Logf("\t%s\t%s: Should be able to replay an empty store.", success, kind)
		}
	}
}
