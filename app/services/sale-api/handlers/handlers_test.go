package handlers_test

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/crowdsale/app/services/sale-api/handlers"
	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/business/core/sale/storage/memory"
	"github.com/ardanlabs/crowdsale/business/web/errs"
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
	"github.com/ardanlabs/crowdsale/foundation/events"
	"github.com/ardanlabs/crowdsale/foundation/genesis"
	"github.com/ardanlabs/crowdsale/foundation/nameservice"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const (
	success = "\u2713"
	failed  = "\u2717"
)

const pavelKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"

type apiTest struct {
	app http.Handler
	key *ecdsa.PrivateKey
}

func newAPITest(t *testing.T) apiTest {
	key, err := crypto.HexToECDSA(pavelKey)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the key: %v", failed, err)
	}
	pavel := account.FromPublicKey(key.PublicKey)

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "pavel.ecdsa"), []byte(pavelKey), 0600); err != nil {
		t.Fatalf("\t%s\tShould be able to write the key file: %v", failed, err)
	}
	ns, err := nameservice.New(root)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to load the name service: %v", failed, err)
	}

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
	}

	openTime := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	gen := genesis.Genesis{
		Owner:     string(pavel),
		OpenTime:  openTime,
		CloseTime: openTime.Add(30 * 24 * time.Hour),
		GoalMin:   100,
		GoalMax:   1000,
		Balances:  map[string]uint64{string(pavel): 5000},
	}

	evts := events.New()
	state, err := sale.New(sale.Config{
		Genesis: gen,
		Storage: strg,
		Events:  evts,
		Now:     func() time.Time { return openTime.Add(time.Hour) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the sale: %v", failed, err)
	}

	app := handlers.APIMux(handlers.APIMuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    state,
		NS:       ns,
		Evts:     evts,
	})

	return apiTest{app: app, key: key}
}

func (at apiTest) do(t *testing.T, method string, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("\t%s\tShould be able to encode the body: %v", failed, err)
		}
	}

	r := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	at.app.ServeHTTP(w, r)

	return w
}

func (at apiTest) sign(t *testing.T, call sale.Call) sale.SignedCall {
	sc, err := call.Sign(at.key)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to sign the call: %v", failed, err)
	}
	return sc
}

// =============================================================================

func Test_SaleAPI(t *testing.T) {
	at := newAPITest(t)

	t.Log("Given the need to drive the sale over http.")
	{
		w := at.do(t, http.MethodGet, "/v1/sale/status", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould get a 200 for the status: %d", failed, w.Code)
		}
		var sum crowdsale.Summary
		if err := json.NewDecoder(w.Body).Decode(&sum); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the summary: %v", failed, err)
		}
		if sum.Status != crowdsale.StatusOpen {
			t.Fatalf("\t%s\tShould be open, got %s.", failed, sum.Status)
		}
		t.Logf("\t%s\tShould report the sale open.", success)

		w = at.do(t, http.MethodPost, "/v1/sale/calls", at.sign(t, sale.Call{Nonce: 1, Op: crowdsale.OpBuyTokens, Value: 150}))
		if w.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould get a 200 for a purchase: %d: %s", failed, w.Code, w.Body.String())
		}
		var receipt crowdsale.Receipt
		if err := json.NewDecoder(w.Body).Decode(&receipt); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the receipt: %v", failed, err)
		}
		if receipt.Value != 150 || len(receipt.Find(crowdsale.EventTransfer)) != 1 {
			t.Fatalf("\t%s\tShould get the purchase receipt: %+v", failed, receipt)
		}
		t.Logf("\t%s\tShould be able to buy tokens.", success)

		w = at.do(t, http.MethodGet, "/v1/sale/balances/pavel", nil)
		var bal struct {
			Name       string `json:"name"`
			Allocation uint64 `json:"allocation"`
			Native     uint64 `json:"native_balance"`
			Nonce      uint64 `json:"nonce"`
		}
		if err := json.NewDecoder(w.Body).Decode(&bal); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the balance: %v", failed, err)
		}
		if bal.Name != "pavel" || bal.Allocation != 150 || bal.Native != 4850 || bal.Nonce != 1 {
			t.Fatalf("\t%s\tShould get pavel's balance: %+v", failed, bal)
		}
		t.Logf("\t%s\tShould be able to look up a balance by name.", success)

		type errTable struct {
			name   string
			body   any
			status int
			field  string
		}

		et := []errTable{
			{name: "reused nonce", body: at.sign(t, sale.Call{Nonce: 1, Op: crowdsale.OpBuyTokens, Value: 1}), status: http.StatusBadRequest},
			{name: "claim while open", body: at.sign(t, sale.Call{Nonce: 2, Op: crowdsale.OpEscrowClaim, Amount: 1}), status: http.StatusConflict},
			{name: "unknown op", body: map[string]any{"nonce": 3, "op": "mint"}, status: http.StatusBadRequest, field: "op"},
			{name: "unknown field", body: map[string]any{"nonce": 3, "op": "buyTokens", "tip": 1}, status: http.StatusBadRequest},
		}

		for _, tst := range et {
			w := at.do(t, http.MethodPost, "/v1/sale/calls", tst.body)
			if w.Code != tst.status {
				t.Fatalf("\t%s\t%s: Should get a %d, got %d: %s", failed, tst.name, tst.status, w.Code, w.Body.String())
			}

			var resp errs.Response
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\t%s: Should be able to decode the error: %v", failed, tst.name, err)
			}
			if tst.field != "" {
				if _, exists := resp.Fields[tst.field]; !exists {
					t.Fatalf("\t%s\t%s: Should report field %q: %+v", failed, tst.name, tst.field, resp)
				}
			}
			t.Logf("\t%s\t%s: Should get a %d.", success, tst.name, tst.status)
		}

		w = at.do(t, http.MethodGet, "/v1/sale/records", nil)
		var recs []struct {
			Number   uint64 `json:"number"`
			FromName string `json:"from_name"`
			Op       string `json:"op"`
		}
		if err := json.NewDecoder(w.Body).Decode(&recs); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the records: %v", failed, err)
		}
		if len(recs) != 2 || recs[1].Op != string(crowdsale.OpEscrowClaim) || recs[0].FromName != "pavel" {
			t.Fatalf("\t%s\tShould record the purchase and the rejected claim: %+v", failed, recs)
		}
		t.Logf("\t%s\tShould list the recorded calls.", success)

		w = at.do(t, http.MethodGet, "/v1/sale/ledger", nil)
		var ledger []json.RawMessage
		if err := json.NewDecoder(w.Body).Decode(&ledger); err != nil || len(ledger) != 1 {
			t.Fatalf("\t%s\tShould list a single allocation: %d: %v", failed, len(ledger), err)
		}
		t.Logf("\t%s\tShould list the ledger.", success)

		w = at.do(t, http.MethodGet, "/", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "OPEN") {
			t.Fatalf("\t%s\tShould render the viewer page: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould render the viewer page.", success)

		w = at.do(t, http.MethodGet, "/v1/sale/balances/bill", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould get a 400 for an unknown account: %d", failed, w.Code)
		}
		t.Logf("\t%s\tShould get a 400 for an unknown account.", success)
	}
}
