package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/business/web/errs"
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
)

// balance is the account view returned by the service.
type balance struct {
	Account       account.ID `json:"account"`
	Name          string     `json:"name"`
	Allocation    uint64     `json:"allocation"`
	RefundBalance uint64     `json:"refund_balance"`
	Native        uint64     `json:"native_balance"`
	Nonce         uint64     `json:"nonce"`
}

// client talks to the sale service.
type client struct {
	url  string
	http *http.Client
}

func newClient(url string) client {
	return client{
		url:  url,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c client) status() (crowdsale.Summary, error) {
	var sum crowdsale.Summary
	err := c.do(http.MethodGet, "/v1/sale/status", nil, &sum)
	return sum, err
}

func (c client) balance(id account.ID) (balance, error) {
	var bal balance
	err := c.do(http.MethodGet, fmt.Sprintf("/v1/sale/balances/%s", id), nil, &bal)
	return bal, err
}

func (c client) submit(sc sale.SignedCall) (crowdsale.Receipt, error) {
	var receipt crowdsale.Receipt
	err := c.do(http.MethodPost, "/v1/sale/calls", sc, &receipt)
	return receipt, err
}

func (c client) do(method string, path string, body any, resp any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.url+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	r, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		var er errs.Response
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			return fmt.Errorf("status %d", r.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("status %d: %s: %v", r.StatusCode, er.Error, er.Fields)
		}
		return fmt.Errorf("status %d: %s", r.StatusCode, er.Error)
	}

	return json.NewDecoder(r.Body).Decode(resp)
}
