// Package salegrp maintains the group of handlers for sale access.
package salegrp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/business/sys/validate"
	"github.com/ardanlabs/crowdsale/business/web/errs"
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/events"
	"github.com/ardanlabs/crowdsale/foundation/nameservice"
	"github.com/ardanlabs/crowdsale/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of sale endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *sale.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide committed receipts to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			data, err := json.Marshal(msg)
			if err != nil {
				return err
			}

			if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitCall executes a signed call against the sale.
func (h Handlers) SubmitCall(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req callRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	signedCall := req.toSignedCall()

	h.Log.Infow("submit call", "traceid", v.TraceID, "from:op:nonce", signedCall, "value", signedCall.Value, "amount", signedCall.Amount)

	receipt, err := h.State.SubmitCall(ctx, signedCall)
	if err != nil {
		if errors.Is(err, sale.ErrInvalidCall) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}
		return errs.FromCall(err)
	}

	return web.Respond(ctx, w, receipt, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Genesis(), http.StatusOK)
}

// Status returns the summary of the sale at the current time.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.Summary(), http.StatusOK)
}

// Ledger returns every allocation held in the sale.
func (h Handlers) Ledger(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ledger := h.State.Ledger()

	out := make([]balance, 0, len(ledger))
	for id := range ledger {
		out = append(out, h.balance(id))
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// Balance returns the allocation and native account of a single account.
// The account may be given as a name known to the name service.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := h.NS.Resolve(web.Param(r, "account"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, h.balance(id), http.StatusOK)
}

// Records returns the stored calls. The range is selected with the from and
// to query parameters.
func (h Handlers) Records(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	from, err := queryUint(r, "from")
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}
	to, err := queryUint(r, "to")
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	recs, err := h.State.Records(from, to)
	if err != nil {
		return err
	}

	out := make([]record, len(recs))
	for i, rec := range recs {
		caller, err := rec.Call.FromAccount()
		if err != nil {
			caller = "unknown"
		}

		out[i] = record{
			Number:    rec.Number,
			Hash:      rec.Hash(),
			PrevHash:  rec.PrevHash,
			TimeStamp: rec.Time().Format(time.RFC3339Nano),
			From:      caller,
			FromName:  h.NS.Lookup(caller),
			Op:        rec.Call.Op,
			Nonce:     rec.Call.Nonce,
			Value:     rec.Call.Value,
			Amount:    rec.Call.Amount,
			To:        rec.Call.To,
			GoalMin:   rec.Call.GoalMin,
			GoalMax:   rec.Call.GoalMax,
			Sig:       rec.Call.SignatureString(),
		}
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// =============================================================================

func (h Handlers) balance(id account.ID) balance {
	info := h.State.Account(id)

	return balance{
		Account:       id,
		Name:          h.NS.Lookup(id),
		Allocation:    h.State.BalanceOf(id),
		RefundBalance: h.State.RefundBalance(id),
		Native:        info.Balance,
		Nonce:         info.Nonce,
	}
}

func queryUint(r *http.Request, key string) (uint64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter %q", key, s)
	}

	return n, nil
}
