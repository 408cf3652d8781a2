// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/crowdsale/app/services/sale-api/handlers/v1/salegrp"
	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/foundation/events"
	"github.com/ardanlabs/crowdsale/foundation/nameservice"
	"github.com/ardanlabs/crowdsale/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *sale.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	sgh := salegrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", sgh.Events)
	app.Handle(http.MethodGet, version, "/sale/genesis", sgh.Genesis)
	app.Handle(http.MethodGet, version, "/sale/status", sgh.Status)
	app.Handle(http.MethodGet, version, "/sale/ledger", sgh.Ledger)
	app.Handle(http.MethodGet, version, "/sale/balances/:account", sgh.Balance)
	app.Handle(http.MethodGet, version, "/sale/records", sgh.Records)
	app.Handle(http.MethodPost, version, "/sale/calls", sgh.SubmitCall)
}
