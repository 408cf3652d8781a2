// Package viewgrp serves a single page that shows the sale and streams
// committed receipts from the events socket.
package viewgrp

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/foundation/web"
)

//go:embed views/index.html
var views embed.FS

var index = template.Must(template.ParseFS(views, "views/index.html"))

// Handlers manages the viewer page.
type Handlers struct {
	State *sale.State
}

// Index renders the sale summary and ledger.
func (h Handlers) Index(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	data := struct {
		Summary any
		Ledger  any
		Records uint64
	}{
		Summary: h.State.Summary(),
		Ledger:  h.State.Ledger(),
		Records: h.State.LatestRecord().Number,
	}

	if err := web.SetStatusCode(ctx, http.StatusOK); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := index.Execute(w, data); err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}

	return nil
}
