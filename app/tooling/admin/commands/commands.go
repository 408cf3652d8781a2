// Package commands contains the functionality for the set of commands
// currently supported by the admin tooling.
package commands

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/business/core/sale/storage/disk"
	"github.com/ardanlabs/crowdsale/business/core/sale/storage/leveldb"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Store identifies the record store and genesis file to work against.
type Store struct {
	Kind        string
	DBPath      string
	GenesisPath string
}

func (s Store) open() (sale.Storage, error) {
	switch s.Kind {
	case "disk":
		return disk.New(s.DBPath)
	case "leveldb":
		return leveldb.New(s.DBPath)
	}

	return nil, fmt.Errorf("storage %q can't be inspected offline", s.Kind)
}
