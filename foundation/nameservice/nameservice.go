// Package nameservice reads the zblock/accounts folder and creates a name
// service lookup for the sale accounts.
package nameservice

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ethereum/go-ethereum/crypto"
)

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[account.ID]string
}

// New constructs a name service with accounts from the key files found
// under the root folder.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[account.ID]string),
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		privateKey, err := crypto.LoadECDSA(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		id := account.FromPublicKey(privateKey.PublicKey)
		ns.accounts[id] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified account.
func (ns *NameService) Lookup(id account.ID) string {
	name, exists := ns.accounts[id]
	if !exists {
		return string(id)
	}
	return name
}

// Resolve returns the account for the specified name. The name may also be
// an account id.
func (ns *NameService) Resolve(name string) (account.ID, error) {
	for id, n := range ns.accounts {
		if n == name {
			return id, nil
		}
	}

	return account.ToID(name)
}

// Copy returns a copy of the map of names and accounts.
func (ns *NameService) Copy() map[account.ID]string {
	cpy := make(map[account.ID]string, len(ns.accounts))
	for id, name := range ns.accounts {
		cpy[id] = name
	}
	return cpy
}
