package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ardanlabs/conf/v3"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeyStore imports the named key file into an encrypted keystore so the key
// can be used with standard Ethereum tooling.
func KeyStore(args conf.Args, keyFolder string, keyStore string) error {
	name := args.Num(1)
	pass := args.Num(2)
	if name == "" || pass == "" {
		return errors.New("keystore requires a key name and a passphrase")
	}

	privateKey, err := crypto.LoadECDSA(filepath.Join(keyFolder, name+".ecdsa"))
	if err != nil {
		return err
	}

	ks := keystore.NewKeyStore(keyStore, keystore.StandardScryptN, keystore.StandardScryptP)
	acc, err := ks.ImportECDSA(privateKey, pass)
	if err != nil {
		return err
	}

	fmt.Printf("Account imported: %s\n%s\n", acc.Address.Hex(), acc.URL.Path)
	return nil
}
