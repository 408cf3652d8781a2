// Package account provides support for the account identifiers used by the
// crowdsale. An account id is a 20 byte hex encoded address.
package account

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ID represents an account that can contribute, receive refunds, or own and
// benefit from a sale.
type ID string

// Zero is the sentinel account used as the source of newly minted
// allocations.
const Zero ID = "0x0000000000000000000000000000000000000000"

// ToID converts a hex-encoded string to an account id and validates the
// hex-encoded string is formatted correctly. The returned id is always in
// checksum form so two ids for the same address compare equal.
func ToID(hex string) (ID, error) {
	if !ID(hex).IsID() {
		return "", errors.New("invalid account format")
	}

	return ID(common.HexToAddress(hex).Hex()), nil
}

// FromPublicKey converts the public key to an account id.
func FromPublicKey(pk ecdsa.PublicKey) ID {
	return ID(crypto.PubkeyToAddress(pk).Hex())
}

// Contract derives the account id for a sale created by the specified
// account. This is the same derivation Ethereum uses for contract addresses.
func Contract(creator ID, nonce uint64) ID {
	return ID(crypto.CreateAddress(common.HexToAddress(string(creator)), nonce).Hex())
}

// IsID verifies whether the underlying data represents a valid hex-encoded
// account id.
func (id ID) IsID() bool {
	const addressLength = 20

	if has0xPrefix(id) {
		id = id[2:]
	}

	return len(id) == 2*addressLength && isHex(id)
}

// IsZero reports whether the id is the zero sentinel.
func (id ID) IsZero() bool {
	return common.HexToAddress(string(id)) == common.Address{}
}

// =============================================================================

// has0xPrefix validates the account starts with a 0x.
func has0xPrefix(id ID) bool {
	return len(id) >= 2 && id[0] == '0' && (id[1] == 'x' || id[1] == 'X')
}

// isHex validates whether each byte is valid hexadecimal string.
func isHex(id ID) bool {
	if len(id)%2 != 0 {
		return false
	}

	for _, c := range []byte(id) {
		if !isHexCharacter(c) {
			return false
		}
	}

	return true
}

// isHexCharacter returns bool of c being a valid hexadecimal.
func isHexCharacter(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
