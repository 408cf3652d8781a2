package sale

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
	"github.com/ardanlabs/crowdsale/foundation/signature"
)

// OpDeposit moves native value straight to the sale address without
// touching the ledger.
const OpDeposit crowdsale.Op = "deposit"

// ops lists the operations a call may carry.
var ops = map[crowdsale.Op]bool{
	crowdsale.OpBuyTokens:      true,
	crowdsale.OpGrantTokens:    true,
	crowdsale.OpEscrowRefund:   true,
	crowdsale.OpEscrowWithdraw: true,
	crowdsale.OpEscrowClaim:    true,
	crowdsale.OpAlterGoal:      true,
	OpDeposit:                  true,
}

// =============================================================================

// Call is an operation an account wants performed against the sale.
type Call struct {
	Nonce   uint64       `json:"nonce"`              // Unique id for the call supplied by the caller.
	Op      crowdsale.Op `json:"op"`                 // Operation to perform.
	Value   uint64       `json:"value,omitempty"`    // Native value sent with buyTokens, grantTokens and deposit.
	Amount  uint64       `json:"amount,omitempty"`   // Allocation to move with escrowClaim.
	To      account.ID   `json:"to,omitempty"`       // Account receiving a grant.
	GoalMin uint64       `json:"goal_min,omitempty"` // New soft cap for alterGoal.
	GoalMax uint64       `json:"goal_max,omitempty"` // New hard cap for alterGoal.
}

// Sign uses the specified private key to sign the call.
func (c Call) Sign(privateKey *ecdsa.PrivateKey) (SignedCall, error) {
	if err := c.validate(); err != nil {
		return SignedCall{}, err
	}

	v, r, s, err := signature.Sign(c, privateKey)
	if err != nil {
		return SignedCall{}, err
	}

	signedCall := SignedCall{
		Call: c,
		V:    v,
		R:    r,
		S:    s,
	}

	return signedCall, nil
}

func (c Call) validate() error {
	if !ops[c.Op] {
		return fmt.Errorf("unknown operation %q", c.Op)
	}

	if c.To != "" && !c.To.IsID() {
		return errors.New("to account is not properly formatted")
	}

	return nil
}

// =============================================================================

// SignedCall is a signed version of the call. This is how clients like a
// wallet submit calls to the sale.
type SignedCall struct {
	Call
	V *big.Int `json:"v"` // Recovery identifier, either 31 or 32.
	R *big.Int `json:"r"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the call has a proper signature that conforms to our
// standards and is well formed.
func (sc SignedCall) Validate() error {
	if err := sc.validate(); err != nil {
		return err
	}

	if err := signature.VerifySignature(sc.V, sc.R, sc.S); err != nil {
		return err
	}

	return nil
}

// FromAccount extracts the account id that signed the call.
func (sc SignedCall) FromAccount() (account.ID, error) {
	address, err := signature.FromAddress(sc.Call, sc.V, sc.R, sc.S)
	if err != nil {
		return "", err
	}

	return account.ToID(address)
}

// SignatureString returns the signature as a string.
func (sc SignedCall) SignatureString() string {
	return signature.SignatureString(sc.V, sc.R, sc.S)
}

// String implements the fmt.Stringer interface for logging.
func (sc SignedCall) String() string {
	from, err := sc.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%s:%d", from, sc.Op, sc.Nonce)
}
