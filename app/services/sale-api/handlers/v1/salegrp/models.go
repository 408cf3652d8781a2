package salegrp

import (
	"math/big"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
)

// callRequest is the wire form of a signed call.
type callRequest struct {
	Nonce   uint64   `json:"nonce"`
	Op      string   `json:"op" validate:"required,oneof=buyTokens grantTokens escrowRefund escrowWithdraw escrowClaim alterGoal deposit"`
	Value   uint64   `json:"value,omitempty"`
	Amount  uint64   `json:"amount,omitempty"`
	To      string   `json:"to,omitempty" validate:"omitempty,account"`
	GoalMin uint64   `json:"goal_min,omitempty"`
	GoalMax uint64   `json:"goal_max,omitempty"`
	V       *big.Int `json:"v"`
	R       *big.Int `json:"r"`
	S       *big.Int `json:"s"`
}

func (cr callRequest) toSignedCall() sale.SignedCall {
	return sale.SignedCall{
		Call: sale.Call{
			Nonce:   cr.Nonce,
			Op:      crowdsale.Op(cr.Op),
			Value:   cr.Value,
			Amount:  cr.Amount,
			To:      account.ID(cr.To),
			GoalMin: cr.GoalMin,
			GoalMax: cr.GoalMax,
		},
		V: cr.V,
		R: cr.R,
		S: cr.S,
	}
}

// balance is the view of a single account in the sale.
type balance struct {
	Account       account.ID `json:"account"`
	Name          string     `json:"name"`
	Allocation    uint64     `json:"allocation"`
	RefundBalance uint64     `json:"refund_balance"`
	Native        uint64     `json:"native_balance"`
	Nonce         uint64     `json:"nonce"`
}

// record is the view of a stored call.
type record struct {
	Number    uint64       `json:"number"`
	Hash      string       `json:"hash"`
	PrevHash  string       `json:"prev_hash"`
	TimeStamp string       `json:"timestamp"`
	From      account.ID   `json:"from"`
	FromName  string       `json:"from_name"`
	Op        crowdsale.Op `json:"op"`
	Nonce     uint64       `json:"nonce"`
	Value     uint64       `json:"value,omitempty"`
	Amount    uint64       `json:"amount,omitempty"`
	To        account.ID   `json:"to,omitempty"`
	GoalMin   uint64       `json:"goal_min,omitempty"`
	GoalMax   uint64       `json:"goal_max,omitempty"`
	Sig       string       `json:"sig"`
}
