package crowdsale

import "github.com/ardanlabs/crowdsale/foundation/account"

// EventKind names the kind of event emitted by an operation.
type EventKind string

// Set of events a sale can emit. Approval is part of the token surface but
// nothing in the sale emits it.
const (
	EventTransfer   EventKind = "Transfer"
	EventApproval   EventKind = "Approval"
	EventClaim      EventKind = "Claim"
	EventGoalChange EventKind = "GoalChange"
)

// Event is an audit record produced by a successful operation.
type Event struct {
	Kind              EventKind  `json:"event"`
	From              account.ID `json:"from,omitempty"`
	To                account.ID `json:"to,omitempty"`
	Beneficiary       account.ID `json:"beneficiary,omitempty"`
	Value             uint64     `json:"value,omitempty"`
	GoalLimitMinInWei uint64     `json:"goal_limit_min_in_wei,omitempty"`
	GoalLimitMaxInWei uint64     `json:"goal_limit_max_in_wei,omitempty"`
}

func transferEvent(from account.ID, to account.ID, value uint64) Event {
	return Event{Kind: EventTransfer, From: from, To: to, Value: value}
}

func claimEvent(beneficiary account.ID, value uint64) Event {
	return Event{Kind: EventClaim, Beneficiary: beneficiary, Value: value}
}

func goalChangeEvent(goal Goal) Event {
	return Event{Kind: EventGoalChange, GoalLimitMinInWei: goal.Min, GoalLimitMaxInWei: goal.Max}
}

// =============================================================================

// Op names an operation that can be performed against the sale.
type Op string

// Set of operations that mutate the sale.
const (
	OpBuyTokens      Op = "buyTokens"
	OpGrantTokens    Op = "grantTokens"
	OpEscrowRefund   Op = "escrowRefund"
	OpEscrowWithdraw Op = "escrowWithdraw"
	OpEscrowClaim    Op = "escrowClaim"
	OpAlterGoal      Op = "alterGoal"
)

// Receipt describes the outcome of a successful operation. Events include
// the events of any nested operation that completed inside it.
type Receipt struct {
	Op     Op         `json:"op"`
	Caller account.ID `json:"caller"`
	Value  uint64     `json:"value"`
	Status Status     `json:"status"`
	Events []Event    `json:"events"`
}

// Find returns the events of the specified kind in the order emitted.
func (r Receipt) Find(kind EventKind) []Event {
	var out []Event
	for _, evt := range r.Events {
		if evt.Kind == kind {
			out = append(out, evt)
		}
	}
	return out
}
