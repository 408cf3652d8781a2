package cmd

import (
	"fmt"

	"github.com/ardanlabs/crowdsale/business/core/sale"
	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/ardanlabs/crowdsale/foundation/crowdsale"
	"github.com/spf13/cobra"
)

var (
	nonce   uint64
	value   uint64
	amount  uint64
	to      string
	goalMin uint64
	goalMax uint64
)

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Contribute value to the sale.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitCall(sale.Call{Op: crowdsale.OpBuyTokens, Value: value})
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Owner only: pay for an allocation on behalf of an account.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitCall(sale.Call{Op: crowdsale.OpGrantTokens, Value: value, To: account.ID(to)})
	},
}

var refundCmd = &cobra.Command{
	Use:   "refund",
	Short: "Take back your contribution after a failed sale.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitCall(sale.Call{Op: crowdsale.OpEscrowRefund})
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Pay the escrow to the beneficiary after a successful sale.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitCall(sale.Call{Op: crowdsale.OpEscrowWithdraw})
	},
}

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Move part of your allocation to the beneficiary after a successful sale.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitCall(sale.Call{Op: crowdsale.OpEscrowClaim, Amount: amount})
	},
}

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Owner only: change the goal range before the sale ends.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitCall(sale.Call{Op: crowdsale.OpAlterGoal, GoalMin: goalMin, GoalMax: goalMax})
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Send value to the sale address without buying.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitCall(sale.Call{Op: sale.OpDeposit, Value: value})
	},
}

func init() {
	for _, c := range []*cobra.Command{buyCmd, grantCmd, refundCmd, withdrawCmd, claimCmd, goalCmd, depositCmd} {
		c.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce for the call, the next nonce is looked up when 0.")
		rootCmd.AddCommand(c)
	}

	buyCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to contribute.")
	grantCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to allocate.")
	grantCmd.Flags().StringVarP(&to, "to", "t", "", "Account receiving the allocation, defaults to the owner.")
	claimCmd.Flags().Uint64VarP(&amount, "amount", "m", 0, "Allocation to claim.")
	goalCmd.Flags().Uint64Var(&goalMin, "min", 0, "New soft cap.")
	goalCmd.Flags().Uint64Var(&goalMax, "max", 0, "New hard cap.")
	depositCmd.Flags().Uint64VarP(&value, "value", "v", 0, "Value to send.")
}

func submitCall(call sale.Call) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	cln := newClient(url)

	call.Nonce = nonce
	if call.Nonce == 0 {
		bal, err := cln.balance(account.FromPublicKey(privateKey.PublicKey))
		if err != nil {
			return err
		}
		call.Nonce = bal.Nonce + 1
	}

	signedCall, err := call.Sign(privateKey)
	if err != nil {
		return err
	}

	receipt, err := cln.submit(signedCall)
	if err != nil {
		return err
	}

	fmt.Printf("%s: value[%d] status[%s]\n", receipt.Op, receipt.Value, receipt.Status)
	for _, evt := range receipt.Events {
		fmt.Printf("  %s %+v\n", evt.Kind, evt)
	}

	return nil
}
