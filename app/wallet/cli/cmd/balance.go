package cmd

import (
	"fmt"

	"github.com/ardanlabs/crowdsale/foundation/account"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print your allocation and native balance.",
	RunE:  balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) error {
	privateKey, err := loadPrivateKey()
	if err != nil {
		return err
	}

	id := account.FromPublicKey(privateKey.PublicKey)
	fmt.Println("For Account:", id)

	bal, err := newClient(url).balance(id)
	if err != nil {
		return err
	}

	fmt.Printf("allocation: %d\nrefundable: %d\nnative:     %d\nnonce:      %d\n", bal.Allocation, bal.RefundBalance, bal.Native, bal.Nonce)
	return nil
}
