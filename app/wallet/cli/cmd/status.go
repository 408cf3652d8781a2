package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of the sale.",
	RunE:  statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) error {
	sum, err := newClient(url).status()
	if err != nil {
		return err
	}

	fmt.Println("address:     ", sum.Address)
	fmt.Println("owner:       ", sum.Owner)
	fmt.Println("beneficiary: ", sum.Beneficiary)
	fmt.Println("window:      ", sum.Window.OpenTime, "-", sum.Window.CloseTime)
	fmt.Println("goal:        ", sum.Goal.Min, "-", sum.Goal.Max)
	fmt.Println("raised:      ", sum.TotalRaised)
	fmt.Println("escrow:      ", sum.Escrow)
	fmt.Println("status:      ", sum.Status)

	return nil
}
