package cmd

import (
	"github.com/permadoc/permadoc/src/archive"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(balanceCmd)
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Check the balance of the signing account on the bundler node",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		arch := archive.NewArchive(conf)

		err = arch.InitFromFile()
		if err != nil {
			return
		}

		err = arch.Start()
		if err != nil {
			return
		}
		defer arch.StopWait()

		out := map[string]interface{}{
			"bundler": arch.CheckBalance(ctx),
		}

		// On-chain wallet balance, best effort
		wallet, walletErr := arch.WalletBalance(ctx)
		if walletErr == nil {
			out["wallet"] = wallet
		}

		return printJSON(out)
	},
}
