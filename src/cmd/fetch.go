package cmd

import (
	"os"

	"github.com/permadoc/permadoc/src/archive"

	"github.com/spf13/cobra"
)

var fetchOutput string

func init() {
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "output file, stdout when empty")
	RootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <id>",
	Short: "Download a document by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		arch := archive.NewArchive(conf)

		// Fetching needs no wallet
		err = arch.Init("")
		if err != nil {
			return
		}

		err = arch.Start()
		if err != nil {
			return
		}
		defer arch.StopWait()

		data, err := arch.GetDocument(ctx, args[0])
		if err != nil {
			return
		}

		if len(fetchOutput) == 0 {
			_, err = os.Stdout.Write(data)
			return
		}

		return os.WriteFile(fetchOutput, data, 0o644)
	},
}
