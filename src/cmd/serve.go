package cmd

import (
	"github.com/permadoc/permadoc/src/archive"
	"github.com/permadoc/permadoc/src/server"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API server",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		arch := archive.NewArchive(conf)

		// A missing wallet degrades to read-only, serving still works
		err = arch.InitFromFile()
		if err != nil {
			return
		}

		rest := server.NewServer(conf).WithArchive(arch)

		err = arch.Start()
		if err != nil {
			return
		}

		err = rest.Start()
		if err != nil {
			return
		}

		<-ctx.Done()

		rest.StopWait()
		arch.StopWait()
		return
	},
}
