package cmd

import (
	"github.com/permadoc/permadoc/src/archive"

	"github.com/spf13/cobra"
)

var (
	queryTags        []string
	queryCorrelation []string
	queryLimit       int
	queryAfter       string
)

func init() {
	queryCmd.Flags().StringArrayVar(&queryTags, "tag", nil, "tag filter, name=value")
	queryCmd.Flags().StringArrayVar(&queryCorrelation, "correlation", nil, "correlation filter, key=value")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "page size, configured default when 0")
	queryCmd.Flags().StringVar(&queryAfter, "after", "", "cursor, id of the last item of the previous page")
	RootCmd.AddCommand(queryCmd)
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search stored documents by tags",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		tags, err := parsePairs(queryTags)
		if err != nil {
			return
		}
		correlationIds, err := parsePairs(queryCorrelation)
		if err != nil {
			return
		}

		arch := archive.NewArchive(conf)
		err = arch.Init("")
		if err != nil {
			return
		}

		err = arch.Start()
		if err != nil {
			return
		}
		defer arch.StopWait()

		page, err := arch.QueryDocuments(ctx, archive.QueryOptions{
			CorrelationIds: correlationIds,
			Tags:           tags,
			Limit:          queryLimit,
			After:          queryAfter,
		})
		if err != nil {
			return
		}

		return printJSON(page)
	},
}
