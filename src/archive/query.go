package archive

import (
	"context"

	"github.com/permadoc/permadoc/src/query"
)

// Searches the index for documents of this application. Filters
// combine with AND, a document must carry every requested tag.
// A broken index degrades to an empty page, browsing is advisory.
func (self *Archive) QueryDocuments(ctx context.Context, options QueryOptions) (out query.Page, err error) {
	filters := []query.TagFilter{
		{Name: TagAppName, Values: []string{self.Config.Archive.AppName}},
	}

	for key, value := range options.CorrelationIds {
		name, tagErr := correlationTagName(key)
		if tagErr != nil {
			err = tagErr
			return
		}
		filters = append(filters, query.TagFilter{Name: name, Values: []string{value}})
	}

	for name, value := range options.Tags {
		filters = append(filters, query.TagFilter{Name: name, Values: []string{value}})
	}

	out, err = self.query.Search(ctx, query.Options{
		Tags:  filters,
		Limit: options.Limit,
		After: options.After,
	})
	if err != nil {
		self.Log.WithError(err).Warn("Query failed, returning an empty page")
		self.monitor.Report.Archive.Errors.QueryErrors.Inc()

		out = query.Page{Items: []query.Summary{}}
		err = nil
		return
	}

	self.monitor.Report.Archive.State.Queries.Inc()
	return
}
