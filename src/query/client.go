package query

import (
	"context"
	"strconv"

	"github.com/permadoc/permadoc/src/utils/config"
	"github.com/permadoc/permadoc/src/utils/gateway"
	"github.com/permadoc/permadoc/src/utils/logger"

	"github.com/sirupsen/logrus"
)

const transactionsQuery = `
query($tags: [TagFilter!], $owners: [String!], $first: Int!, $after: String) {
	transactions(tags: $tags, owners: $owners, first: $first, after: $after, sort: HEIGHT_DESC) {
		pageInfo {
			hasNextPage
		}
		edges {
			cursor
			node {
				id
				owner { address }
				data { size type }
				tags { name value }
				block { height timestamp }
			}
		}
	}
}`

// Searches the gateway's transaction index by tags. Results come back
// newest first, paginated with a cursor equal to the last item's id.
type Client struct {
	config  *config.Config
	log     *logrus.Entry
	gateway *gateway.Client
}

func NewClient(config *config.Config, gatewayClient *gateway.Client) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("query-client")
	self.gateway = gatewayClient
	return
}

// Clamps the requested page size into the configured bounds
func (self *Client) limit(requested int) int {
	if requested <= 0 {
		return self.config.Archive.QueryLimit
	}
	if requested > self.config.Archive.QueryLimitMax {
		return self.config.Archive.QueryLimitMax
	}
	return requested
}

// One page of summaries matching the filters. Pages are repeatable,
// the same cursor yields the same page. A query without a cursor starts
// from the newest item at the time of the call.
func (self *Client) Search(ctx context.Context, options Options) (out Page, err error) {
	if options.Limit < 0 {
		err = ErrBadLimit
		return
	}

	variables := map[string]interface{}{
		"first": self.limit(options.Limit),
	}
	if len(options.Tags) > 0 {
		variables["tags"] = options.Tags
	}
	if len(options.Owner) > 0 {
		variables["owners"] = []string{options.Owner}
	}
	if len(options.After) > 0 {
		variables["after"] = options.After
	}

	var data transactionsData
	err = self.gateway.Graphql(ctx, transactionsQuery, variables, &data)
	if err != nil {
		return
	}

	out.HasNext = data.Transactions.PageInfo.HasNextPage
	out.Items = make([]Summary, 0, len(data.Transactions.Edges))

	for _, edge := range data.Transactions.Edges {
		summary := Summary{
			Id:          edge.Node.Id,
			Owner:       edge.Node.Owner.Address,
			ContentType: edge.Node.Data.Type,
			Tags:        edge.Node.Tags,
		}

		// Size comes back as a string, tolerate a missing one
		size, parseErr := strconv.ParseInt(edge.Node.Data.Size, 10, 64)
		if parseErr == nil {
			summary.Size = size
		}

		if edge.Node.Block != nil {
			summary.BlockHeight = edge.Node.Block.Height
			summary.BlockTimestamp = edge.Node.Block.Timestamp
		}

		out.Items = append(out.Items, summary)
	}

	if out.HasNext && len(out.Items) > 0 {
		out.NextCursor = out.Items[len(out.Items)-1].Id
	}

	return
}
