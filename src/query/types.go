package query

// Tag filter, matches items carrying the tag with any of the values
type TagFilter struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

type Options struct {
	Tags  []TagFilter
	Owner string

	// Page size, the configured default when 0
	Limit int

	// Id of the last item of the previous page, empty for the first page
	After string
}

// Index metadata of one stored item. Payload retrieval is a separate call,
// summaries stay cheap even for large documents.
type Summary struct {
	Id          string `json:"id"`
	Owner       string `json:"owner"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Tags        []Tag  `json:"tags"`

	// Zero until the item lands in a block
	BlockHeight    int64 `json:"block_height"`
	BlockTimestamp int64 `json:"block_timestamp"`
}

type Tag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (self *Summary) GetTag(name string) (value string, ok bool) {
	for _, tag := range self.Tags {
		if tag.Name == name {
			return tag.Value, true
		}
	}
	return
}

// One page of summaries, newest first
type Page struct {
	Items []Summary `json:"items"`

	// Pass as Options.After to fetch the next page, empty on the last one
	NextCursor string `json:"next_cursor,omitempty"`
	HasNext    bool   `json:"has_next"`
}

// Wire shape of the gateway's transaction index
type transactionsData struct {
	Transactions struct {
		PageInfo struct {
			HasNextPage bool `json:"hasNextPage"`
		} `json:"pageInfo"`
		Edges []struct {
			Cursor string `json:"cursor"`
			Node   struct {
				Id    string `json:"id"`
				Owner struct {
					Address string `json:"address"`
				} `json:"owner"`
				Data struct {
					Size string `json:"size"`
					Type string `json:"type"`
				} `json:"data"`
				Tags []Tag `json:"tags"`
				Block *struct {
					Height    int64 `json:"height"`
					Timestamp int64 `json:"timestamp"`
				} `json:"block"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"transactions"`
}
