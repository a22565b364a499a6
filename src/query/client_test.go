package query

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/permadoc/permadoc/src/utils/config"
	"github.com/permadoc/permadoc/src/utils/gateway"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc

	server *httptest.Server
	client *Client

	mtx      sync.Mutex
	requests []gateway.GraphqlRequest
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.server = httptest.NewServer(http.HandlerFunc(s.handleGraphql))

	conf := config.Default()
	conf.Gateway.Urls = []string{s.server.URL}

	s.client = NewClient(conf, gateway.NewClient(conf))
}

func (s *ClientTestSuite) TearDownSuite() {
	s.server.Close()
	s.cancel()
}

func (s *ClientTestSuite) SetupTest() {
	s.mtx.Lock()
	s.requests = nil
	s.mtx.Unlock()
}

// Serves two fixed pages keyed by the after cursor. The same cursor
// always produces the same page, like the immutable store does.
func (s *ClientTestSuite) handleGraphql(w http.ResponseWriter, r *http.Request) {
	var in gateway.GraphqlRequest
	err := json.NewDecoder(r.Body).Decode(&in)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mtx.Lock()
	s.requests = append(s.requests, in)
	s.mtx.Unlock()

	after, _ := in.Variables["after"].(string)

	page := func(ids []string, hasNext bool) string {
		edges := ""
		for i, id := range ids {
			if i > 0 {
				edges += ","
			}
			edges += fmt.Sprintf(`{
				"cursor": "opaque-%s",
				"node": {
					"id": "%s",
					"owner": {"address": "owner-address"},
					"data": {"size": "128", "type": "text/plain"},
					"tags": [{"name": "App-Name", "value": "Permadoc"}],
					"block": {"height": 100, "timestamp": 1700000000}
				}
			}`, id, id)
		}
		return fmt.Sprintf(`{"data": {"transactions": {
			"pageInfo": {"hasNextPage": %t},
			"edges": [%s]
		}}}`, hasNext, edges)
	}

	w.Header().Set("Content-Type", "application/json")
	switch after {
	case "":
		fmt.Fprint(w, page([]string{"doc-3", "doc-2"}, true))
	case "doc-2":
		fmt.Fprint(w, page([]string{"doc-1"}, false))
	default:
		fmt.Fprint(w, page(nil, false))
	}
}

func (s *ClientTestSuite) lastVariables() map[string]interface{} {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	require.NotEmpty(s.T(), s.requests)
	return s.requests[len(s.requests)-1].Variables
}

func (s *ClientTestSuite) TestFirstPage() {
	page, err := s.client.Search(s.ctx, Options{
		Tags: []TagFilter{{Name: "App-Name", Values: []string{"Permadoc"}}},
	})
	require.Nil(s.T(), err)
	require.Len(s.T(), page.Items, 2)

	// Newest first, cursor is the id of the last returned item
	require.Equal(s.T(), "doc-3", page.Items[0].Id)
	require.Equal(s.T(), "doc-2", page.Items[1].Id)
	require.True(s.T(), page.HasNext)
	require.Equal(s.T(), "doc-2", page.NextCursor)

	require.Equal(s.T(), "owner-address", page.Items[0].Owner)
	require.Equal(s.T(), "text/plain", page.Items[0].ContentType)
	require.Equal(s.T(), int64(128), page.Items[0].Size)
	require.Equal(s.T(), int64(100), page.Items[0].BlockHeight)

	value, ok := page.Items[0].GetTag("App-Name")
	require.True(s.T(), ok)
	require.Equal(s.T(), "Permadoc", value)
}

func (s *ClientTestSuite) TestPaginationIsRepeatable() {
	first, err := s.client.Search(s.ctx, Options{})
	require.Nil(s.T(), err)

	second, err := s.client.Search(s.ctx, Options{After: first.NextCursor})
	require.Nil(s.T(), err)
	require.Len(s.T(), second.Items, 1)
	require.Equal(s.T(), "doc-1", second.Items[0].Id)
	require.False(s.T(), second.HasNext)
	require.Empty(s.T(), second.NextCursor)

	// Same cursor, same page
	again, err := s.client.Search(s.ctx, Options{After: first.NextCursor})
	require.Nil(s.T(), err)
	require.Equal(s.T(), second, again)
}

func (s *ClientTestSuite) TestNegativeLimit() {
	_, err := s.client.Search(s.ctx, Options{Limit: -1})
	require.Equal(s.T(), ErrBadLimit, err)

	// Nothing reached the gateway
	s.mtx.Lock()
	defer s.mtx.Unlock()
	require.Empty(s.T(), s.requests)
}

func (s *ClientTestSuite) TestLimitDefaultsAndCap() {
	conf := config.Default()

	_, err := s.client.Search(s.ctx, Options{})
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), conf.Archive.QueryLimit, s.lastVariables()["first"])

	_, err = s.client.Search(s.ctx, Options{Limit: 7})
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), 7, s.lastVariables()["first"])

	_, err = s.client.Search(s.ctx, Options{Limit: 100000})
	require.Nil(s.T(), err)
	require.EqualValues(s.T(), conf.Archive.QueryLimitMax, s.lastVariables()["first"])
}
