package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/permadoc/permadoc/src/utils/config"

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
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
}

func (s *ClientTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *ClientTestSuite) client(url string) *Client {
	conf := config.Default()
	conf.Gateway.Urls = []string{url}
	return NewClient(conf)
}

func (s *ClientTestSuite) TestGetTxStatus() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tx/confirmed-id/status":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"block_height": 1200, "block_indep_hash": "hash", "number_of_confirmations": 12}`))
		case "/tx/pending-id/status":
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte("Pending"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := s.client(server.URL)

	out, err := client.GetTxStatus(s.ctx, "confirmed-id")
	require.Nil(s.T(), err)
	require.Equal(s.T(), int64(1200), out.BlockHeight)
	require.Equal(s.T(), int64(12), out.NumberOfConfirmations)

	_, err = client.GetTxStatus(s.ctx, "pending-id")
	require.Equal(s.T(), ErrPending, err)
}

func (s *ClientTestSuite) TestGetBalance() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), "/wallet/some-address/balance", r.URL.Path)
		w.Write([]byte("123456789"))
	}))
	defer server.Close()

	client := s.client(server.URL)

	out, err := client.GetBalance(s.ctx, "some-address")
	require.Nil(s.T(), err)
	require.Equal(s.T(), "123456789", out)
}

func (s *ClientTestSuite) TestResolverHooks() {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer dead.Close()

	conf := config.Default()
	conf.Gateway.Urls = []string{dead.URL}

	var probes, degraded int
	resolver := NewResolver(conf).
		WithClient(NewClient(conf)).
		WithOnProbe(func() { probes++ }).
		WithOnDegraded(func() { degraded++ })

	url, err := resolver.Resolve(s.ctx)
	require.Nil(s.T(), err)
	require.Equal(s.T(), dead.URL, url)

	require.Equal(s.T(), 1, probes)
	require.Equal(s.T(), 1, degraded)
}
