package store

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/permadoc/permadoc/src/utils/bundle"
	"github.com/permadoc/permadoc/src/utils/config"

	"github.com/lestrrat-go/jwx/jwk"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func testWalletJWK(t *testing.T) string {
	key, err := rsa.GenerateKey(rand.Reader, 4096)
	require.Nil(t, err)

	jwkKey, err := jwk.New(key)
	require.Nil(t, err)

	buf, err := json.Marshal(jwkKey)
	require.Nil(t, err)

	return string(buf)
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc
	wallet string
}

func (s *ClientTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.wallet = testWalletJWK(s.T())
}

func (s *ClientTestSuite) TearDownSuite() {
	s.cancel()
}

func (s *ClientTestSuite) client(urls ...string) *Client {
	conf := config.Default()
	conf.Bundler.Urls = urls
	return NewClient(conf)
}

func (s *ClientTestSuite) signedItem(client *Client) *bundle.DataItem {
	item := &bundle.DataItem{
		Tags: bundle.Tags{{Name: "App-Name", Value: "Permadoc"}},
		Data: []byte("document payload"),
	}
	err := item.Sign(client.Signer())
	require.Nil(s.T(), err)
	return item
}

func (s *ClientTestSuite) TestInitStates() {
	client := s.client()
	require.Equal(s.T(), StateUninitialized, client.State())

	// No wallet degrades to read-only instead of failing
	err := client.Init("")
	require.Nil(s.T(), err)
	require.Equal(s.T(), StateReadOnly, client.State())
	require.False(s.T(), client.IsInitialized())

	// So does a wallet that doesn't parse
	client = s.client()
	err = client.Init("not a jwk")
	require.Nil(s.T(), err)
	require.Equal(s.T(), StateReadOnly, client.State())

	// A proper wallet initializes signing
	client = s.client()
	err = client.Init(s.wallet)
	require.Nil(s.T(), err)
	require.True(s.T(), client.IsInitialized())
	require.NotNil(s.T(), client.Signer())

	address, err := client.Address()
	require.Nil(s.T(), err)
	require.NotEmpty(s.T(), address)
}

func (s *ClientTestSuite) TestReadOnlyGuards() {
	client := s.client()
	require.Nil(s.T(), client.Init(""))

	_, err := client.Address()
	require.Equal(s.T(), ErrNotInitialized, err)

	_, err = client.Upload(s.ctx, &bundle.DataItem{})
	require.Equal(s.T(), ErrNotInitialized, err)
}

func (s *ClientTestSuite) TestUpload() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), http.MethodPost, r.Method)
		require.Equal(s.T(), "/tx", r.URL.Path)
		require.Equal(s.T(), "application/octet-stream", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "uploaded-item-id", "timestamp": 1700000000000}`)
	}))
	defer server.Close()

	client := s.client(server.URL)
	require.Nil(s.T(), client.Init(s.wallet))

	out, err := client.Upload(s.ctx, s.signedItem(client))
	require.Nil(s.T(), err)
	require.Equal(s.T(), "uploaded-item-id", out.Id)
}

func (s *ClientTestSuite) TestUploadTriesNextNode() {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer dead.Close()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id": "second-node-id"}`)
	}))
	defer healthy.Close()

	client := s.client(dead.URL, healthy.URL)
	require.Nil(s.T(), client.Init(s.wallet))

	out, err := client.Upload(s.ctx, s.signedItem(client))
	require.Nil(s.T(), err)
	require.Equal(s.T(), "second-node-id", out.Id)
}

func (s *ClientTestSuite) TestUploadBadRequestIsFinal() {
	numCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		numCalls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := s.client(server.URL, server.URL)
	require.Nil(s.T(), client.Init(s.wallet))

	_, err := client.Upload(s.ctx, s.signedItem(client))
	require.NotNil(s.T(), err)

	var uploadErr *UploadError
	require.ErrorAs(s.T(), err, &uploadErr)

	// No retry on a client side error
	require.Equal(s.T(), 1, numCalls)
}

func (s *ClientTestSuite) TestUploadServerErrorsAreWrapped() {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	client := s.client(broken.URL, broken.URL)
	require.Nil(s.T(), client.Init(s.wallet))

	_, err := client.Upload(s.ctx, s.signedItem(client))
	require.NotNil(s.T(), err)

	// The wrapped cause marks the failure as a retryable outage
	var uploadErr *UploadError
	require.ErrorAs(s.T(), err, &uploadErr)
	require.NotNil(s.T(), uploadErr.Err)
}

func (s *ClientTestSuite) TestUploadInsufficientBalance() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/tx":
			w.WriteHeader(http.StatusPaymentRequired)
		case strings.HasPrefix(r.URL.Path, "/price/arweave/"):
			fmt.Fprint(w, "5000000000000")
		default:
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"balance": "1000000000000"}`)
		}
	}))
	defer server.Close()

	client := s.client(server.URL)
	require.Nil(s.T(), client.Init(s.wallet))

	item := s.signedItem(client)

	_, err := client.Upload(s.ctx, item)
	require.NotNil(s.T(), err)

	var balanceErr *InsufficientBalanceError
	require.ErrorAs(s.T(), err, &balanceErr)
	require.Equal(s.T(), "5000000000000", balanceErr.Required)
	require.Equal(s.T(), "1", balanceErr.Available)
}

func (s *ClientTestSuite) TestBalance() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(s.T(), "/account/balance/arweave", r.URL.Path)
		require.NotEmpty(s.T(), r.URL.Query().Get("address"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"balance": "2000000000000"}`)
	}))
	defer server.Close()

	client := s.client(server.URL)
	require.Nil(s.T(), client.Init(s.wallet))

	// Atomic units shifted to whole ones, compared against the minimum
	out := client.GetBalance(s.ctx)
	require.Equal(s.T(), "2", out.Amount)
	require.True(s.T(), out.Sufficient)
}

func (s *ClientTestSuite) TestBalanceBelowMinimum() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"balance": "1000000"}`)
	}))
	defer server.Close()

	client := s.client(server.URL)
	require.Nil(s.T(), client.Init(s.wallet))

	out := client.GetBalance(s.ctx)
	require.Equal(s.T(), "0.000001", out.Amount)
	require.False(s.T(), out.Sufficient)
}

func (s *ClientTestSuite) TestBalanceDegradesToUnknown() {
	// Unreachable node, the check must not fail or block uploads
	client := s.client("http://127.0.0.1:1")
	require.Nil(s.T(), client.Init(s.wallet))

	out := client.GetBalance(s.ctx)
	require.Equal(s.T(), BalanceUnknown, out.Amount)
	require.True(s.T(), out.Sufficient)
}

func (s *ClientTestSuite) TestGetData() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tx/known-id/data" {
			fmt.Fprint(w, "stored bytes")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := s.client(server.URL)

	out, err := client.GetData(s.ctx, "known-id")
	require.Nil(s.T(), err)
	require.Equal(s.T(), []byte("stored bytes"), out)

	_, err = client.GetData(s.ctx, "missing-id")
	require.Equal(s.T(), ErrNotFound, err)
}
