package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/permadoc/permadoc/src/utils/config"
)

type Client struct {
	*BaseClient
}

func NewClient(config *config.Config) (self *Client) {
	self = new(Client)
	self.BaseClient = newBaseClient(config)

	if len(config.Gateway.Urls) > 1 {
		self.SetPeers(config.Gateway.Urls[1:])
	}

	return
}

// Downloads the payload stored under the given id
func (self *Client) GetData(ctx context.Context, id string) (out []byte, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/{id}")
	if err != nil {
		return
	}

	out = resp.Body()
	return
}

// Like GetData but keeps the content type the gateway served
func (self *Client) GetDataWithContentType(ctx context.Context, id string) (out []byte, contentType string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/{id}")
	if err != nil {
		return
	}

	out = resp.Body()
	contentType = resp.Header().Get("Content-Type")
	return
}

// Confirmation status of a committed transaction.
// A transaction that is accepted but not yet in a block reports ErrPending.
func (self *Client) GetTxStatus(ctx context.Context, id string) (out *TxStatus, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/tx/{id}/status")
	if err != nil {
		return
	}

	// Pending transactions come back as 202 with a plain text body
	if resp.StatusCode() == http.StatusAccepted {
		err = ErrPending
		return
	}

	out = new(TxStatus)
	err = json.Unmarshal(resp.Body(), out)
	if err != nil {
		out = nil
		err = ErrFailedToParse
	}
	return
}

// Balance of the given address in the native unit (winston-like integer string)
func (self *Client) GetBalance(ctx context.Context, address string) (out string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetPathParam("address", address).
		Get("/wallet/{address}/balance")
	if err != nil {
		return
	}

	out = string(resp.Body())
	return
}

// Anchor for a new transaction
func (self *Client) GetTxAnchor(ctx context.Context) (out string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		Get("/tx_anchor")
	if err != nil {
		return
	}

	out = string(resp.Body())
	return
}

// Fee for storing the given number of bytes
func (self *Client) GetPrice(ctx context.Context, numBytes int) (out string, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetPathParam("bytes", strconv.Itoa(numBytes)).
		Get("/price/{bytes}")
	if err != nil {
		return
	}

	out = string(resp.Body())
	return
}

// Submits a signed transaction directly to the gateway,
// bypassing any bundling service
func (self *Client) SubmitTransaction(ctx context.Context, tx *Transaction) (err error) {
	_, err = self.client.R().
		SetContext(ctx).
		SetBody(tx).
		ForceContentType("application/json").
		Post("/tx")
	return
}

// Runs a GraphQL query against the gateway's index.
// The response's data field gets unmarshaled into out.
func (self *Client) Graphql(ctx context.Context, query string, variables map[string]interface{}, out interface{}) (err error) {
	body := GraphqlRequest{
		Query:     query,
		Variables: variables,
	}

	response := GraphqlResponse{Data: out}

	resp, err := self.client.R().
		SetContext(ctx).
		SetBody(&body).
		ForceContentType("application/json").
		SetResult(&response).
		Post("/graphql")
	if err != nil {
		return
	}

	parsed, ok := resp.Result().(*GraphqlResponse)
	if !ok {
		err = ErrFailedToParse
		return
	}

	if len(parsed.Errors) > 0 {
		err = fmt.Errorf("graphql: %s", parsed.Errors[0].Message)
		return
	}

	return
}

func (self *Client) GetNetworkInfo(ctx context.Context) (out *NetworkInfo, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&NetworkInfo{}).
		Get("/info")
	if err != nil {
		return
	}

	out, ok := resp.Result().(*NetworkInfo)
	if !ok {
		err = ErrFailedToParse
		return
	}

	return
}

// Probes one gateway url, without retrying with the others
func (self *Client) CheckLiveness(ctx context.Context, url string) (out *NetworkInfo, duration time.Duration, err error) {
	// Disable retrying request with a different gateway
	ctx = context.WithValue(ctx, ContextDisablePeers, true)
	ctx = context.WithValue(ctx, ContextForcePeer, url)

	// Set timeout
	ctx, cancel := context.WithTimeout(ctx, self.config.Gateway.CheckTimeout)
	defer cancel()

	start := time.Now()
	out, err = self.GetNetworkInfo(ctx)
	if err != nil {
		return
	}

	duration = time.Since(start)
	return
}
