package store

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/permadoc/permadoc/src/utils/bundle"
	"github.com/permadoc/permadoc/src/utils/config"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

type State int

const (
	// No wallet, no reads performed yet
	StateUninitialized State = iota

	// No signing capability, reads still work
	StateReadOnly

	// Wallet loaded, writes possible
	StateReady
)

func (self State) String() string {
	switch self {
	case StateReadOnly:
		return "read-only"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Client of the bundling service. Takes signed data items and submits
// them as one transaction of the underlying store.
type Client struct {
	*BaseClient

	// Guards initialization, concurrent Init calls collapse into one
	mtx     sync.Mutex
	state   State
	signer  bundle.Signer
	address string
}

func NewClient(config *config.Config) (self *Client) {
	self = new(Client)
	self.BaseClient = newBaseClient(config)
	self.state = StateUninitialized
	return
}

// Initializes signing from a JWK wallet. An empty wallet degrades the
// client to read-only instead of failing, the surrounding application
// must stay usable for browsing and querying.
func (self *Client) Init(walletJWK string) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	if self.state == StateReady {
		// Already initialized
		return
	}

	if len(walletJWK) == 0 {
		self.state = StateReadOnly
		self.log.Info("No wallet provided, starting in read-only mode")
		return
	}

	signer, err := bundle.NewArweaveSigner(walletJWK)
	if err != nil {
		self.state = StateReadOnly
		self.log.WithError(err).Warn("Failed to parse wallet, starting in read-only mode")
		err = nil
		return
	}

	self.signer = signer
	self.address = OwnerToAddress(signer.GetOwner())
	self.state = StateReady

	self.log.WithField("address", self.address).Info("Client initialized")
	return
}

// Ambient wallet discovery, reads the wallet from the configured path
func (self *Client) InitFromFile() (err error) {
	path := self.config.Archive.WalletPath
	if len(path) == 0 {
		return self.Init("")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		self.log.WithError(err).WithField("path", path).Warn("Failed to read wallet file, starting in read-only mode")
		return self.Init("")
	}

	return self.Init(string(content))
}

func (self *Client) IsInitialized() bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.state == StateReady
}

func (self *Client) State() State {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.state
}

func (self *Client) Signer() bundle.Signer {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	return self.signer
}

func (self *Client) Address() (out string, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.state != StateReady {
		err = ErrNotInitialized
		return
	}
	out = self.address
	return
}

// Submits one signed data item. Tries the configured nodes in order.
// Not idempotent, the same payload submitted twice gets two different ids.
func (self *Client) Upload(ctx context.Context, item *bundle.DataItem) (out *UploadResponse, err error) {
	if !self.IsInitialized() {
		err = ErrNotInitialized
		return
	}

	reader, err := item.Reader()
	if err != nil {
		return
	}
	body := reader.Bytes()

	urls := self.urls()
	if len(urls) == 0 {
		err = ErrNoNodeUrls
		return
	}

	var (
		resp    *resty.Response
		lastErr error
	)
	for idx, url := range urls {
		resp, err = self.client.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&UploadResponse{}).
			ForceContentType("application/json").
			SetHeader("Content-Type", "application/octet-stream").
			Post(url + "/tx")

		if err != nil {
			// Network level failure, the next node may still answer
			self.log.WithError(err).WithField("url", url).WithField("idx", idx).Warn("Node unreachable")
			lastErr = err
			continue
		}

		if resp.StatusCode() == http.StatusPaymentRequired {
			err = self.insufficientBalance(ctx, len(body))
			return
		}

		if resp.StatusCode() > 399 && resp.StatusCode() < 500 {
			// Bad request, retrying with a different node won't help
			err = &UploadError{Reason: resp.Status()}
			return
		}

		if resp.IsSuccess() {
			parsed, ok := resp.Result().(*UploadResponse)
			if !ok {
				err = ErrFailedToParse
				return
			}
			if len(parsed.Id) == 0 {
				err = ErrIdEmpty
				return
			}
			out = parsed
			return
		}

		self.log.WithField("status", resp.StatusCode()).WithField("url", url).Warn("Node rejected upload, trying the next one")
		lastErr = fmt.Errorf("unexpected status: %s", resp.Status())
	}

	// Every node either errored or answered 5xx, both may clear up
	err = &UploadError{Reason: "all nodes failed", Err: lastErr}
	return
}

func (self *Client) insufficientBalance(ctx context.Context, numBytes int) error {
	out := &InsufficientBalanceError{Required: BalanceUnknown, Available: BalanceUnknown}

	// Best effort details, the 402 itself is the verdict
	price, err := self.GetPrice(ctx, numBytes)
	if err == nil {
		out.Required = price
	}

	balance := self.GetBalance(ctx)
	out.Available = balance.Amount

	return out
}

// Balance of the signing account on the bundler node. Advisory only,
// a failed check reports unknown/sufficient instead of an error.
func (self *Client) GetBalance(ctx context.Context) (out Balance) {
	out = Balance{Amount: BalanceUnknown, Sufficient: true}

	self.mtx.Lock()
	address := self.address
	self.mtx.Unlock()

	if len(address) == 0 {
		return
	}

	urls := self.urls()
	if len(urls) == 0 {
		return
	}

	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(&BalanceResponse{}).
		ForceContentType("application/json").
		SetQueryParam("address", address).
		Get(urls[0] + "/account/balance/" + self.config.Bundler.Currency)
	if err != nil || !resp.IsSuccess() {
		self.log.WithError(err).Warn("Failed to query balance, assuming sufficient")
		return
	}

	parsed, ok := resp.Result().(*BalanceResponse)
	if !ok {
		return
	}

	units, err := decimal.NewFromString(parsed.Balance)
	if err != nil {
		return
	}

	minBalance, err := decimal.NewFromString(self.config.Bundler.MinBalance)
	if err != nil {
		minBalance = decimal.Zero
	}

	// Node reports atomic units, the threshold is in whole units
	amount := units.Shift(-12)

	out.Amount = amount.String()
	out.Sufficient = amount.Cmp(minBalance) >= 0
	return
}

// Fee for storing the given number of bytes through the node
func (self *Client) GetPrice(ctx context.Context, numBytes int) (out string, err error) {
	urls := self.urls()
	if len(urls) == 0 {
		err = ErrNoNodeUrls
		return
	}

	resp, err := self.client.R().
		SetContext(ctx).
		SetPathParam("bytes", strconv.Itoa(numBytes)).
		Get(urls[0] + "/price/" + self.config.Bundler.Currency + "/{bytes}")
	if err != nil {
		return
	}
	if !resp.IsSuccess() {
		err = ErrFailedToParse
		return
	}

	out = string(resp.Body())
	return
}

// Downloads a data item payload through the node
func (self *Client) GetData(ctx context.Context, id string) (out []byte, err error) {
	urls := self.urls()
	if len(urls) == 0 {
		err = ErrNoNodeUrls
		return
	}

	var resp *resty.Response
	for _, url := range urls {
		resp, err = self.client.R().
			SetContext(ctx).
			SetPathParam("id", id).
			Get(url + "/tx/{id}/data")
		if err != nil {
			continue
		}
		if resp.StatusCode() == http.StatusNotFound {
			err = ErrNotFound
			return
		}
		if resp.IsSuccess() {
			out = resp.Body()
			return
		}
	}

	if err == nil {
		err = ErrNotFound
	}
	return
}

// Address of the signing account, derived from the public key
func OwnerToAddress(owner []byte) string {
	addr := sha256.Sum256(owner)
	return base64.RawURLEncoding.EncodeToString(addr[:])
}
