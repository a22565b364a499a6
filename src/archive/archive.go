package archive

import (
	"context"
	"strings"
	"unicode"

	"github.com/permadoc/permadoc/src/batch"
	"github.com/permadoc/permadoc/src/query"
	"github.com/permadoc/permadoc/src/store"
	"github.com/permadoc/permadoc/src/utils/config"
	"github.com/permadoc/permadoc/src/utils/gateway"
	"github.com/permadoc/permadoc/src/utils/monitor"
	"github.com/permadoc/permadoc/src/utils/task"

	"github.com/iancoleman/strcase"
)

// Facade over the whole upload pipeline. Owns the bundler client,
// the gateway client with its resolver, the batch manager and the
// query client, and picks the best available path for each call.
type Archive struct {
	*task.Task

	store    *store.Client
	gateway  *gateway.Client
	resolver *gateway.Resolver
	query    *query.Client
	batches  *batch.Manager
	monitor  *monitor.Monitor
}

func NewArchive(config *config.Config) (self *Archive) {
	self = new(Archive)

	self.store = store.NewClient(config)
	self.gateway = gateway.NewClient(config)
	self.query = query.NewClient(config, self.gateway)
	self.batches = batch.NewManager(config, self)
	self.monitor = monitor.NewMonitor()
	self.resolver = gateway.NewResolver(config).
		WithClient(self.gateway).
		WithOnProbe(func() { self.monitor.Report.Gateway.State.LivenessProbes.Inc() }).
		WithOnDegraded(func() { self.monitor.Report.Gateway.State.ResolvedDegraded.Inc() })

	self.Task = task.NewTask(config, "archive").
		WithSubtask(self.batches.Task).
		WithSubtask(self.monitor.Task)

	return
}

func (self *Archive) Monitor() *monitor.Monitor {
	return self.monitor
}

func (self *Archive) Store() *store.Client {
	return self.store
}

// Loads signing capability from a JWK wallet. Degrades to read-only
// on a missing or broken wallet, reads keep working either way.
func (self *Archive) Init(walletJWK string) (err error) {
	return self.store.Init(walletJWK)
}

// Loads the wallet from the configured path
func (self *Archive) InitFromFile() (err error) {
	return self.store.InitFromFile()
}

func (self *Archive) IsInitialized() bool {
	return self.store.IsInitialized()
}

// Advisory balance of the signing account. Never fails, an unreachable
// balance endpoint reports unknown/sufficient.
func (self *Archive) CheckBalance(ctx context.Context) store.Balance {
	return self.store.GetBalance(ctx)
}

// On-chain balance of the signing wallet, straight from the gateway.
// Unlike the bundler account balance this one is not advisory.
func (self *Archive) WalletBalance(ctx context.Context) (out string, err error) {
	address, err := self.store.Address()
	if err != nil {
		return
	}
	return self.gateway.GetBalance(ctx, address)
}

// Batch controls, thin passthroughs to the manager

func (self *Archive) CreateBatch(limits batch.Limits) (id string) {
	id = self.batches.Create(limits)
	self.monitor.Report.Batch.State.BatchesCreated.Inc()
	return
}

func (self *Archive) CommitBatch(ctx context.Context, id string) (*batch.CommitResult, error) {
	return self.batches.Commit(ctx, id)
}

func (self *Archive) BatchStatus(id string) (batch.Snapshot, error) {
	return self.batches.Status(id)
}

func (self *Archive) ListBatches() []batch.Snapshot {
	return self.batches.List()
}

func (self *Archive) EnableAutoBatching(limits batch.Limits) (id string) {
	id = self.batches.EnableAutoBatching(limits)
	self.monitor.Report.Batch.State.BatchesCreated.Inc()
	return
}

func (self *Archive) DisableAutoBatching(ctx context.Context) (*batch.CommitResult, error) {
	return self.batches.DisableAutoBatching(ctx)
}

// Turns a correlation key like "roomId" into its tag name "Room-Id"
func correlationTagName(key string) (out string, err error) {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", ErrBadCorrelationKey
		}
	}
	if len(key) == 0 {
		return "", ErrBadCorrelationKey
	}

	parts := strings.Split(strcase.ToKebab(key), "-")
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	out = strings.Join(parts, "-")
	return
}

func (self *Archive) documentUrl(id string) string {
	urls := self.Config.Gateway.Urls
	if len(urls) == 0 {
		return id
	}
	return strings.TrimSuffix(urls[0], "/") + "/" + id
}
