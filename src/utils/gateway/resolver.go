package gateway

import (
	"context"

	"github.com/permadoc/permadoc/src/utils/config"
	"github.com/permadoc/permadoc/src/utils/logger"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const healthyUrlKey = "healthy-url"

// Finds a healthy gateway among the configured primary and fallbacks.
// A successful resolution is cached, concurrent callers during cache
// expiry may each trigger a probe - recomputation is idempotent.
type Resolver struct {
	config *config.Config
	log    *logrus.Entry
	client *Client
	cache  *cache.Cache

	onProbe    func()
	onDegraded func()
}

func NewResolver(config *config.Config) (self *Resolver) {
	self = new(Resolver)
	self.config = config
	self.log = logger.NewSublogger("gateway-resolver")
	self.cache = cache.New(config.Gateway.HealthCacheTTL, config.Gateway.HealthCacheTTL)
	return
}

func (self *Resolver) WithClient(client *Client) *Resolver {
	self.client = client
	return self
}

// Called once per liveness probe
func (self *Resolver) WithOnProbe(v func()) *Resolver {
	self.onProbe = v
	return self
}

// Called when no candidate passed and the primary is used anyway
func (self *Resolver) WithOnDegraded(v func()) *Resolver {
	self.onDegraded = v
	return self
}

// Returns the url of the first gateway that passes the liveness probe.
// When every candidate fails the primary is still returned - callers
// prefer a best-effort attempt over a hard failure.
func (self *Resolver) Resolve(ctx context.Context) (out string, err error) {
	if len(self.config.Gateway.Urls) == 0 {
		err = ErrNoGatewayUrls
		return
	}

	cached, ok := self.cache.Get(healthyUrlKey)
	if ok {
		out = cached.(string)
		return
	}

	for idx, url := range self.config.Gateway.Urls {
		if self.onProbe != nil {
			self.onProbe()
		}

		_, duration, probeErr := self.client.CheckLiveness(ctx, url)
		if probeErr != nil {
			self.log.WithError(probeErr).WithField("url", url).WithField("idx", idx).Debug("Gateway failed liveness probe")
			continue
		}

		self.log.WithField("url", url).WithField("duration", duration).Debug("Resolved healthy gateway")
		self.cache.SetDefault(healthyUrlKey, url)

		out = url
		return
	}

	// Last resort, the primary is returned uncached so the next
	// call probes again
	self.log.WithError(ErrNoHealthyGateway).Warn("Falling back to the primary gateway")
	if self.onDegraded != nil {
		self.onDegraded()
	}
	out = self.config.Gateway.Urls[0]
	return
}
