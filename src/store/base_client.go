package store

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/permadoc/permadoc/src/utils/build_info"
	"github.com/permadoc/permadoc/src/utils/config"
	"github.com/permadoc/permadoc/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type BaseClient struct {
	client *resty.Client
	config *config.Config
	log    *logrus.Entry
}

func newBaseClient(config *config.Config) (self *BaseClient) {
	self = new(BaseClient)
	self.config = config
	self.log = logger.NewSublogger("bundler-client")

	self.client =
		resty.New().
			SetTimeout(self.config.Bundler.RequestTimeout).
			SetHeader("User-Agent", "permadoc/"+build_info.Version).
			SetTransport(self.createTransport())

	return
}

func (self *BaseClient) createTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   self.config.Bundler.DialerTimeout,
		KeepAlive: self.config.Bundler.DialerKeepAlive,
	}

	return &http.Transport{
		ForceAttemptHTTP2: true,

		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   self.config.Bundler.TLSHandshakeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       self.config.Bundler.IdleConnTimeout,
		MaxIdleConns:          1,
		MaxIdleConnsPerHost:   1,
		MaxConnsPerHost:       1,
	}
}

func (self *BaseClient) urls() []string {
	out := make([]string, 0, len(self.config.Bundler.Urls))
	for _, url := range self.config.Bundler.Urls {
		out = append(out, strings.TrimSuffix(url, "/"))
	}
	return out
}
