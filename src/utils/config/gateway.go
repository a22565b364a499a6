package config

import (
	"time"

	"github.com/spf13/viper"
)

type Gateway struct {
	// List of gateway urls that can be used, order matters.
	// The first one is the primary gateway, the rest are fallbacks.
	Urls []string

	// Time limit for requests. The timeout includes connection time, any
	// redirects, and reading the response body
	RequestTimeout time.Duration

	// Maximum time a gateway needs to answer the liveness probe in order to
	// be considered healthy. This should be much smaller than request timeout
	CheckTimeout time.Duration

	// How long a successful resolution is reused before gateways get probed again
	HealthCacheTTL time.Duration

	// Maximum amount of time a dial will wait for a connect to complete.
	DialerTimeout time.Duration

	// Interval between keep-alive probes for an active network connection.
	DialerKeepAlive time.Duration

	// Maximum amount of time an idle (keep-alive) connection will remain idle before closing itself.
	IdleConnTimeout time.Duration

	// Maximum amount of time waiting to wait for a TLS handshake
	TLSHandshakeTimeout time.Duration

	// Time in which max num of requests is enforced
	LimiterInterval time.Duration

	// Max num requests to a particular gateway per interval
	LimiterBurstSize int
}

func setGatewayDefaults() {
	viper.SetDefault("Gateway.Urls", []string{"https://arweave.net", "https://ar-io.net", "https://arweave.dev"})
	viper.SetDefault("Gateway.RequestTimeout", "30s")
	viper.SetDefault("Gateway.CheckTimeout", "5s")
	viper.SetDefault("Gateway.HealthCacheTTL", "5m")
	viper.SetDefault("Gateway.DialerTimeout", "30s")
	viper.SetDefault("Gateway.DialerKeepAlive", "15s")
	viper.SetDefault("Gateway.IdleConnTimeout", "31s")
	viper.SetDefault("Gateway.TLSHandshakeTimeout", "10s")
	viper.SetDefault("Gateway.LimiterInterval", "500ms")
	viper.SetDefault("Gateway.LimiterBurstSize", "7")
}
