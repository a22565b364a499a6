package config

import (
	"time"

	"github.com/spf13/viper"
)

type Bundler struct {
	// List of bundler node urls that can be used, order matters
	Urls []string

	// Time limit for requests. The timeout includes connection time, any
	// redirects, and reading the response body
	RequestTimeout time.Duration

	// Maximum amount of time a dial will wait for a connect to complete.
	DialerTimeout time.Duration

	// Interval between keep-alive probes for an active network connection.
	DialerKeepAlive time.Duration

	// Maximum amount of time an idle (keep-alive) connection will remain idle before closing itself.
	IdleConnTimeout time.Duration

	// Maximum amount of time waiting to wait for a TLS handshake
	TLSHandshakeTimeout time.Duration

	// Account balance below this threshold is reported as insufficient.
	// Native unit of the underlying store.
	MinBalance string

	// Currency the bundler node is queried for
	Currency string
}

func setBundlerDefaults() {
	viper.SetDefault("Bundler.Urls", []string{"https://node1.irys.xyz", "https://node2.irys.xyz"})
	viper.SetDefault("Bundler.RequestTimeout", "30s")
	viper.SetDefault("Bundler.DialerTimeout", "30s")
	viper.SetDefault("Bundler.DialerKeepAlive", "15s")
	viper.SetDefault("Bundler.IdleConnTimeout", "31s")
	viper.SetDefault("Bundler.TLSHandshakeTimeout", "10s")
	viper.SetDefault("Bundler.MinBalance", "0.01")
	viper.SetDefault("Bundler.Currency", "arweave")
}
