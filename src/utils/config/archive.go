package config

import (
	"github.com/spf13/viper"
)

type Archive struct {
	// Value of the App-Name tag attached to every stored item
	AppName string

	// Path to the wallet file used for signing.
	// Empty path means the client starts in read-only mode.
	WalletPath string

	// Default page size for tag queries
	QueryLimit int

	// Upper bound for caller-supplied page sizes
	QueryLimitMax int
}

func setArchiveDefaults() {
	viper.SetDefault("Archive.AppName", "Permadoc")
	viper.SetDefault("Archive.WalletPath", "")
	viper.SetDefault("Archive.QueryLimit", "20")
	viper.SetDefault("Archive.QueryLimitMax", "100")
}
