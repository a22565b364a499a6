package config

import (
	"time"

	"github.com/spf13/viper"
)

type Batch struct {
	// Number of staged items that triggers an automatic commit
	MaxFiles int

	// Accumulated payload size that triggers an automatic commit
	MaxBytes int64

	// A pending batch older than this gets committed even if it's not full
	Timeout time.Duration

	// Number of workers committing batches in parallel
	NumCommitWorkers int
}

func setBatchDefaults() {
	viper.SetDefault("Batch.MaxFiles", "10")
	viper.SetDefault("Batch.MaxBytes", "10485760")
	viper.SetDefault("Batch.Timeout", "60s")
	viper.SetDefault("Batch.NumCommitWorkers", "5")
}
