package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

type ConfigTestSuite struct {
	suite.Suite
}

func (s *ConfigTestSuite) TestDefaults() {
	config := Default()
	require.NotNil(s.T(), config)

	require.Equal(s.T(), 30*time.Second, config.StopTimeout)

	require.NotEmpty(s.T(), config.Gateway.Urls)
	require.Equal(s.T(), 5*time.Second, config.Gateway.CheckTimeout)
	require.Equal(s.T(), 5*time.Minute, config.Gateway.HealthCacheTTL)

	require.NotEmpty(s.T(), config.Bundler.Urls)
	require.Equal(s.T(), "0.01", config.Bundler.MinBalance)
	require.Equal(s.T(), "arweave", config.Bundler.Currency)

	require.Equal(s.T(), 10, config.Batch.MaxFiles)
	require.Equal(s.T(), int64(10485760), config.Batch.MaxBytes)
	require.Equal(s.T(), time.Minute, config.Batch.Timeout)

	require.Equal(s.T(), 20, config.Archive.QueryLimit)
	require.Equal(s.T(), 100, config.Archive.QueryLimitMax)
}

func (s *ConfigTestSuite) TestLoadFromFile() {
	path := filepath.Join(s.T().TempDir(), "config.json")
	content := `{
		"Batch": {"MaxFiles": 25, "Timeout": "5s"},
		"Archive": {"AppName": "OtherApp"}
	}`
	require.Nil(s.T(), os.WriteFile(path, []byte(content), 0o644))

	config, err := Load(path)
	require.Nil(s.T(), err)
	require.Equal(s.T(), 25, config.Batch.MaxFiles)
	require.Equal(s.T(), 5*time.Second, config.Batch.Timeout)
	require.Equal(s.T(), "OtherApp", config.Archive.AppName)

	// Everything else keeps its default
	require.Equal(s.T(), int64(10485760), config.Batch.MaxBytes)
}

func (s *ConfigTestSuite) TestMissingFile() {
	_, err := Load("/does/not/exist.json")
	require.NotNil(s.T(), err)
}
