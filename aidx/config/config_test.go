package config

import (
	"os"
	"path/filepath"
	"testing"

	internal "github.com/ZanzyTHEbar/asset-index/aidx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	tempDir, err := os.MkdirTemp("", "assetidx-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Empty(suite.T(), cfg.Index.Roots)
	assert.Equal(suite.T(), internal.DefaultDelimiters, cfg.Index.Delimiters)
	assert.False(suite.T(), cfg.Index.CaseSensitive)
	assert.Equal(suite.T(), internal.DefaultIgnoreFile, cfg.Index.IgnoreFile)
	assert.Equal(suite.T(), internal.DefaultSnapshotPath, cfg.Index.Output)
	assert.Equal(suite.T(), internal.DefaultSnapshotPath, cfg.Query.Snapshot)
	assert.True(suite.T(), cfg.Query.Strict)
	assert.Equal(suite.T(), "info", cfg.Log.Level)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configContent := `
index:
  roots:
    - ./assets
    - ./extra
  delimiters: ["_", "."]
  caseSensitive: true
  output: build/assets.aidx
query:
  strict: false
log:
  level: debug
`
	configPath := filepath.Join(suite.tempDir, "test-config.yaml")
	require.NoError(suite.T(), os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), []string{"./assets", "./extra"}, cfg.Index.Roots)
	assert.Equal(suite.T(), []string{"_", "."}, cfg.Index.Delimiters)
	assert.True(suite.T(), cfg.Index.CaseSensitive)
	assert.Equal(suite.T(), "build/assets.aidx", cfg.Index.Output)
	assert.Equal(suite.T(), internal.DefaultIgnoreFile, cfg.Index.IgnoreFile, "unset keys keep defaults")
	assert.False(suite.T(), cfg.Query.Strict)
	assert.Equal(suite.T(), "debug", cfg.Log.Level)
	assert.Equal(suite.T(), *cfg, AppConfig)
}

func (suite *ConfigTestSuite) TestLoadConfigFromWorkingDirectory() {
	configContent := "index:\n  output: local.aidx\n"
	require.NoError(suite.T(), os.WriteFile(filepath.Join(suite.tempDir, "config.yaml"), []byte(configContent), 0o644))

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "local.aidx", cfg.Index.Output)
}

func (suite *ConfigTestSuite) TestLoadConfigEnvironmentOverride() {
	suite.T().Setenv("ASSETIDX_INDEX_OUTPUT", "from-env.aidx")
	suite.T().Setenv("ASSETIDX_LOG_LEVEL", "warn")

	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "from-env.aidx", cfg.Index.Output)
	assert.Equal(suite.T(), "warn", cfg.Log.Level)
}

func (suite *ConfigTestSuite) TestLoadConfigInvalidFile() {
	configPath := filepath.Join(suite.tempDir, "broken.yaml")
	require.NoError(suite.T(), os.WriteFile(configPath, []byte("index: [unclosed"), 0o644))

	cfg, err := LoadConfig(configPath)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), cfg)
}

func (suite *ConfigTestSuite) TestValidate() {
	cfg := IndexConfig{Output: "out.aidx"}
	assert.ErrorIs(suite.T(), cfg.Validate(), ErrNoRoots)

	cfg.Roots = []string{"assets", "  "}
	assert.Error(suite.T(), cfg.Validate())

	cfg.Roots = []string{"assets"}
	assert.NoError(suite.T(), cfg.Validate())

	cfg.Output = ""
	assert.Error(suite.T(), cfg.Validate())
}
