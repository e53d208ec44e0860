package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Format: FormatJSON,
		Store:  StoreNone,
		Twitter: Credentials{
			AccessTokenKey:    "ak",
			AccessTokenSecret: "as",
			ConsumerKey:       "ck",
			ConsumerSecret:    "cs",
		},
	}
}

func TestValidateReconcile(t *testing.T) {
	require.NoError(t, validConfig().ValidateReconcile())

	html := validConfig()
	html.Format = FormatHTML
	assert.NoError(t, html.ValidateReconcile())

	badFormat := validConfig()
	badFormat.Format = "csv"
	var cfgErr *ConfigError
	require.ErrorAs(t, badFormat.ValidateReconcile(), &cfgErr)
	assert.Equal(t, KeyFormat, cfgErr.Field)

	badStore := validConfig()
	badStore.Store = "redis"
	require.ErrorAs(t, badStore.ValidateReconcile(), &cfgErr)
	assert.Equal(t, KeyStore, cfgErr.Field)

	noSecret := validConfig()
	noSecret.Twitter.ConsumerSecret = ""
	require.ErrorAs(t, noSecret.ValidateReconcile(), &cfgErr)
	assert.Equal(t, "TWITTER_CONSUMER_SECRET", cfgErr.Field)

	stub := &Config{Format: FormatJSON, Store: StoreNone, UseStub: true}
	assert.NoError(t, stub.ValidateReconcile())
}

func TestValidateDownload(t *testing.T) {
	assert.Error(t, (&Config{}).ValidateDownload())
	assert.NoError(t, (&Config{Input: "profiles.json"}).ValidateDownload())
}

func TestLoadEnvAndViper(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("TWITTER_CONSUMER_KEY=from-file\nMONGO_DATABASE=snapshots_db\n"), 0644))
	t.Setenv("TWITTER_CONSUMER_KEY", "")
	os.Unsetenv("TWITTER_CONSUMER_KEY")
	t.Setenv("MONGO_DATABASE", "")
	os.Unsetenv("MONGO_DATABASE")
	t.Setenv("TWITTER_ACCESS_TOKEN_KEY", "from-env")

	require.NoError(t, LoadEnv(file))
	cfg := FromViper(NewViper())

	assert.Equal(t, "from-file", cfg.Twitter.ConsumerKey)
	assert.Equal(t, "from-env", cfg.Twitter.AccessTokenKey)
	assert.Equal(t, "snapshots_db", cfg.Mongo.Database)
	assert.Equal(t, FormatHTML, cfg.Format)
	assert.Equal(t, StoreNone, cfg.Store)
}

func TestViperIgnoresUnprefixedFlagEnv(t *testing.T) {
	t.Setenv("FORMAT", "json")
	t.Setenv("STORE", "mongo")
	t.Setenv("OUTPUT_DIR", "/tmp/elsewhere")
	t.Setenv("INPUT", "profiles.json")

	cfg := FromViper(NewViper())

	assert.Equal(t, FormatHTML, cfg.Format)
	assert.Equal(t, StoreNone, cfg.Store)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Empty(t, cfg.Input)
}

func TestLoadEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "nope.env")))
}
