package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "qproof.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "localhost", cfg.Server.Addr)
	assert.Equal(t, 6000, cfg.Server.Port)
	assert.Equal(t, EntropyDrand, cfg.Entropy.Source)
	assert.Equal(t, OptimizerJSONRPC, cfg.Optimizer.Kind)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := createConfigFile(t, `
[server]
port = 9999

[entropy]
source = "fixed"
fixed_seed = "ACTUAL_QUANTUM_SEED_FROM_API_12345"

[optimizer]
kind = "fixed"
fixed_path = ["PATH_OPTIMAL_1", "PATH_OPTIMAL_2"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Addr)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, EntropyFixed, cfg.Entropy.Source)
	assert.Equal(t, "ACTUAL_QUANTUM_SEED_FROM_API_12345", cfg.Entropy.FixedSeed)
	assert.Equal(t, []string{"PATH_OPTIMAL_1", "PATH_OPTIMAL_2"}, cfg.Optimizer.FixedPath)
	assert.Equal(t, "ap-northeast-2", cfg.Optimizer.AWS.Region)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := createConfigFile(t, `
[server]
keyThatDoesntExist = true
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "server.keyThatDoesntExist")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfigRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qproof.toml")
	cfg := Default()
	cfg.Optimizer.Kind = OptimizerGRPC
	cfg.Optimizer.AWS.InstanceID = "i-0123456789"
	cfg.Oracle.URL = "https://oracle.example/trigger_csip"
	require.NoError(t, cfg.WriteFile(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"unknown entropy source": func(c *Config) { c.Entropy.Source = "dice" },
		"drand without urls":     func(c *Config) { c.Entropy.DrandURLs = nil },
		"drand without chain":    func(c *Config) { c.Entropy.DrandChainHash = "" },
		"qrng without url":       func(c *Config) { c.Entropy.Source, c.Entropy.QRNGURL = EntropyQRNG, "" },
		"fixed without seed":     func(c *Config) { c.Entropy.Source = EntropyFixed },
		"unknown optimizer kind": func(c *Config) { c.Optimizer.Kind = "oracle" },
		"oracle without target":  func(c *Config) { c.Oracle.URL, c.Oracle.TargetContract = "http://oracle", "" },
		"remote without address": func(c *Config) { c.Optimizer.Address = "" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.Optimizer.Address = ""
	cfg.Optimizer.AWS.InstanceID = "i-0123456789"
	assert.NoError(t, cfg.Validate())
}
