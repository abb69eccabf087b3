package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	EntropyDrand = "drand"
	EntropyQRNG  = "qrng"
	EntropyFixed = "fixed"

	OptimizerJSONRPC = "jsonrpc"
	OptimizerGRPC    = "grpc"
	OptimizerFixed   = "fixed"

	drandMainnetChainHash = "8990e7a9aaed2ffed73dbd7092123d6f289930540d7651336225dc172e51b2ce"
)

type Config struct {
	Log       LogConfig       `toml:"log"`
	Server    ServerConfig    `toml:"server"`
	Entropy   EntropyConfig   `toml:"entropy"`
	Optimizer OptimizerConfig `toml:"optimizer"`
	Oracle    OracleConfig    `toml:"oracle"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
	Port int    `toml:"port"`
}

type EntropyConfig struct {
	Source         string   `toml:"source"`
	DrandURLs      []string `toml:"drand_urls"`
	DrandChainHash string   `toml:"drand_chain_hash"`
	QRNGURL        string   `toml:"qrng_url"`
	FixedSeed      string   `toml:"fixed_seed"`
}

type OptimizerConfig struct {
	Kind          string    `toml:"kind"`
	Address       string    `toml:"address"`
	FixedPath     []string  `toml:"fixed_path"`
	FailureReason string    `toml:"failure_reason"`
	AWS           AWSConfig `toml:"aws"`
}

// OracleConfig points at the oracle bridge that submits commitments to TargetContract.
// Publishing is off while URL is empty.
type OracleConfig struct {
	URL            string `toml:"url"`
	TargetContract string `toml:"target_contract"`
}

// AWSConfig describes an EC2 instance hosting the optimization engine. It is used when
// InstanceID is set, in which case Address is ignored and the engine is reached at
// Scheme://<instance private ip>:Port.
type AWSConfig struct {
	Region     string `toml:"region"`
	InstanceID string `toml:"instance_id"`
	Scheme     string `toml:"scheme"`
	Port       int    `toml:"port"`
}

func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: "localhost", Port: 6000},
		Entropy: EntropyConfig{
			Source:         EntropyDrand,
			DrandURLs:      []string{"https://api.drand.sh", "https://drand.cloudflare.com"},
			DrandChainHash: drandMainnetChainHash,
			QRNGURL:        "https://qrng.anu.edu.au/API/jsonI.php?length=1&type=hex16&size=32",
		},
		Optimizer: OptimizerConfig{
			Kind:    OptimizerJSONRPC,
			Address: "http://localhost:7000",
			AWS: AWSConfig{
				Region: "ap-northeast-2",
				Scheme: "http",
				Port:   7000,
			},
		},
		Oracle: OracleConfig{TargetContract: "DLMCore"},
	}
}

// Load decodes the TOML file at path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Entropy.Source {
	case EntropyDrand:
		if len(c.Entropy.DrandURLs) == 0 {
			return errors.New("entropy.drand_urls is required for the drand source")
		}
		if c.Entropy.DrandChainHash == "" {
			return errors.New("entropy.drand_chain_hash is required for the drand source")
		}
	case EntropyQRNG:
		if c.Entropy.QRNGURL == "" {
			return errors.New("entropy.qrng_url is required for the qrng source")
		}
	case EntropyFixed:
		if c.Entropy.FixedSeed == "" {
			return errors.New("entropy.fixed_seed is required for the fixed source")
		}
	default:
		return fmt.Errorf("unknown entropy source %q", c.Entropy.Source)
	}

	switch c.Optimizer.Kind {
	case OptimizerJSONRPC, OptimizerGRPC:
		if c.Optimizer.Address == "" && c.Optimizer.AWS.InstanceID == "" {
			return fmt.Errorf("optimizer.address or optimizer.aws.instance_id is required for the %s optimizer", c.Optimizer.Kind)
		}
	case OptimizerFixed:
	default:
		return fmt.Errorf("unknown optimizer kind %q", c.Optimizer.Kind)
	}

	if c.Oracle.URL != "" && c.Oracle.TargetContract == "" {
		return errors.New("oracle.target_contract is required when oracle.url is set")
	}
	return nil
}

// Encode writes c as TOML that Load accepts.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func (c *Config) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Encode(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
