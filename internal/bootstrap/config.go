// Package bootstrap wires the singletons named in spec §9 — graph
// repository, transaction manager, LLM gateway, Domain/Personal
// adapters, reasoner — from a loaded Config, mirroring the teacher's
// InitServersWithOptions/Options dependency-injection shape without the
// HTTP/gRPC server parts (out of scope, §1).
package bootstrap

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/lerian-kg/kgarbiter/internal/llm"
	"github.com/lerian-kg/kgarbiter/pkg/mlog"
	"github.com/lerian-kg/kgarbiter/pkg/mzap"
)

// Backend selects which GraphRepository implementation NewEngine wires.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

// EnvConfig is the process environment surface, mirroring the teacher's
// bootstrap.Config env-tagged struct.
type EnvConfig struct {
	EnvName     string  `env:"ENV_NAME" envDefault:"development"`
	LogLevel    string  `env:"LOG_LEVEL"`
	ConfigDir   string  `env:"KGARBITER_CONFIG_DIR" envDefault:"config"`
	DataDir     string  `env:"KGARBITER_DATA_DIR" envDefault:"data/domain"`
	Backend     Backend `env:"KGARBITER_GRAPH_BACKEND" envDefault:"memory"`
	PostgresDSN string  `env:"KGARBITER_POSTGRES_DSN"`
	RedisURL    string  `env:"KGARBITER_REDIS_URL"`
}

// LoadEnvConfig reads EnvConfig from the process environment.
func LoadEnvConfig() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: parse env config: %w", err)
	}

	return cfg, nil
}

// Options lets callers override what NewEngine would otherwise build or
// load from the environment, the same seam the teacher's Options struct
// gives InitServersWithOptions for tests and alternate entrypoints.
type Options struct {
	Env    *EnvConfig
	Logger mlog.Logger

	// LLMClient is the host-supplied backend for llm.Gateway. The
	// concrete client is out of scope (§1: "LLM invocation"): leaving
	// this nil wires no Gateway at all, and the arbiter/reasoner degrade
	// to rule-based behaviour (§5).
	LLMClient llm.Client
}

func (o *Options) resolveLogger() (mlog.Logger, error) {
	if o != nil && o.Logger != nil {
		return o.Logger, nil
	}

	return mzap.InitializeLoggerWithError()
}

func (o *Options) resolveEnv() (*EnvConfig, error) {
	if o != nil && o.Env != nil {
		return o.Env, nil
	}

	return LoadEnvConfig()
}

func (o *Options) resolveLLMClient() llm.Client {
	if o == nil {
		return nil
	}

	return o.LLMClient
}
