package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lerian-kg/kgarbiter/internal/adapters/llmcache"
	"github.com/lerian-kg/kgarbiter/internal/adapters/memgraph"
	"github.com/lerian-kg/kgarbiter/internal/adapters/pgxgraph"
	"github.com/lerian-kg/kgarbiter/internal/config"
	"github.com/lerian-kg/kgarbiter/internal/domainkg"
	"github.com/lerian-kg/kgarbiter/internal/domainload"
	"github.com/lerian-kg/kgarbiter/internal/graph"
	"github.com/lerian-kg/kgarbiter/internal/ingest"
	"github.com/lerian-kg/kgarbiter/internal/llm"
	"github.com/lerian-kg/kgarbiter/internal/reasoning"
	"github.com/lerian-kg/kgarbiter/internal/validation"
	"github.com/lerian-kg/kgarbiter/pkg/mlog"
)

// Engine bundles every singleton NewEngine wires: the loaded
// configuration, the graph backend, and the three call surfaces hosts
// actually use (Validate, Ingest, Conclude) — spec §9's dependency
// graph, without a server loop around it.
type Engine struct {
	Config *config.Config
	Logger mlog.Logger

	Repo      graph.Repository
	TxManager graph.TxManager

	Arbiter  *validation.Arbiter
	Ingest   *ingest.Engine
	Reasoner *reasoning.Reasoner
	Gateway  *llm.Gateway

	pgxPool   *pgxpool.Pool
	llmClient llm.Client
	dataDir   string
}

// NewEngine loads configuration, connects the selected graph backend,
// seeds it from the domain bootstrap files, and wires the
// validation/ingest/reasoning singletons around it.
func NewEngine(opts *Options) (*Engine, error) {
	logger, err := opts.resolveLogger()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: logger: %w", err)
	}

	envCfg, err := opts.resolveEnv()
	if err != nil {
		return nil, fmt.Errorf("bootstrap: env config: %w", err)
	}

	cfg, err := config.Load(envCfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: load config: %w", err)
	}

	eng := &Engine{Config: cfg, Logger: logger, llmClient: opts.resolveLLMClient(), dataDir: envCfg.DataDir}

	ctx := context.Background()

	if err := eng.connectGraph(ctx, envCfg); err != nil {
		return nil, err
	}

	if err := domainload.Seed(ctx, eng.Repo, cfg.DynamicUpdate, envCfg.DataDir); err != nil {
		return nil, fmt.Errorf("bootstrap: seed domain bootstrap data: %w", err)
	}

	eng.wireGateway(envCfg, logger)

	probe := domainkg.NewProbe(ctx, eng.Repo)

	// eng.Gateway is a *llm.Gateway that may be a nil pointer; passed
	// directly as an interface argument that would be a non-nil interface
	// wrapping a nil pointer, defeating the "gateway == nil" degradation
	// checks in validation/reasoning. Only hand it over when it is real.
	var arbiterGateway validation.Gateway
	var reasoningGateway reasoning.Gateway

	if eng.Gateway != nil {
		arbiterGateway = eng.Gateway
		reasoningGateway = eng.Gateway
	}

	eng.Arbiter = validation.New(cfg, probe, arbiterGateway, logger)
	eng.Ingest = ingest.New(cfg, logger)
	eng.Reasoner = reasoning.New(eng.Repo, cfg.Reasoning, cfg.DynamicUpdate, cfg.AliasDictionary, reasoningGateway, logger)

	return eng, nil
}

func (e *Engine) connectGraph(ctx context.Context, envCfg *EnvConfig) error {
	switch envCfg.Backend {
	case BackendPostgres:
		pool, err := pgxpool.New(ctx, envCfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("bootstrap: connect postgres: %w", err)
		}

		if err := pgxgraph.Migrate(pool); err != nil {
			return fmt.Errorf("bootstrap: migrate postgres: %w", err)
		}

		e.pgxPool = pool
		e.Repo = pgxgraph.NewRepository(pool)
		e.TxManager = pgxgraph.NewTxManager(pool)

		return nil

	default:
		repo := memgraph.NewRepository()
		e.Repo = repo
		e.TxManager = memgraph.NewTxManager(repo)

		return nil
	}
}

// wireGateway leaves Gateway nil when no host-supplied LLM client is
// available: the arbiter and reasoner both degrade to rule-based
// behaviour without one (§5).
func (e *Engine) wireGateway(envCfg *EnvConfig, logger mlog.Logger) {
	if e.llmClient == nil {
		return
	}

	opts := []llm.Option{llm.WithLogger(logger)}

	if envCfg.RedisURL != "" {
		conn := &llmcache.Connection{ConnectionStringSource: envCfg.RedisURL, Logger: logger}
		opts = append(opts, llm.WithCache(llmcache.NewCache(conn), 10*time.Minute))
	}

	e.Gateway = llm.NewGateway(e.llmClient, opts...)
}

// Reset clears every entity and relation from the graph backend and
// re-seeds the domain bootstrap files, restoring the engine to its
// freshly-started state (§9, used by tests between scenarios).
func (e *Engine) Reset(ctx context.Context) error {
	e.Repo.Clear(ctx)

	return domainload.Seed(ctx, e.Repo, e.Config.DynamicUpdate, e.dataDir)
}

// Close releases any pooled connections the engine opened.
func (e *Engine) Close() {
	if e.pgxPool != nil {
		e.pgxPool.Close()
	}
}
