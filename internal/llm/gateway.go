// Package llm implements the shared, pooled LLM gateway abstraction used
// by the Validation Arbiter (C2, sign/semantic probes) and the Reasoning
// Core (C10, optional polish): retry-with-exponential-backoff, an
// in-memory (or Redis) response cache keyed on prompt+system+temperature,
// an optional fallback client, and process-global cost/latency counters
// (§5, §6).
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lerian-kg/kgarbiter/pkg/merrors"
	"github.com/lerian-kg/kgarbiter/pkg/mlog"
)

// Request is one generation call (§6).
type Request struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Response is the gateway's result shape (§6).
type Response struct {
	Content    string
	TokensIn   int
	TokensOut  int
	LatencyMs  int64
	Cached     bool
}

// Client is the external LLM backend the gateway pools and retries
// against. The concrete backend (an actual model API) is out of scope
// (§1: "LLM invocation"); only this interface and the gateway around it
// are part of the engine.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Cache is the gateway's shared response cache, keyed on
// prompt+system+temperature (§5).
type Cache interface {
	Get(ctx context.Context, key string) (Response, bool)
	Set(ctx context.Context, key string, resp Response, ttl time.Duration)
}

// Stats is a snapshot of the gateway's process-global counters (§5).
type Stats struct {
	Calls      int64
	CacheHits  int64
	TokensIn   int64
	TokensOut  int64
	Retries    int64
	FailuresFinal int64
}

// Gateway is the shared pooled LLM client described in §5/§6.
type Gateway struct {
	client   Client
	fallback Client
	cache    Cache
	cacheTTL time.Duration
	logger   mlog.Logger

	calls, cacheHits, tokensIn, tokensOut, retries, failures atomic.Int64
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithFallback sets a secondary client tried once after the primary
// exhausts its retries.
func WithFallback(c Client) Option { return func(g *Gateway) { g.fallback = c } }

// WithCache sets the shared response cache (defaults to an unbounded
// in-memory cache if never set).
func WithCache(c Cache, ttl time.Duration) Option {
	return func(g *Gateway) { g.cache = c; g.cacheTTL = ttl }
}

// WithLogger attaches a structured logger.
func WithLogger(l mlog.Logger) Option { return func(g *Gateway) { g.logger = l } }

// NewGateway builds a gateway around client with an in-memory cache and
// no fallback unless overridden by opts.
func NewGateway(client Client, opts ...Option) *Gateway {
	g := &Gateway{client: client, cache: NewMemoryCache(), cacheTTL: 10 * time.Minute, logger: mlog.NopLogger{}}
	for _, o := range opts {
		o(g)
	}

	return g
}

func cacheKey(req Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%.4f", req.Prompt, req.System, req.Temperature)

	return hex.EncodeToString(h.Sum(nil))
}

// Generate calls the underlying client, serving from cache when
// possible and retrying transient failures with exponential backoff
// (§5, §6). On timeout the caller gets a retryable LLMServiceError so it
// can degrade to rule-based mode (§5 "Cancellation / timeouts").
func (g *Gateway) Generate(ctx context.Context, req Request) (Response, error) {
	key := cacheKey(req)

	if g.cache != nil {
		if resp, ok := g.cache.Get(ctx, key); ok {
			g.cacheHits.Add(1)
			resp.Cached = true

			return resp, nil
		}
	}

	g.calls.Add(1)

	resp, err := g.callWithRetry(ctx, g.client, req)
	if err != nil && g.fallback != nil {
		resp, err = g.callWithRetry(ctx, g.fallback, req)
	}

	if err != nil {
		g.failures.Add(1)
		return Response{}, err
	}

	g.tokensIn.Add(int64(resp.TokensIn))
	g.tokensOut.Add(int64(resp.TokensOut))

	if g.cache != nil {
		g.cache.Set(ctx, key, resp, g.cacheTTL)
	}

	return resp, nil
}

// GenerateJSON is Generate with the response content parsed as a JSON
// block (§6 generate_json).
func (g *Gateway) GenerateJSON(ctx context.Context, req Request, out any) (Response, error) {
	req.JSONMode = true

	resp, err := g.Generate(ctx, req)
	if err != nil {
		return resp, err
	}

	block := extractJSONBlock(resp.Content)
	if err := json.Unmarshal([]byte(block), out); err != nil {
		return resp, merrors.NewLLMServiceError("parse", err)
	}

	return resp, nil
}

func extractJSONBlock(content string) string {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')

	if start < 0 || end < start {
		return content
	}

	return content[start : end+1]
}

// callWithRetry retries transient client errors with exponential
// backoff, bounded to a handful of attempts so a degraded LLM never
// stalls the caller indefinitely (§5).
func (g *Gateway) callWithRetry(ctx context.Context, client Client, req Request) (Response, error) {
	var resp Response

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)

	op := func() error {
		start := time.Now()

		r, err := client.Generate(ctx, req)
		if err != nil {
			lerr := classify(err)
			if !merrors.IsRetryable(lerr) {
				return backoff.Permanent(lerr)
			}

			g.retries.Add(1)

			return lerr
		}

		r.LatencyMs = time.Since(start).Milliseconds()
		resp = r

		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return Response{}, err
	}

	return resp, nil
}

// classify wraps a raw client error as an LLMServiceError, preserving
// the kind if the client already tagged it (§7 failure taxonomy).
func classify(err error) error {
	var svcErr *merrors.LLMServiceError
	if asLLMServiceError(err, &svcErr) {
		return svcErr
	}

	return merrors.NewLLMServiceError("unknown", err)
}

func asLLMServiceError(err error, target **merrors.LLMServiceError) bool {
	e, ok := err.(*merrors.LLMServiceError)
	if ok {
		*target = e
	}

	return ok
}

// Stats returns a point-in-time snapshot of the gateway's process-global
// counters (§5).
func (g *Gateway) Stats() Stats {
	return Stats{
		Calls:         g.calls.Load(),
		CacheHits:     g.cacheHits.Load(),
		TokensIn:      g.tokensIn.Load(),
		TokensOut:     g.tokensOut.Load(),
		Retries:       g.retries.Load(),
		FailuresFinal: g.failures.Load(),
	}
}
