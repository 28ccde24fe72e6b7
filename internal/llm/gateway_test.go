package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerian-kg/kgarbiter/pkg/merrors"
)

type fakeClient struct {
	calls   int
	fail    int // number of leading calls that fail with a retryable error
	failErr error
	resp    Response
}

func (f *fakeClient) Generate(_ context.Context, _ Request) (Response, error) {
	f.calls++
	if f.calls <= f.fail {
		if f.failErr != nil {
			return Response{}, f.failErr
		}

		return Response{}, merrors.NewLLMServiceError("timeout", errors.New("timed out"))
	}

	return f.resp, nil
}

func TestGateway_CachesByPromptSystemTemperature(t *testing.T) {
	client := &fakeClient{resp: Response{Content: "hello", TokensOut: 3}}
	gw := NewGateway(client)

	req := Request{Prompt: "p", System: "s", Temperature: 0.2}

	r1, err := gw.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, r1.Cached)

	r2, err := gw.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, r2.Cached)
	assert.Equal(t, 1, client.calls)
}

func TestGateway_RetriesRetryableFailures(t *testing.T) {
	client := &fakeClient{fail: 2, resp: Response{Content: "ok"}}
	gw := NewGateway(client)

	resp, err := gw.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, client.calls)
}

func TestGateway_AuthFailureNotRetried(t *testing.T) {
	client := &fakeClient{fail: 99, failErr: merrors.NewLLMServiceError("auth", errors.New("bad key"))}
	gw := NewGateway(client)

	_, err := gw.Generate(context.Background(), Request{Prompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestGateway_FallsBackToSecondaryClient(t *testing.T) {
	primary := &fakeClient{fail: 99}
	secondary := &fakeClient{resp: Response{Content: "fallback"}}

	gw := NewGateway(primary, WithFallback(secondary))

	resp, err := gw.Generate(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Content)
}

func TestGateway_GenerateJSON_ExtractsBlock(t *testing.T) {
	client := &fakeClient{resp: Response{Content: "here you go: {\"polarity\":\"+\"} thanks"}}
	gw := NewGateway(client)

	var out struct {
		Polarity string `json:"polarity"`
	}

	_, err := gw.GenerateJSON(context.Background(), Request{Prompt: "p"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "+", out.Polarity)
}

func TestGateway_StatsTrackCallsAndCacheHits(t *testing.T) {
	client := &fakeClient{resp: Response{Content: "ok"}}
	gw := NewGateway(client)

	req := Request{Prompt: "p"}
	_, _ = gw.Generate(context.Background(), req)
	_, _ = gw.Generate(context.Background(), req)

	stats := gw.Stats()
	assert.Equal(t, int64(1), stats.Calls)
	assert.Equal(t, int64(1), stats.CacheHits)
}
