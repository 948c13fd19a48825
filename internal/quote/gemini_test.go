package quote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func candidateBody(text string) string {
	resp := generateResponse{}
	resp.Candidates = []struct {
		Content content `json:"content"`
	}{{Content: content{Parts: []part{{Text: text}}}}}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestClient_GenerateRoundTrip(t *testing.T) {
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, Prompt, req.Contents[0].Parts[0].Text)

		w.Write([]byte(candidateBody("  Keep moving.\n")))
	})

	c := NewClient("secret", WithEndpoint(srv.URL))
	line, err := c.Generate(context.Background(), Prompt)
	require.NoError(t, err)
	assert.Equal(t, "Keep moving.", line, "whitespace trimmed from the candidate")
}

func TestClient_MissingKeyFailsWithoutCalling(t *testing.T) {
	var hits atomic.Int32
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	c := NewClient("", WithEndpoint(srv.URL))
	_, err := c.Generate(context.Background(), Prompt)
	assert.Error(t, err)
	assert.Zero(t, hits.Load())
}

func TestClient_MalformedResponses(t *testing.T) {
	for name, body := range map[string]string{
		"no candidates": `{"candidates":[]}`,
		"empty text":    candidateBody("   "),
		"not json":      `<!doctype html>`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			})
			c := NewClient("secret", WithEndpoint(srv.URL))
			_, err := c.Generate(context.Background(), Prompt)
			assert.Error(t, err)
		})
	}
}

func TestClient_ServerErrorSurfaces(t *testing.T) {
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := NewClient("secret", WithEndpoint(srv.URL))
	_, err := c.Generate(context.Background(), Prompt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.False(t, c.Suspended(), "only 429 suspends the client")
}

func TestClient_RateLimitSuspends(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	var hits atomic.Int32
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	c := NewClient("secret",
		WithEndpoint(srv.URL),
		WithQuotaCooldown(5*time.Minute),
		WithClientNow(func() time.Time { return now }),
	)

	_, err := c.Generate(context.Background(), Prompt)
	require.Error(t, err)
	assert.True(t, c.Suspended())
	assert.Equal(t, int32(1), hits.Load())

	// While suspended the client fails fast without touching the API.
	_, err = c.Generate(context.Background(), Prompt)
	require.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())

	// Past the cooldown it tries again.
	now = now.Add(5*time.Minute + time.Second)
	assert.False(t, c.Suspended())
	_, _ = c.Generate(context.Background(), Prompt)
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_TimeoutIsAnError(t *testing.T) {
	srv := quoteServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(candidateBody("late")))
	})

	c := NewClient("secret", WithEndpoint(srv.URL), WithTimeout(20*time.Millisecond))
	_, err := c.Generate(context.Background(), Prompt)
	assert.Error(t, err)
}
