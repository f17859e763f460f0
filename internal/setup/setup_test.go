package setup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqna/internal/config"
	"docqna/pkg/chat"
	"docqna/pkg/documents"
)

// testConfig returns a config pointing every path at temp dirs, with a
// dummy key so provider construction succeeds. Nothing here talks to a
// real endpoint; inference is never invoked.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Provider.APIKey = "sk-test123"
	cfg.Storage.DocumentsPath = t.TempDir()
	cfg.Storage.CachedPromptsPath = filepath.Join(t.TempDir(), "cached_prompts")
	cfg.Storage.TranscriptsPath = t.TempDir()
	return cfg
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewResponder(t *testing.T) {
	t.Run("openai", func(t *testing.T) {
		responder, err := NewResponder(testConfig(t), zerolog.Nop())
		require.NoError(t, err)
		assert.NotNil(t, responder)
	})

	t.Run("anthropic", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Provider.Name = "anthropic"

		responder, err := NewResponder(cfg, zerolog.Nop())
		require.NoError(t, err)
		assert.NotNil(t, responder)
	})

	t.Run("unsupported provider", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Provider.Name = "gemini"

		_, err := NewResponder(cfg, zerolog.Nop())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported provider")
	})
}

func TestDocumentSession(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.Storage.DocumentsPath, "report.md", "Q2 revenue was 4.2M.")
	cfg.Context = []config.ContextSection{
		{ID: "glossary", Description: "Terms used in the reports.", Content: "ARR: annual recurring revenue"},
	}

	session, err := DocumentSession(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	prompt := session.Prompt()
	assert.Contains(t, prompt, "Provided Documents:")
	assert.Contains(t, prompt, "--- report.md ---")
	assert.Contains(t, prompt, "Q2 revenue was 4.2M.")
	assert.Contains(t, prompt, "Terms used in the reports.")
	assert.Contains(t, prompt, "ARR: annual recurring revenue")

	// The session opens with the system turn only; no greeting configured.
	history := session.History()
	require.Len(t, history, 1)
	assert.Equal(t, chat.RoleSystem, history[0].Role)
}

func TestDocumentSessionDefaultMessage(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.Storage.DocumentsPath, "notes.txt", "hello")
	cfg.Prompt.DefaultMessage = "Hi, ask me about the documents."

	session, err := DocumentSession(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	history := session.History()
	require.Len(t, history, 2)
	assert.Equal(t, chat.RoleAssistant, history[1].Role)
	assert.Equal(t, "Hi, ask me about the documents.", history[1].Content)
}

func TestDocumentSessionMissingFolder(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.DocumentsPath = filepath.Join(t.TempDir(), "nope")

	_, err := DocumentSession(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load documents")
}

func TestDocumentSessionUsesPromptCache(t *testing.T) {
	cfg := testConfig(t)
	writeDoc(t, cfg.Storage.DocumentsPath, "report.md", "Q2 revenue was 4.2M.")

	_, err := DocumentSession(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	// Tamper with the cache entry; an unchanged corpus must hit it.
	corpus, err := documents.NewLoader(documents.LoaderConfig{
		Root:   cfg.Storage.DocumentsPath,
		Logger: zerolog.Nop(),
	}).Load()
	require.NoError(t, err)

	cache := documents.NewPromptCache(cfg.Storage.CachedPromptsPath)
	require.NoError(t, cache.Put(corpus.Digest(), "TAMPERED BLOB"))

	session, err := DocumentSession(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Contains(t, session.Prompt(), "TAMPERED BLOB")
}

func TestDocumentSessionCacheDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Cache.Prompts = false
	writeDoc(t, cfg.Storage.DocumentsPath, "report.md", "content")

	_, err := DocumentSession(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	// No cache directory should appear.
	_, statErr := os.Stat(cfg.Storage.CachedPromptsPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDocumentSessionRESTContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"usd_eur": 0.91}`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	writeDoc(t, cfg.Storage.DocumentsPath, "report.md", "content")
	cfg.Context = []config.ContextSection{
		{ID: "rates", Description: "Current FX rates.", URL: server.URL},
		{ID: "dead", URL: "http://127.0.0.1:1/unreachable"},
	}

	session, err := DocumentSession(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	prompt := session.Prompt()
	assert.Contains(t, prompt, "Status: 200")
	assert.Contains(t, prompt, `{"usd_eur": 0.91}`)
	// The unreachable section is skipped, not fatal.
	assert.NotContains(t, prompt, "unreachable")
}

func TestFinanceSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
		  "chart": {
		    "result": [
		      {
		        "meta": {"currency": "USD", "symbol": "TSLA"},
		        "timestamp": [1719792000],
		        "indicators": {
		          "quote": [
		            {"open": [210.5], "high": [215.0], "low": [208.0], "close": [214.2], "volume": [98000000]}
		          ]
		        }
		      }
		    ],
		    "error": null
		  }
		}`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Finance.BaseURL = server.URL

	session, err := FinanceSession(context.Background(), cfg, zerolog.Nop(), []string{"TSLA"}, "1mo")
	require.NoError(t, err)

	prompt := session.Prompt()
	assert.Contains(t, prompt, "Provided Market Data:")
	assert.Contains(t, prompt, "Stock data for TSLA")
	assert.Contains(t, prompt, "| 2024-07-01 |")
}

func TestFinanceSessionConfigFallbacks(t *testing.T) {
	var gotPath, gotRange string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRange = r.URL.Query().Get("range")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
		  "chart": {
		    "result": [
		      {
		        "meta": {"currency": "USD", "symbol": "MSFT"},
		        "timestamp": [1719792000],
		        "indicators": {
		          "quote": [
		            {"open": [1.0], "high": [1.0], "low": [1.0], "close": [1.0], "volume": [1]}
		          ]
		        }
		      }
		    ],
		    "error": null
		  }
		}`)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Finance.BaseURL = server.URL
	cfg.Finance.Tickers = []string{"MSFT"}
	cfg.Finance.Period = "5d"

	_, err := FinanceSession(context.Background(), cfg, zerolog.Nop(), nil, "")
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/MSFT", gotPath)
	assert.Equal(t, "5d", gotRange)
}

func TestFinanceSessionNoTickers(t *testing.T) {
	cfg := testConfig(t)
	cfg.Finance.Tickers = nil

	_, err := FinanceSession(context.Background(), cfg, zerolog.Nop(), nil, "")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no tickers configured")
}

func TestResumeSession(t *testing.T) {
	cfg := testConfig(t)
	snap := chat.Snapshot{
		Prompt: "You answer questions.",
		History: []chat.Turn{
			{Role: chat.RoleSystem, Content: "You answer questions."},
			{Role: chat.RoleUser, Content: "What is X?"},
			{Role: chat.RoleAssistant, Content: "X is Y"},
		},
	}

	session, err := ResumeSession(cfg, snap, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, snap.History, session.History())
	assert.Equal(t, 2, session.VisibleTurns())
}
