package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

const testNarrative = "On 2024-01-15 Jane Doe, Customer ID 1001, deposited 9,500.50 USD in cash at the New York branch. " +
	"The deposit triggered the structuring alert rule R17."

const testRecord = `{"name":"Jane Doe","customer_id":1001,"reason":"Structuring","transaction_amount":9500.5,` +
	`"timestamp":"2024-01-15T10:30:00","country":"US","risk_score":85}`

func newTestServer() *Server {
	return NewServer(config.ServerConfig{AllowedOrigins: []string{"https://review.example.com"}}, nil)
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	rr := doRequest(t, newTestServer(), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantWho    []string
	}{
		{name: "single mapping", body: `{"records":` + testRecord + `}`, wantStatus: http.StatusOK, wantWho: []string{"Jane Doe", "Customer ID 1001"}},
		{name: "sequence", body: `{"records":[` + testRecord + `,{"name":"John Roe"}]}`, wantStatus: http.StatusOK, wantWho: []string{"Jane Doe", "Customer ID 1001", "John Roe"}},
		{name: "missing records", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "scalar records", body: `{"records":"Jane"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed json", body: `{"records":`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/extract", tt.body)

			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus != http.StatusOK {
				assert.Contains(t, decodeBody[map[string]string](t, rr)["error"], "invalid input")
				return
			}
			got := decodeBody[struct {
				Facts entities.FiveWs `json:"facts"`
			}](t, rr)
			assert.Equal(t, tt.wantWho, got.Facts[entities.CategoryWho])
		})
	}
}

func TestCheck(t *testing.T) {
	t.Run("facts from records", func(t *testing.T) {
		body := `{"narrative":` + mustJSON(t, testNarrative) + `,"records":[` + testRecord + `]}`

		rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/check", body)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		report := decodeBody[entities.ComplianceReport](t, rr)
		assert.True(t, report.Overall)
		assert.Len(t, report.Items, 5)
	})

	t.Run("explicit facts", func(t *testing.T) {
		body := `{"narrative":"The funds were likely proceeds of fraud.","facts":{"Who":["Jane Doe"]}}`

		rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/check", body)

		require.Equal(t, http.StatusOK, rr.Code)
		report := decodeBody[entities.ComplianceReport](t, rr)
		assert.False(t, report.Overall)
		assert.Equal(t, 1, report.FiveWsCounts[entities.CategoryWho])
		item, ok := report.Item(entities.CheckNoSpeculation)
		require.True(t, ok)
		assert.False(t, item.Passed)
	})

	t.Run("non-text narrative", func(t *testing.T) {
		rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/check", `{"narrative":42}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeBody[map[string]string](t, rr)["error"], "narrative must be text")
	})
}

func TestDiff(t *testing.T) {
	body := `{"original":"Jane deposited cash.","revised":"Jane deposited cash twice."}`

	t.Run("json", func(t *testing.T) {
		rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/diff", body)

		require.Equal(t, http.StatusOK, rr.Code)
		result := decodeBody[entities.DiffResult](t, rr)
		assert.False(t, result.Identical)
		assert.Equal(t, "Jane deposited cash.", result.OriginalText())
		assert.Equal(t, "Jane deposited cash twice.", result.RevisedText())
	})

	t.Run("html", func(t *testing.T) {
		rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/diff?format=html", body)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rr.Body.String(), `class="diff-ins"`)
	})

	t.Run("identical html", func(t *testing.T) {
		rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/diff?format=html", `{"original":"Same.","revised":"Same."}`)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "No changes detected.")
	})
}

func TestRemediationPrompt(t *testing.T) {
	rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/remediation-prompt", `{"narrative":"Too short."}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decodeBody[struct {
		Prompt string   `json:"prompt"`
		Failed []string `json:"failed"`
	}](t, rr)
	assert.Contains(t, got.Failed, string(entities.CheckFiveWs))
	assert.Contains(t, got.Failed, string(entities.CheckLengthBounds))
	assert.Contains(t, got.Prompt, "Current narrative:\nToo short.")
}

func TestExport(t *testing.T) {
	t.Run("computes report when absent", func(t *testing.T) {
		body := `{"narrative":` + mustJSON(t, testNarrative) + `,"facts":[` + testRecord + `]}`

		rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/export", body)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		bundle := decodeBody[entities.ExportBundle](t, rr)
		assert.Equal(t, services.NarrativeSHA256(testNarrative), bundle.NarrativeSHA256)
		require.NotNil(t, bundle.ChecklistReport)
		assert.True(t, bundle.ChecklistReport.Overall)
		assert.Empty(t, bundle.AuditTrail)
	})

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "narrative not text", body: `{"narrative":["a"],"facts":[]}`, wantErr: "narrative must be text"},
		{name: "facts single mapping", body: `{"narrative":"x","facts":{"name":"Jane"}}`, wantErr: "facts must be a sequence of mappings"},
		{name: "facts contain scalar", body: `{"narrative":"x","facts":[1]}`, wantErr: "expected a mapping"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, newTestServer(), http.MethodPost, "/v1/export", tt.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, decodeBody[map[string]string](t, rr)["error"], tt.wantErr)
		})
	}
}

func TestCORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/check", nil)
	req.Header.Set("Origin", "https://review.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()

	newTestServer().Handler().ServeHTTP(rr, req)

	assert.Equal(t, "https://review.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	undo := zap.ReplaceGlobals(zap.New(core))
	defer undo()

	doRequest(t, newTestServer(), http.MethodPost, "/v1/extract", `{}`)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/v1/extract", fields["path"])
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
