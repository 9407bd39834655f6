package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

const testNarrative = "On 2024-01-15 Jane Doe, Customer ID 1001, deposited 9,500.50 USD in cash at the New York branch. " +
	"The deposit triggered the structuring alert rule R17."

func testRecord() map[string]any {
	return map[string]any{
		"name":               "Jane Doe",
		"customer_id":        1001,
		"reason":             "Structuring",
		"transaction_amount": 9500.5,
		"timestamp":          "2024-01-15T10:30:00",
		"country":            "US",
		"risk_score":         85,
	}
}

// connect starts the server on in-memory transports and returns a client session.
func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	_, err := New(nil).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session
}

// callTool calls a tool and returns its text content and error flag.
func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text, result.IsError
}

func TestListTools(t *testing.T) {
	session := connect(t)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"extract_5ws", "run_compliance_checklist", "diff_narratives", "build_remediation_prompt",
	}, names)
}

func TestExtract5Ws(t *testing.T) {
	session := connect(t)

	text, isErr := callTool(t, session, "extract_5ws", map[string]any{
		"records": []any{testRecord()},
	})

	require.False(t, isErr, text)
	var facts entities.FiveWs
	require.NoError(t, json.Unmarshal([]byte(text), &facts))
	assert.Equal(t, []string{"Jane Doe", "Customer ID 1001"}, facts[entities.CategoryWho])
	assert.Equal(t, []string{"2024-01-15 10:30:00"}, facts[entities.CategoryWhen])

	text, isErr = callTool(t, session, "extract_5ws", map[string]any{"records": []any{}})
	require.False(t, isErr, text)
	var empty entities.FiveWs
	require.NoError(t, json.Unmarshal([]byte(text), &empty))
	assert.Empty(t, empty)
}

func TestRunChecklist(t *testing.T) {
	session := connect(t)

	tests := []struct {
		name        string
		args        map[string]any
		wantOverall bool
		wantErr     string
	}{
		{
			name:        "facts from records",
			args:        map[string]any{"narrative": testNarrative, "records": []any{testRecord()}},
			wantOverall: true,
		},
		{
			name:        "no evidence",
			args:        map[string]any{"narrative": testNarrative},
			wantOverall: false,
		},
		{
			name:    "unknown category",
			args:    map[string]any{"narrative": testNarrative, "facts": map[string]any{"How": []any{"cash"}}},
			wantErr: "unknown category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callTool(t, session, "run_compliance_checklist", tt.args)

			if tt.wantErr != "" {
				assert.True(t, isErr)
				assert.Contains(t, text, tt.wantErr)
				return
			}
			require.False(t, isErr, text)
			var report entities.ComplianceReport
			require.NoError(t, json.Unmarshal([]byte(text), &report))
			assert.Equal(t, tt.wantOverall, report.Overall)
			assert.Len(t, report.Items, 5)
		})
	}
}

func TestDiffNarratives(t *testing.T) {
	session := connect(t)
	args := map[string]any{"original": "Cash deposit.", "revised": "Cash deposit at branch."}

	text, isErr := callTool(t, session, "diff_narratives", args)
	require.False(t, isErr, text)
	var result entities.DiffResult
	require.NoError(t, json.Unmarshal([]byte(text), &result))
	assert.Equal(t, "Cash deposit at branch.", result.RevisedText())

	args["format"] = "html"
	text, isErr = callTool(t, session, "diff_narratives", args)
	require.False(t, isErr, text)
	assert.Contains(t, text, `class="diff-ins"`)

	args["format"] = "pdf"
	text, isErr = callTool(t, session, "diff_narratives", args)
	assert.True(t, isErr)
	assert.Contains(t, text, "Unknown format")
}

func TestBuildRemediationPrompt(t *testing.T) {
	session := connect(t)

	text, isErr := callTool(t, session, "build_remediation_prompt", map[string]any{
		"narrative": "It possibly involved fraud.",
	})

	require.False(t, isErr, text)
	assert.Contains(t, text, "You must fix: ")
	assert.Contains(t, text, string(entities.CheckNoSpeculation))
	assert.Contains(t, text, "Current narrative:\nIt possibly involved fraud.")
}
