package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
)

// EngineTools holds what the tool handlers need.
type EngineTools struct {
	Rules *services.RuleSet
}

// --- Input types ---

type Extract5WsInput struct {
	Records []map[string]any `json:"records" jsonschema:"Evidence records (customer profile, transactions, alerts)"`
}

type RunChecklistInput struct {
	Narrative string              `json:"narrative" jsonschema:"SAR narrative text to evaluate"`
	Records   []map[string]any    `json:"records,omitempty" jsonschema:"Evidence records the facts are extracted from"`
	Facts     map[string][]string `json:"facts,omitempty" jsonschema:"Pre-extracted facts keyed by Who, What, When, Where, Why; overrides records"`
}

type DiffNarrativesInput struct {
	Original string `json:"original" jsonschema:"Original narrative, usually the AI draft"`
	Revised  string `json:"revised" jsonschema:"Revised narrative, usually the analyst edit"`
	Format   string `json:"format,omitempty" jsonschema:"Output format: json (default) or html"`
}

type BuildRemediationPromptInput struct {
	Narrative string           `json:"narrative" jsonschema:"Narrative that failed the checklist"`
	Records   []map[string]any `json:"records,omitempty" jsonschema:"Evidence records used to evaluate the narrative"`
}

// --- Handlers ---

func (t *EngineTools) Extract5Ws(_ context.Context, _ *mcp.CallToolRequest, input Extract5WsInput) (*mcp.CallToolResult, any, error) {
	return toolJSON(services.Extract(toRecords(input.Records)))
}

func (t *EngineTools) RunChecklist(_ context.Context, _ *mcp.CallToolRequest, input RunChecklistInput) (*mcp.CallToolResult, any, error) {
	facts, err := toFacts(input.Facts)
	if err != nil {
		return toolError("Invalid facts: %v", err), nil, nil
	}
	if facts == nil {
		facts = services.Extract(toRecords(input.Records))
	}
	return toolJSON(t.Rules.Evaluate(input.Narrative, facts))
}

func (t *EngineTools) DiffNarratives(_ context.Context, _ *mcp.CallToolRequest, input DiffNarrativesInput) (*mcp.CallToolResult, any, error) {
	result := services.Diff(input.Original, input.Revised)

	switch input.Format {
	case "", "json":
		return toolJSON(result)
	case "html":
		return toolText(services.RenderDiffHTML(result)), nil, nil
	default:
		return toolError("Unknown format: %s (use json or html)", input.Format), nil, nil
	}
}

func (t *EngineTools) BuildRemediationPrompt(_ context.Context, _ *mcp.CallToolRequest, input BuildRemediationPromptInput) (*mcp.CallToolResult, any, error) {
	report := t.Rules.Evaluate(input.Narrative, services.Extract(toRecords(input.Records)))
	return toolText(services.BuildRemediationPrompt(report, input.Narrative)), nil, nil
}

// --- Helpers ---

func toRecords(in []map[string]any) []entities.FactRecord {
	records := make([]entities.FactRecord, 0, len(in))
	for _, m := range in {
		records = append(records, m)
	}
	return records
}

// toFacts returns nil when no facts were supplied.
func toFacts(in map[string][]string) (entities.FiveWs, error) {
	if in == nil {
		return nil, nil
	}
	facts := make(entities.FiveWs, len(in))
	for key, values := range in {
		c := entities.Category(key)
		if !c.IsValid() {
			return nil, fmt.Errorf("unknown category %q", key)
		}
		facts[c] = values
	}
	return facts.Compact(), nil
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
