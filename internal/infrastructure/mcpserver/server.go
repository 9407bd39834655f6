// Package mcpserver exposes the compliance engine as MCP tools.
package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ersonp/sarcheck/internal/domain/services"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

// New creates an MCP server with the engine tools registered.
// A nil rules uses services.DefaultRuleSet.
func New(rules *services.RuleSet) *mcp.Server {
	if rules == nil {
		rules = services.DefaultRuleSet()
	}
	et := &EngineTools{Rules: rules}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "sarcheck",
		Version: Version,
	}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "extract_5ws",
		Description: "Extract Who/What/When/Where/Why facts from case evidence records",
	}, et.Extract5Ws)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "run_compliance_checklist",
		Description: "Run the SAR narrative compliance checklist (5Ws, chronology, clarity, speculation, length)",
	}, et.RunChecklist)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "diff_narratives",
		Description: "Compare two narrative versions paragraph by paragraph with word-level edits",
	}, et.DiffNarratives)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "build_remediation_prompt",
		Description: "Build a text-generation prompt that fixes the failed checklist items of a narrative",
	}, et.BuildRemediationPrompt)

	return srv
}
