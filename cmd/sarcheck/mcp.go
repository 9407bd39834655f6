package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
	"github.com/ersonp/sarcheck/internal/infrastructure/mcpserver"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the compliance engine as an MCP server on stdio",
		Long:  "Serves the extract_5ws, run_compliance_checklist, diff_narratives and build_remediation_prompt tools to MCP clients.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(_ *config.Config, rules *services.RuleSet) error {
				return mcpserver.New(rules).Run(cmd.Context(), &mcp.StdioTransport{})
			})
		},
	}
}
