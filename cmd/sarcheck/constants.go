package main

// Default limits for CLI commands.
const (
	DefaultListLimit   = 50
	DefaultSearchLimit = 5
)

// Output formats per command.
var (
	reportFormats = []string{"text", "markdown", "json"}
	diffFormats   = []string{"text", "json", "html"}
	exportFormats = []string{"json", "csv", "markdown"}
	auditFormats  = []string{"text", "json", "csv"}
)
