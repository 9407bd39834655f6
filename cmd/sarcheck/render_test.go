package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
	"github.com/ersonp/sarcheck/internal/infrastructure/config"
)

func TestReportMarkdown(t *testing.T) {
	report := services.RunChecklist("It is likely that the funds were proceeds of fraud.", entities.FiveWs{
		entities.CategoryWho: {"Jane Doe"},
	})

	md := reportMarkdown(report)

	assert.Contains(t, md, "# Compliance checklist: FAIL")
	assert.Contains(t, md, "| 1 | 0 | 0 | 0 | 0 |")
	assert.Contains(t, md, "- [ ] **All 5Ws captured")
	assert.Contains(t, md, "missing: What, When, Where, Why")
	assert.Contains(t, md, "matched: likely")
	assert.Contains(t, md, "  > ")
}

func TestRenderDiffTerminal(t *testing.T) {
	t.Run("identical", func(t *testing.T) {
		out := renderDiffTerminal(services.Diff("Same text.", "Same text."))
		assert.Equal(t, entities.NoChangesMessage+"\n", out)
	})

	t.Run("changes keep both sides' words", func(t *testing.T) {
		out := renderDiffTerminal(services.Diff("Jane deposited cash.", "Jane deposited a cheque."))
		assert.Contains(t, out, "Jane")
		assert.Contains(t, out, "cheque")
		assert.Contains(t, out, "cash")
	})
}

func TestDetailsString(t *testing.T) {
	assert.Equal(t, "a=1 b=x", detailsString(map[string]any{"b": "x", "a": 1}))
	assert.Empty(t, detailsString(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alerts.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,country\nJane Doe,US\n"), 0644))

	records, err := loadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0]["name"])

	records, err = loadRecords("")
	require.NoError(t, err)
	assert.Nil(t, records)

	_, err = loadRecords(filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestReadBatchItems(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "a", "narrative": "x", "records": [{"name": "Jane Doe"}]},
		{"narrative": "y"}
	]`), 0644))

	items, err := readBatchItems(path)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "Jane Doe", items[0].Records[0]["name"])
	assert.Equal(t, "2", items[1].ID)

	require.NoError(t, os.WriteFile(path, []byte(`{"id": 1}`), 0644))
	_, err = readBatchItems(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing batch file")
}

func TestRuleSetFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.RulesConfig
		wantMin int
		wantMax int
		wantErr bool
	}{
		{name: "defaults", cfg: config.RulesConfig{}, wantMin: 100, wantMax: 1000},
		{name: "overrides", cfg: config.RulesConfig{MinLength: 200, MaxLength: 1500}, wantMin: 200, wantMax: 1500},
		{name: "inverted bounds", cfg: config.RulesConfig{MinLength: 500, MaxLength: 100}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := ruleSetFromConfig(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, rules.MinLength)
			assert.Equal(t, tt.wantMax, rules.MaxLength)
		})
	}
}

func TestRuleSetFromConfig_CustomPhrases(t *testing.T) {
	rules, err := ruleSetFromConfig(config.RulesConfig{SpeculativePhrases: []string{"allegedly"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"allegedly"}, rules.SpeculativeMatches("He allegedly moved funds."))
	assert.Empty(t, rules.SpeculativeMatches("It is likely."))
}
