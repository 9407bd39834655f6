package entities

// CheckKey is the stable identifier of a checklist item.
type CheckKey string

const (
	CheckFiveWs        CheckKey = "5Ws_present"
	CheckChronology    CheckKey = "chronology"
	CheckClarity       CheckKey = "clarity"
	CheckNoSpeculation CheckKey = "no_speculation"
	CheckLengthBounds  CheckKey = "length_bounds"
)

// ChecklistItem is the outcome of one compliance check.
type ChecklistItem struct {
	Key         CheckKey     `json:"key"`
	Label       string       `json:"label"`
	Passed      bool         `json:"passed"`
	Remediation string       `json:"remediation"`
	Details     *ItemDetails `json:"details,omitempty"`
}

// ItemDetails carries optional structured evidence for an item.
type ItemDetails struct {
	// First and Last are the chronology boundaries, formatted as TimestampLayout.
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	// Error describes When entries that were discarded because they did not parse.
	Error string `json:"error,omitempty"`

	Missing []Category `json:"missing,omitempty"`
	Matches []string   `json:"matches,omitempty"`
}

// ComplianceReport is the result of one evaluation run.
type ComplianceReport struct {
	Overall      bool             `json:"overall"`
	Length       int              `json:"length"`
	FiveWsCounts map[Category]int `json:"five_ws_counts"`
	Items        []ChecklistItem  `json:"items"`
}

// Failed returns the items that did not pass, in report order.
func (r *ComplianceReport) Failed() []ChecklistItem {
	var failed []ChecklistItem
	for _, item := range r.Items {
		if !item.Passed {
			failed = append(failed, item)
		}
	}
	return failed
}

// Item looks up an item by key.
func (r *ComplianceReport) Item(key CheckKey) (ChecklistItem, bool) {
	for _, item := range r.Items {
		if item.Key == key {
			return item, true
		}
	}
	return ChecklistItem{}, false
}

// FailedKeys returns the keys of failed items.
func (r *ComplianceReport) FailedKeys() []string {
	failed := r.Failed()
	keys := make([]string, 0, len(failed))
	for _, item := range failed {
		keys = append(keys, string(item.Key))
	}
	return keys
}
