package httpapi

import (
	"fmt"
	"net/http"

	"github.com/ersonp/sarcheck/internal/domain/entities"
	"github.com/ersonp/sarcheck/internal/domain/services"
)

type extractRequest struct {
	Records any `json:"records"`
}

type checkRequest struct {
	Narrative any             `json:"narrative"`
	Records   any             `json:"records,omitempty"`
	Facts     entities.FiveWs `json:"facts,omitempty"`
}

type diffRequest struct {
	Original string `json:"original"`
	Revised  string `json:"revised"`
}

type remediationRequest struct {
	Narrative any                        `json:"narrative"`
	Records   any                        `json:"records,omitempty"`
	Report    *entities.ComplianceReport `json:"report,omitempty"`
}

type exportRequest struct {
	Narrative  any                        `json:"narrative"`
	Facts      any                        `json:"facts"`
	Report     *entities.ComplianceReport `json:"checklist_report,omitempty"`
	AuditTrail []entities.AuditEntry      `json:"audit_trail,omitempty"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	facts, err := services.ExtractAny(req.Records)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"facts": facts})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	narrative, err := narrativeText(req.Narrative)
	if err != nil {
		writeError(w, err)
		return
	}
	facts, err := resolveFacts(req.Facts, req.Records)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.rules.Evaluate(narrative, facts))
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result := services.Diff(req.Original, req.Revised)
	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(services.RenderDiffHTML(result)))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRemediationPrompt(w http.ResponseWriter, r *http.Request) {
	var req remediationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	narrative, err := narrativeText(req.Narrative)
	if err != nil {
		writeError(w, err)
		return
	}

	report := req.Report
	if report == nil {
		facts, err := resolveFacts(nil, req.Records)
		if err != nil {
			writeError(w, err)
			return
		}
		report = s.rules.Evaluate(narrative, facts)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"prompt": services.BuildRemediationPrompt(report, narrative),
		"failed": report.FailedKeys(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	report := req.Report
	if report == nil {
		// Computed only when the inputs are well-formed; NewExportBundle
		// reports the shape errors otherwise.
		if text, ok := req.Narrative.(string); ok {
			if records, err := services.NormalizeRecords(req.Facts); err == nil {
				report = s.rules.Evaluate(text, services.Extract(records))
			}
		}
	}

	bundle, err := services.NewExportBundle(req.Narrative, req.Facts, report, req.AuditTrail)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func narrativeText(v any) (string, error) {
	text, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: narrative must be text, got %T", entities.ErrInvalidInput, v)
	}
	return text, nil
}

// resolveFacts prefers caller-supplied facts and extracts from records
// otherwise. Neither means no facts at all.
func resolveFacts(facts entities.FiveWs, records any) (entities.FiveWs, error) {
	if facts != nil {
		return facts.Compact(), nil
	}
	if records == nil {
		return entities.FiveWs{}, nil
	}
	return services.ExtractAny(records)
}
