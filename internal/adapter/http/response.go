package http

import (
	"encoding/json"
	"net/http"

	"github.com/couchcryptid/landslide-risk-engine/internal/domain"
)

type assessmentList struct {
	Assessments []domain.RiskAssessment `json:"assessments"`
	Count       int                     `json:"count"`
}

type summaryResponse struct {
	Total   int                      `json:"total"`
	ByLevel map[domain.RiskLevel]int `json:"by_level"`
}

type historyResponse struct {
	LocationKey string    `json:"location_key"`
	Scores      []float64 `json:"scores"`
}

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
