// Package models defines the applicant validation request and response types.
package models

import "strings"

// RiskLevel buckets a numeric risk score for downstream decisioning.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// RiskLevelFromScore maps a 0-100 risk score onto a level. The gateway
// recomputes the level locally rather than trusting the upstream's label, so
// both fields in the response always agree.
func RiskLevelFromScore(score int) RiskLevel {
	switch {
	case score < 30:
		return RiskLevelLow
	case score < 60:
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

// ValidateRequest is the inbound applicant payload.
type ValidateRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100,name_chars"`
	LastName  string `json:"last_name" validate:"required,max=100,name_chars"`
	IDNumber  string `json:"id_number" validate:"required,min=13,max=13,numeric,said"`
}

// Normalize trims surrounding whitespace before validation so a trailing
// space does not fail the name charset check.
func (r *ValidateRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.IDNumber = strings.TrimSpace(r.IDNumber)
}

// RiskScoreResponse is the successful validation response.
type RiskScoreResponse struct {
	RiskScore     int       `json:"risk_score"`
	RiskLevel     RiskLevel `json:"risk_level"`
	CorrelationID string    `json:"correlation_id"`
}
