// Package models - project.go defines the Project model, the central entity of
// the platform: one row per client project, optionally linked to a team and
// carrying the ISMS classification used for display and filtering.
package models

import "time"

// IsmsLevel classifies the information-security requirements of a project.
type IsmsLevel string

const (
	IsmsLevelNormal   IsmsLevel = "NORMAL"
	IsmsLevelHigh     IsmsLevel = "HIGH"
	IsmsLevelVeryHigh IsmsLevel = "VERY_HIGH"
)

// Valid reports whether l is one of the declared levels.
func (l IsmsLevel) Valid() bool {
	switch l {
	case IsmsLevelNormal, IsmsLevelHigh, IsmsLevelVeryHigh:
		return true
	}
	return false
}

// CompanyState distinguishes internal from external client engagements.
type CompanyState string

const (
	CompanyStateInternal CompanyState = "INTERNAL"
	CompanyStateExternal CompanyState = "EXTERNAL"
)

// Valid reports whether s is one of the declared states.
func (s CompanyState) Valid() bool {
	return s == CompanyStateInternal || s == CompanyStateExternal
}

// Project represents one client project tracked by the platform
type Project struct {
	ID           int64
	ProjectName  string
	ClientName   string
	OfferID      *string // commercial offer reference, optional
	Company      string
	CompanyState CompanyState
	IsmsLevel    IsmsLevel
	IsArchived   bool
	Notes        *string
	TeamID       *int64 // nullable: a project may be unassigned
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayFields returns the loggable field set of the project keyed by
// property name. The audit recorder diffs two of these maps to build the
// change records for UPDATED_PROJECT entries, so the keys double as the
// property names shown in audit messages.
func (p *Project) DisplayFields() map[string]string {
	fields := map[string]string{
		"ProjectName":  p.ProjectName,
		"ClientName":   p.ClientName,
		"Company":      p.Company,
		"CompanyState": string(p.CompanyState),
		"IsmsLevel":    string(p.IsmsLevel),
	}
	if p.OfferID != nil {
		fields["OfferId"] = *p.OfferID
	} else {
		fields["OfferId"] = ""
	}
	if p.Notes != nil {
		fields["Notes"] = *p.Notes
	} else {
		fields["Notes"] = ""
	}
	return fields
}
