// Package models - team.go defines the Team model grouping projects under a
// business unit with a named project team lead.
package models

import "time"

// Team represents a delivery team that owns zero or more projects
type Team struct {
	ID           int64
	TeamName     string
	BusinessUnit string
	PTL          *string // project team lead, optional
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayFields returns the loggable field set of the team, keyed by the
// property names used in audit messages.
func (t *Team) DisplayFields() map[string]string {
	ptl := ""
	if t.PTL != nil {
		ptl = *t.PTL
	}
	return map[string]string{
		"TeamName":     t.TeamName,
		"BusinessUnit": t.BusinessUnit,
		"PTL":          ptl,
	}
}
