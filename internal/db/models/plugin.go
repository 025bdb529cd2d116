// Package models - plugin.go defines the global plugin catalog entry and the
// per-project plugin instance linking a project to a catalog plugin with its
// concrete URL.
package models

import "time"

// Plugin represents a global plugin (integration) available to projects
type Plugin struct {
	ID         int64
	PluginName string
	BaseURL    *string // template URL of the integration, optional
	IsArchived bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DisplayFields returns the loggable field set of the catalog plugin.
func (p *Plugin) DisplayFields() map[string]string {
	baseURL := ""
	if p.BaseURL != nil {
		baseURL = *p.BaseURL
	}
	return map[string]string{
		"PluginName": p.PluginName,
		"BaseUrl":    baseURL,
	}
}

// ProjectPlugin represents one plugin instance attached to a project.
// The same catalog plugin may be attached to a project multiple times with
// different URLs (e.g. two Jenkins controllers), distinguished by DisplayName.
type ProjectPlugin struct {
	ID          int64
	ProjectID   int64
	PluginID    int64
	URL         string
	DisplayName *string // falls back to the catalog plugin name when nil
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayFields returns the loggable field set of the plugin instance.
func (pp *ProjectPlugin) DisplayFields() map[string]string {
	displayName := ""
	if pp.DisplayName != nil {
		displayName = *pp.DisplayName
	}
	return map[string]string{
		"Url":         pp.URL,
		"DisplayName": displayName,
	}
}
