// Package audit turns typed audit log entries into human-readable history and
// records new entries when mutations commit. Audit entries are intentionally
// separate from application logs: application logs are ephemeral debug output,
// while audit entries are immutable records with indefinite retention.
//
// Formatting is pure and total: every entry formats to a string, missing
// optional data degrades to placeholders, and unknown actions yield an empty
// verb phrase rather than an error.
package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
)

// DeletedUserLabel is shown when neither the live actor nor the captured
// write-time label is available.
const DeletedUserLabel = "<Deleted User>"

// placeholders per target kind, used when the denormalized target name is gone
const (
	unknownProject = "<Unknown Project>"
	unknownPlugin  = "<Unknown Plugin>"
	unknownTeam    = "<Unknown Team>"
	unknownUser    = "<Unknown User>"
	unknownEntity  = "<Unknown Entity>"
)

// Format renders one audit log entry as "<actor> <verb phrase>".
//
// The actor resolves to the live account email when it still exists, then to
// the write-time label suffixed with "(deleted user)", then to DeletedUserLabel.
// The single separating space is always present, so an unknown action (empty
// verb phrase) leaves a trailing space; callers display the string as-is.
func Format(entry *models.Log) string {
	return actorName(entry) + " " + verbPhrase(entry)
}

// FormatTimestamp renders the entry timestamp as ISO-8601 with explicit
// timezone offset. It is carried next to the message, never embedded in it.
func FormatTimestamp(entry *models.Log) string {
	return entry.Timestamp.Format(time.RFC3339)
}

func actorName(entry *models.Log) string {
	if entry.ActorEmail != nil && *entry.ActorEmail != "" {
		return *entry.ActorEmail
	}
	if entry.ActorLabel != nil && *entry.ActorLabel != "" {
		return *entry.ActorLabel + " (deleted user)"
	}
	return DeletedUserLabel
}

func verbPhrase(entry *models.Log) string {
	switch entry.Action {
	case models.ActionAddedProject:
		return created("project", entry.Changes)
	case models.ActionUpdatedProject:
		return updated("project", entry.Changes)
	case models.ActionArchivedProject:
		return "archived project " + targetName(entry, unknownProject)
	case models.ActionUnarchivedProject:
		return "unarchived project " + targetName(entry, unknownProject)

	case models.ActionAddedProjectPlugin:
		return "added a new plugin to project " + projectName(entry) + propertySuffix(entry.Changes)
	case models.ActionUpdatedProjectPlugin:
		return "updated plugin properties of project " + projectName(entry) + ":" + changeList(entry.Changes)
	case models.ActionRemovedProjectPlugin:
		return "removed a plugin from project " + projectName(entry) + propertySuffix(entry.Changes)

	case models.ActionAddedGlobalPlugin:
		return created("global plugin", entry.Changes)
	case models.ActionUpdatedGlobalPlugin:
		return updated("global plugin", entry.Changes)
	case models.ActionRemovedGlobalPlugin:
		return "removed global plugin " + targetName(entry, unknownPlugin)
	case models.ActionArchivedGlobalPlugin:
		return "archived global plugin " + targetName(entry, unknownPlugin)
	case models.ActionUnarchivedGlobalPlugin:
		return "unarchived global plugin " + targetName(entry, unknownPlugin)

	case models.ActionAddedTeam:
		return created("team", entry.Changes)
	case models.ActionUpdatedTeam:
		return updated("team", entry.Changes)
	case models.ActionRemovedTeam:
		return "removed team " + targetName(entry, unknownTeam)

	case models.ActionAddedUser:
		return created("user", entry.Changes)
	case models.ActionUpdatedUser:
		return updated("user", entry.Changes)
	case models.ActionRemovedUser:
		return "removed user " + targetName(entry, unknownUser)

	default:
		// Unmapped action: defined fallback, not an error.
		return ""
	}
}

// created renders "created a new <entity>", appending the property list when
// the entry carries changes.
func created(entity string, changes []models.LogChange) string {
	return "created a new " + entity + propertySuffix(changes)
}

// updated renders "updated <entity> properties:" followed by one
// " set <property> from <old> to <new>" fragment per change, in list order.
// An empty change list yields the prefix alone.
func updated(entity string, changes []models.LogChange) string {
	return "updated " + entity + " properties:" + changeList(changes)
}

func propertySuffix(changes []models.LogChange) string {
	if len(changes) == 0 {
		return ""
	}
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf("%s = %s", c.Property, c.NewValue))
	}
	return " with properties: " + strings.Join(parts, ", ")
}

func changeList(changes []models.LogChange) string {
	if len(changes) == 0 {
		return " "
	}
	parts := make([]string, 0, len(changes))
	for _, c := range changes {
		parts = append(parts, fmt.Sprintf(" set %s from %s to %s", c.Property, c.OldValue, c.NewValue))
	}
	return strings.Join(parts, ",")
}

func targetName(entry *models.Log, placeholder string) string {
	if entry.TargetName != nil && *entry.TargetName != "" {
		return *entry.TargetName
	}
	if placeholder == "" {
		return unknownEntity
	}
	return placeholder
}

func projectName(entry *models.Log) string {
	if entry.ProjectName != nil && *entry.ProjectName != "" {
		return *entry.ProjectName
	}
	return unknownProject
}
