// Package models - log.go defines the audit log entry model: one immutable
// record per state-changing action, capturing who did what to which entity,
// with an ordered list of field-level before/after pairs.
package models

import "time"

// LogAction identifies the kind of audited mutation. The set is closed; the
// message formatter branches on it and falls back to an empty verb phrase for
// values outside this set rather than failing.
type LogAction string

const (
	ActionAddedProject      LogAction = "ADDED_PROJECT"
	ActionUpdatedProject    LogAction = "UPDATED_PROJECT"
	ActionArchivedProject   LogAction = "ARCHIVED_PROJECT"
	ActionUnarchivedProject LogAction = "UNARCHIVED_PROJECT"

	ActionAddedProjectPlugin   LogAction = "ADDED_PROJECT_PLUGIN"
	ActionUpdatedProjectPlugin LogAction = "UPDATED_PROJECT_PLUGIN"
	ActionRemovedProjectPlugin LogAction = "REMOVED_PROJECT_PLUGIN"

	ActionAddedGlobalPlugin      LogAction = "ADDED_GLOBAL_PLUGIN"
	ActionUpdatedGlobalPlugin    LogAction = "UPDATED_GLOBAL_PLUGIN"
	ActionRemovedGlobalPlugin    LogAction = "REMOVED_GLOBAL_PLUGIN"
	ActionArchivedGlobalPlugin   LogAction = "ARCHIVED_GLOBAL_PLUGIN"
	ActionUnarchivedGlobalPlugin LogAction = "UNARCHIVED_GLOBAL_PLUGIN"

	ActionAddedTeam   LogAction = "ADDED_TEAM"
	ActionUpdatedTeam LogAction = "UPDATED_TEAM"
	ActionRemovedTeam LogAction = "REMOVED_TEAM"

	ActionAddedUser   LogAction = "ADDED_USER"
	ActionUpdatedUser LogAction = "UPDATED_USER"
	ActionRemovedUser LogAction = "REMOVED_USER"
)

// LogTargetKind identifies which entity family a log entry refers to.
type LogTargetKind string

const (
	TargetProject       LogTargetKind = "project"
	TargetProjectPlugin LogTargetKind = "project-plugin"
	TargetGlobalPlugin  LogTargetKind = "global-plugin"
	TargetTeam          LogTargetKind = "team"
	TargetUser          LogTargetKind = "user"
)

// LogChange is one field-level mutation inside a log entry: the property name
// and its value before and after. Immutable once created; deleted only by
// cascade with its owning entry.
type LogChange struct {
	Property string
	OldValue string
	NewValue string
}

// Log is one audit log entry. Entries are written once when the originating
// mutation commits and are never updated; they are the audit trail.
type Log struct {
	ID int64
	// ActorEmail is the live identity of the acting user, resolved at read
	// time; nil when the account has since been deleted.
	ActorEmail *string
	// ActorLabel is the raw identifier captured at write time. It survives
	// actor deletion and is used as the display fallback.
	ActorLabel *string
	Timestamp  time.Time
	TargetKind LogTargetKind
	TargetID   int64
	// TargetName is a denormalized label of the target (e.g. the project
	// name) so entries stay readable after the target is gone.
	TargetName *string
	// ProjectName carries the owning project's name for project-plugin
	// entries; nil for all other target kinds.
	ProjectName *string
	Action      LogAction
	// Changes is ordered; it may be empty or nil (archive/unarchive entries
	// carry no change list).
	Changes []LogChange
}
