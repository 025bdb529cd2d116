// record.go builds change records from entity field snapshots and persists
// audit log entries at mutation commit time.
package audit

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/telemetry"
)

// Writer persists audit log entries. Implemented by the log repository.
type Writer interface {
	CreateLog(ctx context.Context, entry *models.Log) error
}

// Recorder writes one audit log entry per committed mutation. The actor label
// is captured at write time so history stays attributable after the acting
// account is deleted.
type Recorder struct {
	logs Writer
	now  func() time.Time
}

// NewRecorder creates a Recorder backed by the given writer.
func NewRecorder(logs Writer) *Recorder {
	return &Recorder{logs: logs, now: time.Now}
}

// Entry describes one mutation to record. TargetName should carry the
// human-readable label of the target at mutation time; ProjectName is set for
// project-plugin mutations only.
type Entry struct {
	Actor       string
	Action      models.LogAction
	TargetKind  models.LogTargetKind
	TargetID    int64
	TargetName  string
	ProjectName string
	Changes     []models.LogChange
}

// Record persists the entry in its own transaction, immediately after the
// mutation it describes has committed. A failure here leaves the mutation
// durable without its audit record; handlers surface that as a server error
// so the gap is visible to the caller.
func (r *Recorder) Record(ctx context.Context, e Entry) error {
	entry := &models.Log{
		ActorLabel: &e.Actor,
		Timestamp:  r.now().UTC(),
		TargetKind: e.TargetKind,
		TargetID:   e.TargetID,
		Action:     e.Action,
		Changes:    e.Changes,
	}
	if e.TargetName != "" {
		name := e.TargetName
		entry.TargetName = &name
	}
	if e.ProjectName != "" {
		name := e.ProjectName
		entry.ProjectName = &name
	}

	if err := r.logs.CreateLog(ctx, entry); err != nil {
		return fmt.Errorf("recording %s for %s %d: %w", e.Action, e.TargetKind, e.TargetID, err)
	}
	telemetry.AuditEntriesWrittenTotal.WithLabelValues(string(e.Action)).Inc()
	return nil
}

// CreationChanges builds the change list for an ADDED_* entry from the created
// entity's field snapshot. Empty values are omitted and properties are sorted
// by name so messages are deterministic.
func CreationChanges(fields map[string]string) []models.LogChange {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	changes := make([]models.LogChange, 0, len(keys))
	for _, k := range keys {
		changes = append(changes, models.LogChange{Property: k, NewValue: fields[k]})
	}
	return changes
}

// DiffChanges builds the change list for an UPDATED_* entry by comparing two
// field snapshots of the same entity. Only properties whose value actually
// changed are included, sorted by name. Properties present in one snapshot
// only are diffed against the empty string.
func DiffChanges(before, after map[string]string) []models.LogChange {
	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}
	for k := range after {
		keys[k] = struct{}{}
	}

	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	var changes []models.LogChange
	for _, k := range sorted {
		if before[k] == after[k] {
			continue
		}
		changes = append(changes, models.LogChange{
			Property: k,
			OldValue: before[k],
			NewValue: after[k],
		})
	}
	return changes
}
