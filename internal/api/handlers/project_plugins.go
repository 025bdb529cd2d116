// project_plugins.go implements handlers for the plugin instances attached to
// a project. The PUT endpoint replaces the full set in one request and records
// one audit entry per added, updated, or removed instance.
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/audit"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/repositories"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/middleware"
)

// ProjectPluginHandlers handles the plugin instances of a project
type ProjectPluginHandlers struct {
	projectRepo       *repositories.ProjectRepository
	pluginRepo        *repositories.PluginRepository
	projectPluginRepo *repositories.ProjectPluginRepository
	recorder          *audit.Recorder
}

// NewProjectPluginHandlers creates a new ProjectPluginHandlers instance
func NewProjectPluginHandlers(db *sql.DB) *ProjectPluginHandlers {
	return &ProjectPluginHandlers{
		projectRepo:       repositories.NewProjectRepository(db),
		pluginRepo:        repositories.NewPluginRepository(db),
		projectPluginRepo: repositories.NewProjectPluginRepository(db),
		recorder:          audit.NewRecorder(repositories.NewLogRepository(db)),
	}
}

// projectPluginItem is one plugin instance in the PUT request body. Items
// carrying an ID update the existing instance; items without one attach a new
// instance. Stored instances missing from the body are removed.
type projectPluginItem struct {
	ID          *int64  `json:"id"`
	PluginID    int64   `json:"pluginId" binding:"required"`
	URL         string  `json:"url" binding:"required"`
	DisplayName *string `json:"displayName"`
}

type putProjectPluginsRequest struct {
	Plugins []projectPluginItem `json:"plugins"`
}

// projectPluginResponse shapes a plugin instance for JSON output
func projectPluginResponse(pp *models.ProjectPlugin) gin.H {
	return gin.H{
		"id":          pp.ID,
		"pluginId":    pp.PluginID,
		"url":         pp.URL,
		"displayName": pp.DisplayName,
	}
}

// ListProjectPluginsHandler lists the plugin instances of a project
// GET /api/v1/projects/:id/plugins
func (h *ProjectPluginHandlers) ListProjectPluginsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c)
		if !ok {
			return
		}

		project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get project",
			})
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			return
		}

		plugins, err := h.projectPluginRepo.ListByProject(c.Request.Context(), projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list project plugins",
			})
			return
		}

		out := make([]gin.H, 0, len(plugins))
		for _, pp := range plugins {
			out = append(out, projectPluginResponse(pp))
		}
		c.JSON(http.StatusOK, gin.H{"plugins": out})
	}
}

// PutProjectPluginsHandler replaces the plugin set of a project. Existing
// instances referenced by ID are updated in place, new items are attached,
// and stored instances absent from the request are removed.
// PUT /api/v1/projects/:id/plugins
func (h *ProjectPluginHandlers) PutProjectPluginsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := pathID(c)
		if !ok {
			return
		}

		var req putProjectPluginsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		project, err := h.projectRepo.GetByID(c.Request.Context(), projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get project",
			})
			return
		}
		if project == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			return
		}

		existing, err := h.projectPluginRepo.ListByProject(c.Request.Context(), projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list project plugins",
			})
			return
		}
		existingByID := make(map[int64]*models.ProjectPlugin, len(existing))
		for _, pp := range existing {
			existingByID[pp.ID] = pp
		}

		actor := middleware.Username(c)
		ctx := c.Request.Context()
		keep := make(map[int64]struct{}, len(req.Plugins))

		for _, item := range req.Plugins {
			if item.ID != nil {
				current, found := existingByID[*item.ID]
				if !found {
					c.JSON(http.StatusBadRequest, gin.H{
						"error": "Plugin instance not found on this project",
					})
					return
				}
				keep[current.ID] = struct{}{}
				if err := h.updateInstance(ctx, actor, project, current, item); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error": "Failed to update project plugins",
					})
					return
				}
				continue
			}

			created, err := h.attachInstance(ctx, actor, project, item)
			if err != nil {
				if errors.Is(err, errUnknownPlugin) {
					c.JSON(http.StatusBadRequest, gin.H{
						"error": "Plugin not found",
					})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to update project plugins",
				})
				return
			}
			keep[created.ID] = struct{}{}
		}

		for _, pp := range existing {
			if _, keeping := keep[pp.ID]; keeping {
				continue
			}
			if err := h.removeInstance(ctx, actor, project, pp); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to update project plugins",
				})
				return
			}
		}

		plugins, err := h.projectPluginRepo.ListByProject(ctx, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list project plugins",
			})
			return
		}
		out := make([]gin.H, 0, len(plugins))
		for _, pp := range plugins {
			out = append(out, projectPluginResponse(pp))
		}
		c.JSON(http.StatusOK, gin.H{"plugins": out})
	}
}

// errUnknownPlugin tags attachment attempts referencing a missing or
// archived catalog plugin so the handler can answer 400 instead of 500.
var errUnknownPlugin = errors.New("plugin not found")

// attachInstance creates one new plugin instance and records the entry
func (h *ProjectPluginHandlers) attachInstance(ctx context.Context, actor string, project *models.Project, item projectPluginItem) (*models.ProjectPlugin, error) {
	plugin, err := h.pluginRepo.GetByID(ctx, item.PluginID)
	if err != nil {
		return nil, err
	}
	if plugin == nil || plugin.IsArchived {
		return nil, errUnknownPlugin
	}

	pp := &models.ProjectPlugin{
		ProjectID:   project.ID,
		PluginID:    item.PluginID,
		URL:         item.URL,
		DisplayName: item.DisplayName,
	}
	if err := h.projectPluginRepo.Create(ctx, pp); err != nil {
		return nil, err
	}

	return pp, h.recorder.Record(ctx, audit.Entry{
		Actor:       actor,
		Action:      models.ActionAddedProjectPlugin,
		TargetKind:  models.TargetProjectPlugin,
		TargetID:    pp.ID,
		TargetName:  plugin.PluginName,
		ProjectName: project.ProjectName,
		Changes:     audit.CreationChanges(pp.DisplayFields()),
	})
}

// updateInstance applies changed fields of one existing instance and records
// the diff when anything changed
func (h *ProjectPluginHandlers) updateInstance(ctx context.Context, actor string, project *models.Project, current *models.ProjectPlugin, item projectPluginItem) error {
	before := current.DisplayFields()
	current.URL = item.URL
	current.DisplayName = item.DisplayName

	changes := audit.DiffChanges(before, current.DisplayFields())
	if len(changes) == 0 {
		return nil
	}

	if err := h.projectPluginRepo.Update(ctx, current); err != nil {
		return err
	}

	return h.recorder.Record(ctx, audit.Entry{
		Actor:       actor,
		Action:      models.ActionUpdatedProjectPlugin,
		TargetKind:  models.TargetProjectPlugin,
		TargetID:    current.ID,
		ProjectName: project.ProjectName,
		Changes:     changes,
	})
}

// removeInstance detaches one instance and records the removal
func (h *ProjectPluginHandlers) removeInstance(ctx context.Context, actor string, project *models.Project, pp *models.ProjectPlugin) error {
	if err := h.projectPluginRepo.Delete(ctx, pp.ID); err != nil {
		return err
	}

	return h.recorder.Record(ctx, audit.Entry{
		Actor:       actor,
		Action:      models.ActionRemovedProjectPlugin,
		TargetKind:  models.TargetProjectPlugin,
		TargetID:    pp.ID,
		ProjectName: project.ProjectName,
	})
}
