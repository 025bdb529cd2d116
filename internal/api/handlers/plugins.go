// plugins.go implements handlers for the global plugin catalog: CRUD,
// archiving, and deletion.
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/audit"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/repositories"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/middleware"
)

// PluginHandlers handles global plugin catalog endpoints
type PluginHandlers struct {
	pluginRepo *repositories.PluginRepository
	recorder   *audit.Recorder
}

// NewPluginHandlers creates a new PluginHandlers instance
func NewPluginHandlers(db *sql.DB) *PluginHandlers {
	return &PluginHandlers{
		pluginRepo: repositories.NewPluginRepository(db),
		recorder:   audit.NewRecorder(repositories.NewLogRepository(db)),
	}
}

type createPluginRequest struct {
	PluginName string  `json:"pluginName" binding:"required"`
	BaseURL    *string `json:"baseUrl"`
}

type patchPluginRequest struct {
	PluginName *string `json:"pluginName"`
	BaseURL    *string `json:"baseUrl"`
}

// pluginResponse shapes a catalog plugin for JSON output
func pluginResponse(p *models.Plugin) gin.H {
	return gin.H{
		"id":         p.ID,
		"pluginName": p.PluginName,
		"baseUrl":    p.BaseURL,
		"isArchived": p.IsArchived,
		"createdAt":  p.CreatedAt,
		"updatedAt":  p.UpdatedAt,
	}
}

// ListPluginsHandler lists catalog plugins
// GET /api/v1/plugins?includeArchived=true
func (h *PluginHandlers) ListPluginsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		plugins, err := h.pluginRepo.List(c.Request.Context(), c.Query("includeArchived") == "true")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list plugins",
			})
			return
		}

		out := make([]gin.H, 0, len(plugins))
		for _, p := range plugins {
			out = append(out, pluginResponse(p))
		}
		c.JSON(http.StatusOK, gin.H{"plugins": out})
	}
}

// GetPluginHandler retrieves a single catalog plugin
// GET /api/v1/plugins/:id
func (h *PluginHandlers) GetPluginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		plugin, err := h.pluginRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get plugin",
			})
			return
		}
		if plugin == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Plugin not found",
			})
			return
		}

		c.JSON(http.StatusOK, pluginResponse(plugin))
	}
}

// CreatePluginHandler adds a plugin to the catalog. Names are unique.
// POST /api/v1/plugins
func (h *PluginHandlers) CreatePluginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPluginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		existing, err := h.pluginRepo.GetByName(c.Request.Context(), req.PluginName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create plugin",
			})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A plugin with this name already exists",
			})
			return
		}

		plugin := &models.Plugin{PluginName: req.PluginName, BaseURL: req.BaseURL}
		if err := h.pluginRepo.Create(c.Request.Context(), plugin); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create plugin",
			})
			return
		}

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionAddedGlobalPlugin,
			TargetKind: models.TargetGlobalPlugin,
			TargetID:   plugin.ID,
			TargetName: plugin.PluginName,
			Changes:    audit.CreationChanges(plugin.DisplayFields()),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.JSON(http.StatusCreated, pluginResponse(plugin))
	}
}

// UpdatePluginHandler applies a partial update to a catalog plugin
// PATCH /api/v1/plugins/:id
func (h *PluginHandlers) UpdatePluginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req patchPluginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		plugin, err := h.pluginRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get plugin",
			})
			return
		}
		if plugin == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Plugin not found",
			})
			return
		}

		before := plugin.DisplayFields()
		if req.PluginName != nil {
			plugin.PluginName = *req.PluginName
		}
		if req.BaseURL != nil {
			plugin.BaseURL = req.BaseURL
		}

		if err := h.pluginRepo.Update(c.Request.Context(), plugin); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update plugin",
			})
			return
		}

		changes := audit.DiffChanges(before, plugin.DisplayFields())
		if len(changes) > 0 {
			err := h.recorder.Record(c.Request.Context(), audit.Entry{
				Actor:      middleware.Username(c),
				Action:     models.ActionUpdatedGlobalPlugin,
				TargetKind: models.TargetGlobalPlugin,
				TargetID:   plugin.ID,
				TargetName: plugin.PluginName,
				Changes:    changes,
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to record audit entry",
				})
				return
			}
		}

		c.JSON(http.StatusOK, pluginResponse(plugin))
	}
}

// ArchivePluginHandler archives a catalog plugin so it cannot be attached to
// new projects
// POST /api/v1/plugins/:id/archive
func (h *PluginHandlers) ArchivePluginHandler() gin.HandlerFunc {
	return h.setArchived(true, models.ActionArchivedGlobalPlugin)
}

// UnarchivePluginHandler restores an archived catalog plugin
// POST /api/v1/plugins/:id/unarchive
func (h *PluginHandlers) UnarchivePluginHandler() gin.HandlerFunc {
	return h.setArchived(false, models.ActionUnarchivedGlobalPlugin)
}

func (h *PluginHandlers) setArchived(archived bool, action models.LogAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		plugin, err := h.pluginRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get plugin",
			})
			return
		}
		if plugin == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Plugin not found",
			})
			return
		}

		if plugin.IsArchived == archived {
			c.JSON(http.StatusOK, pluginResponse(plugin))
			return
		}

		if err := h.pluginRepo.SetArchived(c.Request.Context(), id, archived); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update plugin",
			})
			return
		}
		plugin.IsArchived = archived

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     action,
			TargetKind: models.TargetGlobalPlugin,
			TargetID:   plugin.ID,
			TargetName: plugin.PluginName,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.JSON(http.StatusOK, pluginResponse(plugin))
	}
}

// DeletePluginHandler removes a catalog plugin entirely. Its project
// instances are removed by cascade; their audit history stays readable via
// the captured names.
// DELETE /api/v1/plugins/:id
func (h *PluginHandlers) DeletePluginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		plugin, err := h.pluginRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get plugin",
			})
			return
		}
		if plugin == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Plugin not found",
			})
			return
		}

		if err := h.pluginRepo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete plugin",
			})
			return
		}

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionRemovedGlobalPlugin,
			TargetKind: models.TargetGlobalPlugin,
			TargetID:   plugin.ID,
			TargetName: plugin.PluginName,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.Status(http.StatusNoContent)
	}
}
