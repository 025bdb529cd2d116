// logs.go implements the audit history endpoint. Entries are rendered
// server-side into display messages; clients never see raw log rows.
package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/audit"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/repositories"
)

// LogHandlers handles audit history endpoints
type LogHandlers struct {
	logRepo     *repositories.LogRepository
	projectRepo *repositories.ProjectRepository
}

// NewLogHandlers creates a new LogHandlers instance
func NewLogHandlers(db *sql.DB) *LogHandlers {
	return &LogHandlers{
		logRepo:     repositories.NewLogRepository(db),
		projectRepo: repositories.NewProjectRepository(db),
	}
}

// logMessage pairs a rendered message with its entry timestamp
func logMessage(entry *models.Log) gin.H {
	return gin.H{
		"message":   audit.Format(entry),
		"timestamp": audit.FormatTimestamp(entry),
	}
}

// ListLogsHandler lists audit history, newest first. A projectId query
// narrows to one project's history including its plugin changes; a user query
// narrows to one actor's entries. Filters combine with pagination but not
// with each other.
// GET /api/v1/logs?projectId=&user=&limit=&offset=
func (h *LogHandlers) ListLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > 500 {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid limit",
				})
				return
			}
			limit = n
		}
		offset := 0
		if raw := c.Query("offset"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid offset",
				})
				return
			}
			offset = n
		}

		var (
			entries []*models.Log
			err     error
		)
		switch {
		case c.Query("projectId") != "":
			projectID, perr := strconv.ParseInt(c.Query("projectId"), 10, 64)
			if perr != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid projectId",
				})
				return
			}
			project, perr := h.projectRepo.GetByID(c.Request.Context(), projectID)
			if perr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to list logs",
				})
				return
			}
			if project == nil {
				c.JSON(http.StatusNotFound, gin.H{
					"error": "Project not found",
				})
				return
			}
			entries, err = h.logRepo.ListForProject(c.Request.Context(), project.ID, project.ProjectName)
		case c.Query("user") != "":
			actor := c.Query("user")
			entries, err = h.logRepo.List(c.Request.Context(), repositories.LogFilters{
				ActorLabel: &actor,
				Limit:      limit,
				Offset:     offset,
			})
		default:
			entries, err = h.logRepo.List(c.Request.Context(), repositories.LogFilters{
				Limit:  limit,
				Offset: offset,
			})
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list logs",
			})
			return
		}

		out := make([]gin.H, 0, len(entries))
		for _, entry := range entries {
			out = append(out, logMessage(entry))
		}
		c.JSON(http.StatusOK, gin.H{"logs": out})
	}
}
