// projects.go implements handlers for project CRUD and archiving. Every
// successful mutation writes one audit log entry attributed to the
// authenticated user.
package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/audit"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/models"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/db/repositories"
	"github.com/appsfactorygmbh/project-metadata-platform-backend-sub001/internal/middleware"
)

// ProjectHandlers handles project management endpoints
type ProjectHandlers struct {
	projectRepo *repositories.ProjectRepository
	teamRepo    *repositories.TeamRepository
	recorder    *audit.Recorder
}

// NewProjectHandlers creates a new ProjectHandlers instance
func NewProjectHandlers(db *sql.DB) *ProjectHandlers {
	return &ProjectHandlers{
		projectRepo: repositories.NewProjectRepository(db),
		teamRepo:    repositories.NewTeamRepository(db),
		recorder:    audit.NewRecorder(repositories.NewLogRepository(db)),
	}
}

type createProjectRequest struct {
	ProjectName  string  `json:"projectName" binding:"required"`
	ClientName   string  `json:"clientName" binding:"required"`
	OfferID      *string `json:"offerId"`
	Company      string  `json:"company"`
	CompanyState string  `json:"companyState"`
	IsmsLevel    string  `json:"ismsLevel"`
	Notes        *string `json:"notes"`
	TeamID       *int64  `json:"teamId"`
}

type patchProjectRequest struct {
	ProjectName  *string `json:"projectName"`
	ClientName   *string `json:"clientName"`
	OfferID      *string `json:"offerId"`
	Company      *string `json:"company"`
	CompanyState *string `json:"companyState"`
	IsmsLevel    *string `json:"ismsLevel"`
	Notes        *string `json:"notes"`
	TeamID       *int64  `json:"teamId"`
}

// projectResponse shapes a project for JSON output
func projectResponse(p *models.Project) gin.H {
	return gin.H{
		"id":           p.ID,
		"projectName":  p.ProjectName,
		"clientName":   p.ClientName,
		"offerId":      p.OfferID,
		"company":      p.Company,
		"companyState": p.CompanyState,
		"ismsLevel":    p.IsmsLevel,
		"isArchived":   p.IsArchived,
		"notes":        p.Notes,
		"teamId":       p.TeamID,
		"createdAt":    p.CreatedAt,
		"updatedAt":    p.UpdatedAt,
	}
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid id",
		})
		return 0, false
	}
	return id, true
}

// ListProjectsHandler lists projects, excluding archived ones unless asked
// GET /api/v1/projects?includeArchived=true&teamId=7&search=shop
func (h *ProjectHandlers) ListProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters := repositories.ProjectFilters{
			IncludeArchived: c.Query("includeArchived") == "true",
		}
		if raw := c.Query("teamId"); raw != "" {
			teamID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid teamId",
				})
				return
			}
			filters.TeamID = &teamID
		}
		if search := c.Query("search"); search != "" {
			filters.Search = &search
		}

		projects, err := h.projectRepo.List(c.Request.Context(), filters)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list projects",
			})
			return
		}

		out := make([]gin.H, 0, len(projects))
		for _, p := range projects {
			out = append(out, projectResponse(p))
		}
		c.JSON(http.StatusOK, gin.H{"projects": out})
	}
}

// GetProjectHandler retrieves a single project
// GET /api/v1/projects/:id
func (h *ProjectHandlers) GetProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		project, err := h.projectRepo.GetByID(c.Request.Context(), id)
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

		c.JSON(http.StatusOK, projectResponse(project))
	}
}

// CreateProjectHandler creates a project and records an ADDED_PROJECT entry
// POST /api/v1/projects
func (h *ProjectHandlers) CreateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		project := &models.Project{
			ProjectName:  req.ProjectName,
			ClientName:   req.ClientName,
			OfferID:      req.OfferID,
			Company:      req.Company,
			CompanyState: models.CompanyStateExternal,
			IsmsLevel:    models.IsmsLevelNormal,
			Notes:        req.Notes,
			TeamID:       req.TeamID,
		}
		if req.CompanyState != "" {
			state := models.CompanyState(req.CompanyState)
			if !state.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid companyState",
				})
				return
			}
			project.CompanyState = state
		}
		if req.IsmsLevel != "" {
			level := models.IsmsLevel(req.IsmsLevel)
			if !level.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid ismsLevel",
				})
				return
			}
			project.IsmsLevel = level
		}

		if req.TeamID != nil {
			team, err := h.teamRepo.GetByID(c.Request.Context(), *req.TeamID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to resolve team",
				})
				return
			}
			if team == nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Team not found",
				})
				return
			}
		}

		if err := h.projectRepo.Create(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create project",
			})
			return
		}

		err := h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionAddedProject,
			TargetKind: models.TargetProject,
			TargetID:   project.ID,
			TargetName: project.ProjectName,
			Changes:    audit.CreationChanges(project.DisplayFields()),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.JSON(http.StatusCreated, projectResponse(project))
	}
}

// UpdateProjectHandler applies a partial update and records the field-level
// changes in an UPDATED_PROJECT entry
// PATCH /api/v1/projects/:id
func (h *ProjectHandlers) UpdateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req patchProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		project, err := h.projectRepo.GetByID(c.Request.Context(), id)
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

		before := project.DisplayFields()

		if req.ProjectName != nil {
			project.ProjectName = *req.ProjectName
		}
		if req.ClientName != nil {
			project.ClientName = *req.ClientName
		}
		if req.OfferID != nil {
			project.OfferID = req.OfferID
		}
		if req.Company != nil {
			project.Company = *req.Company
		}
		if req.CompanyState != nil {
			state := models.CompanyState(*req.CompanyState)
			if !state.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid companyState",
				})
				return
			}
			project.CompanyState = state
		}
		if req.IsmsLevel != nil {
			level := models.IsmsLevel(*req.IsmsLevel)
			if !level.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Invalid ismsLevel",
				})
				return
			}
			project.IsmsLevel = level
		}
		if req.Notes != nil {
			project.Notes = req.Notes
		}
		if req.TeamID != nil {
			team, err := h.teamRepo.GetByID(c.Request.Context(), *req.TeamID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to resolve team",
				})
				return
			}
			if team == nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Team not found",
				})
				return
			}
			project.TeamID = req.TeamID
		}

		if err := h.projectRepo.Update(c.Request.Context(), project); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update project",
			})
			return
		}

		changes := audit.DiffChanges(before, project.DisplayFields())
		if len(changes) > 0 {
			err := h.recorder.Record(c.Request.Context(), audit.Entry{
				Actor:      middleware.Username(c),
				Action:     models.ActionUpdatedProject,
				TargetKind: models.TargetProject,
				TargetID:   project.ID,
				TargetName: project.ProjectName,
				Changes:    changes,
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to record audit entry",
				})
				return
			}
		}

		c.JSON(http.StatusOK, projectResponse(project))
	}
}

// ArchiveProjectHandler archives a project
// POST /api/v1/projects/:id/archive
func (h *ProjectHandlers) ArchiveProjectHandler() gin.HandlerFunc {
	return h.setArchived(true, models.ActionArchivedProject)
}

// UnarchiveProjectHandler restores an archived project
// POST /api/v1/projects/:id/unarchive
func (h *ProjectHandlers) UnarchiveProjectHandler() gin.HandlerFunc {
	return h.setArchived(false, models.ActionUnarchivedProject)
}

// setArchived flips the archived flag and records the matching entry. Calls
// that do not change the state return 200 without writing an entry.
func (h *ProjectHandlers) setArchived(archived bool, action models.LogAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		project, err := h.projectRepo.GetByID(c.Request.Context(), id)
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

		if project.IsArchived == archived {
			c.JSON(http.StatusOK, projectResponse(project))
			return
		}

		if err := h.projectRepo.SetArchived(c.Request.Context(), id, archived); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update project",
			})
			return
		}
		project.IsArchived = archived

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     action,
			TargetKind: models.TargetProject,
			TargetID:   project.ID,
			TargetName: project.ProjectName,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.JSON(http.StatusOK, projectResponse(project))
	}
}
