// teams.go implements handlers for team management.
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

// TeamHandlers handles team endpoints
type TeamHandlers struct {
	teamRepo *repositories.TeamRepository
	recorder *audit.Recorder
}

// NewTeamHandlers creates a new TeamHandlers instance
func NewTeamHandlers(db *sql.DB) *TeamHandlers {
	return &TeamHandlers{
		teamRepo: repositories.NewTeamRepository(db),
		recorder: audit.NewRecorder(repositories.NewLogRepository(db)),
	}
}

type createTeamRequest struct {
	TeamName     string  `json:"teamName" binding:"required"`
	BusinessUnit string  `json:"businessUnit" binding:"required"`
	PTL          *string `json:"ptl"`
}

type patchTeamRequest struct {
	TeamName     *string `json:"teamName"`
	BusinessUnit *string `json:"businessUnit"`
	PTL          *string `json:"ptl"`
}

func teamResponse(t *models.Team) gin.H {
	return gin.H{
		"id":           t.ID,
		"teamName":     t.TeamName,
		"businessUnit": t.BusinessUnit,
		"ptl":          t.PTL,
		"createdAt":    t.CreatedAt,
		"updatedAt":    t.UpdatedAt,
	}
}

// ListTeamsHandler lists all teams ordered by name
// GET /api/v1/teams
func (h *TeamHandlers) ListTeamsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		teams, err := h.teamRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list teams",
			})
			return
		}

		out := make([]gin.H, 0, len(teams))
		for _, t := range teams {
			out = append(out, teamResponse(t))
		}
		c.JSON(http.StatusOK, gin.H{"teams": out})
	}
}

// GetTeamHandler retrieves a single team
// GET /api/v1/teams/:id
func (h *TeamHandlers) GetTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		team, err := h.teamRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get team",
			})
			return
		}
		if team == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Team not found",
			})
			return
		}

		c.JSON(http.StatusOK, teamResponse(team))
	}
}

// CreateTeamHandler creates a team. Team names are unique.
// POST /api/v1/teams
func (h *TeamHandlers) CreateTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		existing, err := h.teamRepo.GetByName(c.Request.Context(), req.TeamName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create team",
			})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error": "A team with this name already exists",
			})
			return
		}

		team := &models.Team{
			TeamName:     req.TeamName,
			BusinessUnit: req.BusinessUnit,
			PTL:          req.PTL,
		}
		if err := h.teamRepo.Create(c.Request.Context(), team); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create team",
			})
			return
		}

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionAddedTeam,
			TargetKind: models.TargetTeam,
			TargetID:   team.ID,
			TargetName: team.TeamName,
			Changes:    audit.CreationChanges(team.DisplayFields()),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to record audit entry",
			})
			return
		}

		c.JSON(http.StatusCreated, teamResponse(team))
	}
}

// UpdateTeamHandler applies a partial update to a team
// PATCH /api/v1/teams/:id
func (h *TeamHandlers) UpdateTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		var req patchTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request body",
			})
			return
		}

		team, err := h.teamRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get team",
			})
			return
		}
		if team == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Team not found",
			})
			return
		}

		before := team.DisplayFields()
		if req.TeamName != nil && *req.TeamName != team.TeamName {
			existing, err := h.teamRepo.GetByName(c.Request.Context(), *req.TeamName)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to update team",
				})
				return
			}
			if existing != nil {
				c.JSON(http.StatusConflict, gin.H{
					"error": "A team with this name already exists",
				})
				return
			}
			team.TeamName = *req.TeamName
		}
		if req.BusinessUnit != nil {
			team.BusinessUnit = *req.BusinessUnit
		}
		if req.PTL != nil {
			team.PTL = req.PTL
		}

		if err := h.teamRepo.Update(c.Request.Context(), team); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update team",
			})
			return
		}

		changes := audit.DiffChanges(before, team.DisplayFields())
		if len(changes) > 0 {
			err := h.recorder.Record(c.Request.Context(), audit.Entry{
				Actor:      middleware.Username(c),
				Action:     models.ActionUpdatedTeam,
				TargetKind: models.TargetTeam,
				TargetID:   team.ID,
				TargetName: team.TeamName,
				Changes:    changes,
			})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Failed to record audit entry",
				})
				return
			}
		}

		c.JSON(http.StatusOK, teamResponse(team))
	}
}

// DeleteTeamHandler removes a team. Projects referencing it fall back to no
// team via the foreign key's ON DELETE SET NULL.
// DELETE /api/v1/teams/:id
func (h *TeamHandlers) DeleteTeamHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}

		team, err := h.teamRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to get team",
			})
			return
		}
		if team == nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Team not found",
			})
			return
		}

		if err := h.teamRepo.Delete(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to delete team",
			})
			return
		}

		err = h.recorder.Record(c.Request.Context(), audit.Entry{
			Actor:      middleware.Username(c),
			Action:     models.ActionRemovedTeam,
			TargetKind: models.TargetTeam,
			TargetID:   team.ID,
			TargetName: team.TeamName,
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
