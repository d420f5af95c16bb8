package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socivio/socivio/internal/models"
)

// ToggleProjectRequest identifies the project whose flag should flip
type ToggleProjectRequest struct {
	ExternalAccountID string `json:"external_account_id" binding:"required"`
}

// ProjectDetail is a project in API responses
type ProjectDetail struct {
	ID                string `json:"id"`
	ExternalAccountID string `json:"external_account_id"`
	InsightsEnabled   bool   `json:"insights_enabled"`
	AIRepliesEnabled  bool   `json:"ai_replies_enabled"`
}

func projectDetail(p *models.Project) ProjectDetail {
	return ProjectDetail{
		ID:                p.ID,
		ExternalAccountID: p.ExternalAccountID,
		InsightsEnabled:   p.InsightsEnabled,
		AIRepliesEnabled:  p.AIRepliesEnabled,
	}
}

// loadOwnProject fetches a project by external account id, enforcing ownership
func (s *Server) loadOwnProject(c *gin.Context, externalAccountID string) (*models.Project, bool) {
	sessionData, _ := GetSessionData(c)

	var project models.Project
	err := s.db.Where("external_account_id = ? AND user_id = ?", externalAccountID, sessionData.UserID).
		First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Project not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load project")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return nil, false
	}
	return &project, true
}

// @Summary Get or create project
// @Description Returns the project for an account, creating it on first access
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Param external_account_id path string true "External account ID"
// @Success 200 {object} ProjectDetail
// @Router /api/projects/{external_account_id} [get]
func (s *Server) getOrCreateProject(c *gin.Context) {
	externalAccountID := c.Param("external_account_id")
	sessionData, _ := GetSessionData(c)

	var project models.Project
	err := s.db.Where("external_account_id = ? AND user_id = ?", externalAccountID, sessionData.UserID).
		First(&project).Error
	if err == gorm.ErrRecordNotFound {
		project = models.Project{
			UserID:            sessionData.UserID,
			ExternalAccountID: externalAccountID,
		}
		if err := s.db.Create(&project).Error; err != nil {
			s.logger.Error().Err(err).Msg("Failed to create project")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to create project"})
			return
		}
		s.logger.Info().
			Str("project_id", project.ID).
			Str("external_account_id", externalAccountID).
			Msg("Project created")
	} else if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load project")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, projectDetail(&project))
}

// @Summary Toggle insights
// @Description Flip the project's insights flag
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ToggleProjectRequest true "Toggle request"
// @Success 200 {object} ProjectDetail
// @Router /api/projects/toggle-insights [post]
func (s *Server) toggleProjectInsights(c *gin.Context) {
	var req ToggleProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	project, ok := s.loadOwnProject(c, req.ExternalAccountID)
	if !ok {
		return
	}

	if err := s.db.Model(project).Update("insights_enabled", !project.InsightsEnabled).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to toggle insights")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	project.InsightsEnabled = !project.InsightsEnabled

	c.JSON(http.StatusOK, projectDetail(project))
}

// @Summary Toggle AI replies
// @Description Flip the project's AI replies flag
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ToggleProjectRequest true "Toggle request"
// @Success 200 {object} ProjectDetail
// @Router /api/projects/toggle-ai-replies [post]
func (s *Server) toggleProjectAIReplies(c *gin.Context) {
	var req ToggleProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	project, ok := s.loadOwnProject(c, req.ExternalAccountID)
	if !ok {
		return
	}

	if err := s.db.Model(project).Update("ai_replies_enabled", !project.AIRepliesEnabled).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to toggle AI replies")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	project.AIRepliesEnabled = !project.AIRepliesEnabled

	c.JSON(http.StatusOK, projectDetail(project))
}
