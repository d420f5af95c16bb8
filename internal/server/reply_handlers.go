package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socivio/socivio/internal/models"
)

// ReplyDetail is a draft with its comment context in API responses
type ReplyDetail struct {
	ID          string                  `json:"id"`
	Status      models.ReplyDraftStatus `json:"status"`
	Text        string                  `json:"text"`
	CommentID   string                  `json:"comment_id"`
	CommentText string                  `json:"comment_text"`
	Username    string                  `json:"username"`
	CreatedAt   time.Time               `json:"created_at"`
	PublishedAt *time.Time              `json:"published_at,omitempty"`
}

// @Summary List reply drafts
// @Description List the caller's reply drafts, optionally filtered by status
// @Tags replies
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft|approved|rejected|published"
// @Success 200 {array} ReplyDetail
// @Router /api/replies [get]
func (s *Server) listReplies(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	query := s.db.Model(&models.ReplyDraft{}).
		Joins("JOIN comments ON comments.id = reply_drafts.comment_id").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Joins("JOIN instagram_accounts ON instagram_accounts.id = posts.account_id").
		Where("instagram_accounts.user_id = ?", sessionData.UserID).
		Order("reply_drafts.created_at DESC").
		Preload("Comment")

	if status := c.Query("status"); status != "" {
		query = query.Where("reply_drafts.status = ?", status)
	}

	var drafts []models.ReplyDraft
	if err := query.Find(&drafts).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list reply drafts")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	details := make([]ReplyDetail, len(drafts))
	for i, draft := range drafts {
		details[i] = ReplyDetail{
			ID:          draft.ID,
			Status:      draft.Status,
			Text:        draft.Text,
			CommentID:   draft.CommentID,
			CreatedAt:   draft.CreatedAt,
			PublishedAt: draft.PublishedAt,
		}
		if draft.Comment != nil {
			details[i].CommentText = draft.Comment.Text
			details[i].Username = draft.Comment.Username
		}
	}

	c.JSON(http.StatusOK, details)
}

// loadOwnDraft fetches a draft by id, enforcing ownership through the
// comment's account
func (s *Server) loadOwnDraft(c *gin.Context, draftID string) (*models.ReplyDraft, bool) {
	sessionData, _ := GetSessionData(c)

	var draft models.ReplyDraft
	err := s.db.
		Joins("JOIN comments ON comments.id = reply_drafts.comment_id").
		Joins("JOIN posts ON posts.id = comments.post_id").
		Joins("JOIN instagram_accounts ON instagram_accounts.id = posts.account_id").
		Where("reply_drafts.id = ? AND instagram_accounts.user_id = ?", draftID, sessionData.UserID).
		Preload("Comment").
		First(&draft).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Reply draft not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load reply draft")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return nil, false
	}
	return &draft, true
}

// @Summary Approve reply
// @Description Approve a draft and publish it as an Instagram comment reply
// @Tags replies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Success 200 {object} ReplyDetail
// @Failure 409 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/replies/{id}/approve [post]
func (s *Server) approveReply(c *gin.Context) {
	draft, ok := s.loadOwnDraft(c, c.Param("id"))
	if !ok {
		return
	}

	if draft.Status != models.ReplyStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"detail": "Reply draft already reviewed"})
		return
	}

	sessionData, _ := GetSessionData(c)

	var token models.UserToken
	err := s.db.Where("user_id = ? AND platform = ?", sessionData.UserID, models.PlatformInstagram).
		First(&token).Error
	if err != nil || token.Expired() {
		c.JSON(http.StatusConflict, gin.H{"detail": "No valid Instagram token on file. Reconnect the account"})
		return
	}

	if _, err := s.igClient.ReplyToComment(c.Request.Context(), draft.Comment.ExternalID, token.AccessToken, draft.Text); err != nil {
		s.logger.Error().Err(err).Str("draft_id", draft.ID).Msg("Failed to publish reply")
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Failed to publish reply to Instagram"})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.ReplyStatusPublished,
		"reviewed_by":  sessionData.PublicID,
		"published_at": &now,
	}
	if err := s.db.Model(draft).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update draft status")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	draft.Status = models.ReplyStatusPublished
	draft.ReviewedBy = sessionData.PublicID
	draft.PublishedAt = &now

	s.logger.Info().
		Str("draft_id", draft.ID).
		Str("reviewed_by", sessionData.PublicID).
		Msg("Reply approved and published")

	c.JSON(http.StatusOK, ReplyDetail{
		ID:          draft.ID,
		Status:      draft.Status,
		Text:        draft.Text,
		CommentID:   draft.CommentID,
		CommentText: draft.Comment.Text,
		Username:    draft.Comment.Username,
		CreatedAt:   draft.CreatedAt,
		PublishedAt: draft.PublishedAt,
	})
}

// @Summary Reject reply
// @Description Reject a draft. Rejected drafts are never published
// @Tags replies
// @Produce json
// @Security BearerAuth
// @Param id path string true "Draft ID"
// @Success 200 {object} ReplyDetail
// @Failure 409 {object} map[string]interface{}
// @Router /api/replies/{id}/reject [post]
func (s *Server) rejectReply(c *gin.Context) {
	draft, ok := s.loadOwnDraft(c, c.Param("id"))
	if !ok {
		return
	}

	if draft.Status != models.ReplyStatusDraft {
		c.JSON(http.StatusConflict, gin.H{"detail": "Reply draft already reviewed"})
		return
	}

	sessionData, _ := GetSessionData(c)

	updates := map[string]interface{}{
		"status":      models.ReplyStatusRejected,
		"reviewed_by": sessionData.PublicID,
	}
	if err := s.db.Model(draft).Updates(updates).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to update draft status")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	draft.Status = models.ReplyStatusRejected

	s.logger.Info().Str("draft_id", draft.ID).Msg("Reply rejected")

	c.JSON(http.StatusOK, ReplyDetail{
		ID:          draft.ID,
		Status:      draft.Status,
		Text:        draft.Text,
		CommentID:   draft.CommentID,
		CommentText: draft.Comment.Text,
		Username:    draft.Comment.Username,
		CreatedAt:   draft.CreatedAt,
	})
}
