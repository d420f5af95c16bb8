package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/socivio/socivio/internal/models"
	"github.com/socivio/socivio/internal/tasks"
)

// PostResponse is a synced post plus its comment count
type PostResponse struct {
	models.Post
	CommentCount int64 `json:"comment_count"`
}

// @Summary List posts
// @Description List synced posts for one of the caller's accounts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param account query string true "Instagram account ID"
// @Success 200 {array} PostResponse
// @Router /api/posts [get]
func (s *Server) listPosts(c *gin.Context) {
	accountID := c.Query("account")
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "account query parameter is required"})
		return
	}

	account, ok := s.loadOwnAccount(c, accountID)
	if !ok {
		return
	}

	var posts []models.Post
	if err := s.db.Where("account_id = ?", account.ID).Order("posted_at DESC").Find(&posts).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list posts")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	counts := make(map[string]int64)
	if len(posts) > 0 {
		postIDs := make([]string, len(posts))
		for i, post := range posts {
			postIDs[i] = post.ID
		}

		var rows []struct {
			PostID string
			Total  int64
		}
		err := s.db.Model(&models.Comment{}).
			Select("post_id, COUNT(*) AS total").
			Where("post_id IN ?", postIDs).
			Group("post_id").
			Scan(&rows).Error
		if err != nil {
			s.logger.Error().Err(err).Msg("Failed to count comments")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
			return
		}
		for _, row := range rows {
			counts[row.PostID] = row.Total
		}
	}

	response := make([]PostResponse, len(posts))
	for i, post := range posts {
		response[i] = PostResponse{Post: post, CommentCount: counts[post.ID]}
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List comments
// @Description List synced comments on one post, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {array} models.Comment
// @Router /api/posts/{id}/comments [get]
func (s *Server) listComments(c *gin.Context) {
	postID := c.Param("id")
	sessionData, _ := GetSessionData(c)

	// Ownership check goes through the account the post belongs to
	var post models.Post
	err := s.db.Joins("JOIN instagram_accounts ON instagram_accounts.id = posts.account_id").
		Where("posts.id = ? AND instagram_accounts.user_id = ?", postID, sessionData.UserID).
		First(&post).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Post not found"})
			return
		}
		s.logger.Error().Err(err).Msg("Failed to load post")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	var comments []models.Comment
	if err := s.db.Where("post_id = ?", post.ID).Order("commented_at DESC").Find(&comments).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list comments")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// @Summary Trigger sync
// @Description Enqueue an on-demand sync for one account
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param account_id path string true "Instagram account ID"
// @Success 202 {object} map[string]interface{}
// @Router /api/sync/{account_id} [post]
func (s *Server) triggerSync(c *gin.Context) {
	account, ok := s.loadOwnAccount(c, c.Param("account_id"))
	if !ok {
		return
	}

	task, err := tasks.NewSyncAccountTask(account.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create sync task")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to schedule sync"})
		return
	}

	if _, err := s.asynqClient.Enqueue(task); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue sync task")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to schedule sync"})
		return
	}

	s.logger.Info().Str("account_id", account.ID).Msg("Sync enqueued")
	c.JSON(http.StatusAccepted, gin.H{
		"account_id":  account.ID,
		"enqueued_at": time.Now().UTC(),
	})
}

// loadOwnAccount fetches an Instagram account by local id, enforcing ownership
func (s *Server) loadOwnAccount(c *gin.Context, accountID string) (*models.InstagramAccount, bool) {
	sessionData, _ := GetSessionData(c)

	var account models.InstagramAccount
	err := s.db.Where("id = ? AND user_id = ?", accountID, sessionData.UserID).First(&account).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Account not found"})
			return nil, false
		}
		s.logger.Error().Err(err).Msg("Failed to load account")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return nil, false
	}
	return &account, true
}
