package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/socivio/socivio/internal/models"
)

// ConnectRequest carries the OAuth authorization code from the dashboard
type ConnectRequest struct {
	Code string `json:"code" binding:"required"`
}

// ConnectedAccount is one Instagram Business account in API responses
type ConnectedAccount struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Username   string `json:"username"`
	PageID     string `json:"page_id"`
	PageName   string `json:"page_name"`
}

// ConnectResponse lists the accounts discovered during connect
type ConnectResponse struct {
	InstagramAccounts []ConnectedAccount `json:"instagram_accounts"`
}

// @Summary Connect Instagram
// @Description Exchange an OAuth code, persist the long-lived token and discover Instagram Business accounts
// @Tags instagram
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ConnectRequest true "Connect request"
// @Success 200 {object} ConnectResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 502 {object} map[string]interface{}
// @Router /api/instagram/connect [post]
func (s *Server) connectInstagram(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	sessionData, _ := GetSessionData(c)
	ctx := c.Request.Context()

	shortLived, err := s.igClient.ExchangeCode(ctx, req.Code)
	if err != nil {
		s.logger.Error().Err(err).Msg("Code exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Failed to exchange authorization code"})
		return
	}

	longLived, err := s.igClient.ExchangeLongLived(ctx, shortLived.AccessToken)
	if err != nil {
		s.logger.Error().Err(err).Msg("Long-lived token exchange failed")
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Failed to exchange long-lived token"})
		return
	}

	// One token per (user, platform); reconnecting overwrites
	token := models.UserToken{
		UserID:      sessionData.UserID,
		Platform:    models.PlatformInstagram,
		AccessToken: longLived.AccessToken,
		ExpiresAt:   longLived.ExpiresAt(),
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "expires_at"}),
	}).Create(&token).Error
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to persist token")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save token"})
		return
	}

	pages, err := s.igClient.ListPages(ctx, longLived.AccessToken)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list pages")
		c.JSON(http.StatusBadGateway, gin.H{"detail": "Failed to list Facebook pages"})
		return
	}

	var connected []ConnectedAccount
	for _, page := range pages {
		business, err := s.igClient.GetBusinessAccount(ctx, page.ID, longLived.AccessToken)
		if err != nil {
			s.logger.Warn().Err(err).Str("page_id", page.ID).Msg("Failed to resolve business account")
			continue
		}
		if business == nil {
			continue // Page without a linked Instagram account
		}

		account := models.InstagramAccount{
			UserID:     sessionData.UserID,
			ExternalID: business.ID,
			Username:   business.Username,
			PageID:     page.ID,
			PageName:   page.Name,
		}
		err = s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "page_id", "page_name"}),
		}).Create(&account).Error
		if err != nil {
			s.logger.Error().Err(err).Str("external_id", business.ID).Msg("Failed to persist account")
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save account"})
			return
		}
		if err := s.db.Where("external_id = ?", business.ID).First(&account).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to save account"})
			return
		}

		connected = append(connected, ConnectedAccount{
			ID:         account.ID,
			ExternalID: account.ExternalID,
			Username:   account.Username,
			PageID:     account.PageID,
			PageName:   account.PageName,
		})
	}

	s.logger.Info().
		Str("user_id", sessionData.PublicID).
		Int("accounts", len(connected)).
		Msg("Instagram connected")

	c.JSON(http.StatusOK, ConnectResponse{InstagramAccounts: connected})
}

// @Summary Connected accounts
// @Description List the caller's connected Instagram Business accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ConnectResponse
// @Router /api/accounts/connected [get]
func (s *Server) getConnectedAccounts(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	var accounts []models.InstagramAccount
	if err := s.db.Where("user_id = ?", sessionData.UserID).Order("created_at").Find(&accounts).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to list accounts")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	connected := make([]ConnectedAccount, len(accounts))
	for i, account := range accounts {
		connected[i] = ConnectedAccount{
			ID:         account.ID,
			ExternalID: account.ExternalID,
			Username:   account.Username,
			PageID:     account.PageID,
			PageName:   account.PageName,
		}
	}

	c.JSON(http.StatusOK, ConnectResponse{InstagramAccounts: connected})
}

// @Summary Delete user tokens
// @Description Delete all of the caller's platform tokens (disconnect)
// @Tags user-tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {boolean} bool
// @Router /api/user-tokens [delete]
func (s *Server) deleteUserTokens(c *gin.Context) {
	sessionData, _ := GetSessionData(c)

	if err := s.db.Where("user_id = ?", sessionData.UserID).Delete(&models.UserToken{}).Error; err != nil {
		s.logger.Error().Err(err).Msg("Failed to delete tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	s.logger.Info().Str("user_id", sessionData.PublicID).Msg("Platform tokens deleted")
	c.JSON(http.StatusOK, true)
}
