package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/socivio/socivio/internal/instagram"
	"github.com/socivio/socivio/internal/models"
	"github.com/socivio/socivio/internal/tasks"
)

// HandleSyncAccount pulls recent media and comments for one Instagram account
// and enqueues reply drafting for comments that are new to us, when the
// account's project has AI replies enabled.
func HandleSyncAccount(ctx context.Context, t *asynq.Task, client *asynq.Client, db *gorm.DB, ig *instagram.Client, logger zerolog.Logger) error {
	payload, err := tasks.ParseSyncAccountPayload(t)
	if err != nil {
		return err
	}

	var account models.InstagramAccount
	if err := models.FindByID(db, payload.AccountID, &account); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Str("account_id", payload.AccountID).Msg("Account gone, dropping sync task")
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	var token models.UserToken
	err = db.Where("user_id = ? AND platform = ?", account.UserID, models.PlatformInstagram).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Str("account_id", account.ID).Msg("No Instagram token on file, skipping sync")
			return nil
		}
		return fmt.Errorf("failed to load token: %w", err)
	}

	if token.Expired() {
		logger.Warn().
			Str("account_id", account.ID).
			Time("expired_at", *token.ExpiresAt).
			Msg("Instagram token expired, skipping sync")
		return nil
	}

	media, err := ig.ListMedia(ctx, account.ExternalID, token.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to list media: %w", err)
	}

	// AI replies are gated per account by the project flag
	var project models.Project
	aiReplies := false
	err = db.Where("external_account_id = ?", account.ExternalID).First(&project).Error
	if err == nil {
		aiReplies = project.AIRepliesEnabled
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load project: %w", err)
	}

	var newComments int
	for _, m := range media {
		post := models.Post{
			AccountID:  account.ID,
			ExternalID: m.ID,
			Caption:    m.Caption,
			MediaType:  m.MediaType,
			Permalink:  m.Permalink,
			PostedAt:   m.Timestamp,
		}
		// Upsert keyed on the Graph media id; captions can be edited
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"caption", "media_type", "permalink"}),
		}).Create(&post).Error
		if err != nil {
			return fmt.Errorf("failed to upsert post %s: %w", m.ID, err)
		}

		// Re-read to get the stable local id after a conflict update
		if err := db.Where("external_id = ?", m.ID).First(&post).Error; err != nil {
			return fmt.Errorf("failed to reload post %s: %w", m.ID, err)
		}

		graphComments, err := ig.ListComments(ctx, m.ID, token.AccessToken)
		if err != nil {
			return fmt.Errorf("failed to list comments for %s: %w", m.ID, err)
		}

		for _, gc := range graphComments {
			comment := models.Comment{
				PostID:      post.ID,
				ExternalID:  gc.ID,
				Username:    gc.Username,
				Text:        gc.Text,
				CommentedAt: gc.Timestamp,
			}
			result := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoNothing: true,
			}).Create(&comment)
			if result.Error != nil {
				return fmt.Errorf("failed to upsert comment %s: %w", gc.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				continue // Seen before
			}
			newComments++

			if !aiReplies {
				continue
			}
			task, err := tasks.NewDraftReplyTask(comment.ID)
			if err != nil {
				return err
			}
			if _, err := client.Enqueue(task); err != nil {
				logger.Error().Err(err).Str("comment_id", comment.ID).Msg("Failed to enqueue draft task")
			}
		}
	}

	logger.Info().
		Str("account_id", account.ID).
		Str("username", account.Username).
		Int("media", len(media)).
		Int("new_comments", newComments).
		Bool("ai_replies", aiReplies).
		Msg("Account sync complete")

	return nil
}
