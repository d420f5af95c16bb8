package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/socivio/socivio/internal/models"
	"github.com/socivio/socivio/internal/replies"
	"github.com/socivio/socivio/internal/tasks"
)

// HandleDraftReply drafts an AI reply for one comment and stores it with
// status "draft". Publishing only happens after a human approves.
func HandleDraftReply(ctx context.Context, t *asynq.Task, db *gorm.DB, drafter *replies.Service, logger zerolog.Logger) error {
	payload, err := tasks.ParseDraftReplyPayload(t)
	if err != nil {
		return err
	}

	var comment models.Comment
	if err := models.FindByIDWithPreload(db, payload.CommentID, &comment, "Post"); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Str("comment_id", payload.CommentID).Msg("Comment gone, dropping draft task")
			return nil
		}
		return fmt.Errorf("failed to load comment: %w", err)
	}

	// One pending draft per comment
	var existing int64
	err = db.Model(&models.ReplyDraft{}).
		Where("comment_id = ? AND status IN ?", comment.ID,
			[]models.ReplyDraftStatus{models.ReplyStatusDraft, models.ReplyStatusApproved, models.ReplyStatusPublished}).
		Count(&existing).Error
	if err != nil {
		return fmt.Errorf("failed to count drafts: %w", err)
	}
	if existing > 0 {
		logger.Debug().Str("comment_id", comment.ID).Msg("Draft already exists, skipping")
		return nil
	}

	caption := ""
	if comment.Post != nil {
		caption = comment.Post.Caption
	}

	text, err := drafter.DraftReply(ctx, replies.DraftInput{
		PostCaption:     caption,
		CommentUsername: comment.Username,
		CommentText:     comment.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to draft reply: %w", err)
	}

	draft := models.ReplyDraft{
		CommentID: comment.ID,
		Text:      text,
		Status:    models.ReplyStatusDraft,
	}
	if err := db.Create(&draft).Error; err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}

	logger.Info().
		Str("comment_id", comment.ID).
		Str("draft_id", draft.ID).
		Msg("Reply drafted")

	return nil
}
