package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// Task type constants
const (
	// Pulls media and comments for one Instagram account
	TypeSyncAccount = "instagram:sync_account"
	// Drafts an AI reply for one comment
	TypeDraftReply = "reply:draft"
)

// SyncAccountPayload identifies the account to sync
type SyncAccountPayload struct {
	AccountID string `json:"account_id"`
}

// DraftReplyPayload identifies the comment to draft a reply for
type DraftReplyPayload struct {
	CommentID string `json:"comment_id"`
}

// NewSyncAccountTask creates a task to sync one account's posts and comments
func NewSyncAccountTask(accountID string) (*asynq.Task, error) {
	payload, err := json.Marshal(SyncAccountPayload{AccountID: accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeSyncAccount, payload), nil
}

// NewDraftReplyTask creates a task to draft a reply for one comment
func NewDraftReplyTask(commentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DraftReplyPayload{CommentID: commentID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeDraftReply, payload), nil
}

// ParseSyncAccountPayload parses a sync task payload
func ParseSyncAccountPayload(task *asynq.Task) (SyncAccountPayload, error) {
	var payload SyncAccountPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}

// ParseDraftReplyPayload parses a draft task payload
func ParseDraftReplyPayload(task *asynq.Task) (DraftReplyPayload, error) {
	var payload DraftReplyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return payload, nil
}
