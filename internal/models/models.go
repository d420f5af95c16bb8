package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// AppConfig represents the global configuration for the deployment.
// This is a singleton model (only one row should exist)
type AppConfig struct {
	BaseModel
	// Authentication configuration
	JWTSecret string `json:"-" gorm:"type:varchar(64);not null"` // Auto-generated on first register (64 hex chars)

	// Sync configuration (for periodic Instagram pulls)
	SyncSchedule string     `json:"sync_schedule"`  // Cron expression, e.g. "*/30 * * * *", empty = no auto sync
	LastSyncedAt *time.Time `json:"last_synced_at"` // When the last full sync completed
	NextSyncAt   *time.Time `json:"next_sync_at"`   // Calculated from the cron schedule
}

// User represents a Socivio account holder
type User struct {
	BaseModel
	PublicID     string    `json:"user_id" gorm:"unique;not null;type:varchar(36)"` // UUID exposed outside the API
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// BeforeCreate assigns the ULID primary key and the public UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if err := u.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if u.PublicID == "" {
		u.PublicID = uuid.NewString()
	}
	return nil
}

// Platform identifies the social platform a token belongs to
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
)

// UserToken stores a long-lived OAuth token for a connected platform.
// Overwritten on reconnect, removed when the user disconnects.
type UserToken struct {
	BaseModel
	UserID       string     `json:"user_id" gorm:"not null;index:idx_user_platform,unique"`
	Platform     Platform   `json:"platform" gorm:"not null;index:idx_user_platform,unique"`
	AccessToken  string     `json:"-" gorm:"not null"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"expires_at"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Expired reports whether the token has a known expiry in the past
func (t *UserToken) Expired() bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(time.Now())
}

// InstagramAccount is a connected Instagram Business account discovered
// through the linked Facebook page
type InstagramAccount struct {
	BaseModel
	UserID     string `json:"-" gorm:"not null;index"`
	ExternalID string `json:"external_id" gorm:"not null;uniqueIndex"` // Graph API account id
	Username   string `json:"username" gorm:"not null"`
	PageID     string `json:"page_id" gorm:"not null"` // Linked Facebook page
	PageName   string `json:"page_name"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Project holds per-account feature flags. Created lazily the first time an
// account's dashboard is opened
type Project struct {
	BaseModel
	UserID            string `json:"user_id" gorm:"not null;index"`
	ExternalAccountID string `json:"external_account_id" gorm:"not null;uniqueIndex"`
	InsightsEnabled   bool   `json:"insights_enabled" gorm:"not null;default:false"`
	AIRepliesEnabled  bool   `json:"ai_replies_enabled" gorm:"not null;default:false"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Post is a synced Instagram media item
type Post struct {
	BaseModel
	AccountID  string    `json:"account_id" gorm:"not null;index"` // InstagramAccount.ID
	ExternalID string    `json:"external_id" gorm:"not null;uniqueIndex"`
	Caption    string    `json:"caption" gorm:"type:text"`
	MediaType  string    `json:"media_type"`
	Permalink  string    `json:"permalink"`
	PostedAt   time.Time `json:"posted_at"`

	Account  *InstagramAccount `json:"-" gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE"`
	Comments []Comment         `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

// Comment is a synced comment on a post
type Comment struct {
	BaseModel
	PostID      string    `json:"post_id" gorm:"not null;index"`
	ExternalID  string    `json:"external_id" gorm:"not null;uniqueIndex"`
	Username    string    `json:"username"`
	Text        string    `json:"text" gorm:"type:text"`
	CommentedAt time.Time `json:"commented_at"`

	Post   *Post        `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	Drafts []ReplyDraft `json:"drafts,omitempty" gorm:"foreignKey:CommentID"`
}

// ReplyDraftStatus tracks a draft through the approval workflow
type ReplyDraftStatus string

const (
	ReplyStatusDraft     ReplyDraftStatus = "draft"
	ReplyStatusApproved  ReplyDraftStatus = "approved"
	ReplyStatusRejected  ReplyDraftStatus = "rejected"
	ReplyStatusPublished ReplyDraftStatus = "published"
)

// ReplyDraft is an AI-drafted reply awaiting human review. Publishing happens
// only after explicit approval
type ReplyDraft struct {
	BaseModel
	CommentID   string           `json:"comment_id" gorm:"not null;index"`
	Text        string           `json:"text" gorm:"type:text;not null"`
	Status      ReplyDraftStatus `json:"status" gorm:"not null;default:draft;index"`
	ReviewedBy  string           `json:"reviewed_by"`
	PublishedAt *time.Time       `json:"published_at"`

	Comment *Comment `json:"comment,omitempty" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	models := []interface{}{
		&User{}, &AppConfig{}, &UserToken{}, &InstagramAccount{},
		&Project{}, &Post{}, &Comment{}, &ReplyDraft{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
