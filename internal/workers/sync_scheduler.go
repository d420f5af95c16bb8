package workers

import (
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/socivio/socivio/internal/models"
	"github.com/socivio/socivio/internal/tasks"
)

// StartSyncScheduler runs a periodic check (every minute) for the configured
// sync schedule and enqueues a sync task per connected account when due
func StartSyncScheduler(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	// Run immediately on startup, then every minute
	checkAndEnqueueSyncTasks(client, db, logger)

	for range ticker.C {
		checkAndEnqueueSyncTasks(client, db, logger)
	}
}

func checkAndEnqueueSyncTasks(client *asynq.Client, db *gorm.DB, logger zerolog.Logger) {
	// Load the singleton config
	var config models.AppConfig
	err := db.First(&config).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			logger.Debug().Msg("No config found - skipping sync check")
			return
		}
		logger.Error().Err(err).Msg("Failed to query config for sync")
		return
	}

	if config.SyncSchedule == "" {
		logger.Debug().Msg("No sync schedule configured")
		return
	}

	if config.NextSyncAt != nil && config.NextSyncAt.After(time.Now()) {
		logger.Debug().
			Time("next_sync_at", *config.NextSyncAt).
			Msg("Sync not due yet")
		return
	}

	var accounts []models.InstagramAccount
	if err := db.Find(&accounts).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to list accounts for sync")
		return
	}

	enqueued := 0
	for _, account := range accounts {
		task, err := tasks.NewSyncAccountTask(account.ID)
		if err != nil {
			logger.Error().Err(err).Str("account_id", account.ID).Msg("Failed to create sync task")
			continue
		}
		if _, err := client.Enqueue(task, asynq.Timeout(30*time.Minute)); err != nil {
			logger.Error().Err(err).Str("account_id", account.ID).Msg("Failed to enqueue sync task")
			continue
		}
		enqueued++
	}

	// Advance the schedule immediately so the next tick doesn't re-enqueue
	now := time.Now()
	updates := map[string]interface{}{"last_synced_at": &now}
	if next := calculateNextSyncTime(config.SyncSchedule, now); next != nil {
		updates["next_sync_at"] = next
	}
	if err := db.Model(&config).Updates(updates).Error; err != nil {
		logger.Error().Err(err).Msg("Failed to update sync schedule state")
	}

	logger.Info().
		Int("accounts", len(accounts)).
		Int("enqueued", enqueued).
		Str("sync_schedule", config.SyncSchedule).
		Msg("Sync tasks enqueued")
}

// calculateNextSyncTime calculates the next sync time from a cron schedule
func calculateNextSyncTime(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	// Standard 5-field format: minute hour day-of-month month day-of-week
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
