package timerservice

import (
	"context"
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"rsiassist/internal/core/model"
)

// DateLayout is the key format of a statistics day.
const DateLayout = "2006-01-02"

// StatsStore persists daily break statistics.
type StatsStore interface {
	SetUsage(ctx context.Context, date string, seconds int) error
	CountPrompt(ctx context.Context, date string, breakType model.BreakType) error
	RecordTaken(ctx context.Context, date string, breakType model.BreakType) error
	RecordPostponed(ctx context.Context, date string, breakType model.BreakType) error
	LastNDays(ctx context.Context, days int) ([]model.DailyStats, error)
}

// dailyStatsRow is the database row of one day.
type dailyStatsRow struct {
	Date               string `gorm:"primaryKey;size:10"`
	TotalUsageSeconds  int
	MicroPrompts       int
	MicroPromptedTaken int
	MicroPostponed     int
	RestPrompts        int
	RestPromptedTaken  int
	RestPostponed      int
}

func (dailyStatsRow) TableName() string {
	return "daily_stats"
}

func (row dailyStatsRow) toModel() model.DailyStats {
	return model.DailyStats{
		Date:               row.Date,
		TotalUsageSeconds:  row.TotalUsageSeconds,
		MicroPrompts:       row.MicroPrompts,
		MicroPromptedTaken: row.MicroPromptedTaken,
		MicroPostponed:     row.MicroPostponed,
		RestPrompts:        row.RestPrompts,
		RestPromptedTaken:  row.RestPromptedTaken,
		RestPostponed:      row.RestPostponed,
	}
}

// OpenDatabase opens the sqlite statistics database and runs migrations.
func OpenDatabase(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open statistics database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Println("Running statistics migrations...")
	if err := db.AutoMigrate(&dailyStatsRow{}); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}
	return db, nil
}

// gormStats implements StatsStore using GORM.
type gormStats struct {
	db *gorm.DB
}

// NewGormStats creates a GORM-backed statistics store.
func NewGormStats(db *gorm.DB) StatsStore {
	return &gormStats{db: db}
}

func (s *gormStats) SetUsage(ctx context.Context, date string, seconds int) error {
	row := dailyStatsRow{Date: date, TotalUsageSeconds: seconds}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_usage_seconds"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to store usage for %s: %w", date, err)
	}
	return nil
}

func (s *gormStats) CountPrompt(ctx context.Context, date string, breakType model.BreakType) error {
	return s.increment(ctx, date, breakType, "prompts")
}

func (s *gormStats) RecordTaken(ctx context.Context, date string, breakType model.BreakType) error {
	return s.increment(ctx, date, breakType, "prompted_taken")
}

func (s *gormStats) RecordPostponed(ctx context.Context, date string, breakType model.BreakType) error {
	return s.increment(ctx, date, breakType, "postponed")
}

func (s *gormStats) LastNDays(ctx context.Context, days int) ([]model.DailyStats, error) {
	if days <= 0 {
		return []model.DailyStats{}, nil
	}
	var rows []dailyStatsRow
	if err := s.db.WithContext(ctx).Order("date DESC").Limit(days).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load statistics: %w", err)
	}
	stats := make([]model.DailyStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, row.toModel())
	}
	return stats, nil
}

func (s *gormStats) increment(ctx context.Context, date string, breakType model.BreakType, counter string) error {
	if err := breakType.Validate(); err != nil {
		return err
	}
	column := string(breakType) + "_" + counter
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&dailyStatsRow{Date: date}).Error; err != nil {
			return fmt.Errorf("failed to create statistics for %s: %w", date, err)
		}
		err := tx.Model(&dailyStatsRow{}).Where("date = ?", date).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
		if err != nil {
			return fmt.Errorf("failed to update %s for %s: %w", column, date, err)
		}
		return nil
	})
}
