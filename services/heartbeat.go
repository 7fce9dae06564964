package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/utils"
)

// HeartbeatService keeps the single heartbeat row fresh.
type HeartbeatService struct {
	db *gorm.DB
}

func NewHeartbeatService(db *gorm.DB) *HeartbeatService {
	return &HeartbeatService{db: db}
}

// Beat upserts row id=1 with the current time.
func (s *HeartbeatService) Beat(ctx context.Context) (*models.Heartbeat, error) {
	hb := &models.Heartbeat{ID: models.HeartbeatID, LastBeat: nowFunc().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_beat"}),
	}).Create(hb).Error
	if err != nil {
		return nil, fmt.Errorf("upsert heartbeat: %w", err)
	}
	utils.Heartbeats.Inc()
	return hb, nil
}

// BeatOnly adapts Beat for the keep-alive ticker.
func (s *HeartbeatService) BeatOnly(ctx context.Context) error {
	_, err := s.Beat(ctx)
	return err
}

// Latest returns at most one heartbeat row.
func (s *HeartbeatService) Latest(ctx context.Context) ([]models.Heartbeat, error) {
	var rows []models.Heartbeat
	if err := s.db.WithContext(ctx).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetch heartbeat: %w", err)
	}
	return rows, nil
}
