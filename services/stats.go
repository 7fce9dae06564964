package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dpefoundation/website/models"
)

// VariantStats counts the submissions of one variant.
type VariantStats struct {
	Total    int64            `json:"total"`
	Reviewed int64            `json:"reviewed"`
	ByStatus map[string]int64 `json:"by_status"`
}

// Stats summarises submissions and traffic for the dashboard header.
type Stats struct {
	Scholarships   map[string]VariantStats `json:"scholarships"`
	Contacts       int64                   `json:"contacts"`
	PageViewsToday int64                   `json:"page_views_today"`
}

// StatsService computes dashboard statistics.
type StatsService struct {
	db  *gorm.DB
	loc *time.Location
}

func NewStatsService(db *gorm.DB, loc *time.Location) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	return &StatsService{db: db, loc: loc}
}

// Collect gathers the counts. A failing count reads as zero instead of failing the whole summary.
func (s *StatsService) Collect(ctx context.Context) Stats {
	db := s.db.WithContext(ctx)
	out := Stats{Scholarships: map[string]VariantStats{}}

	for _, v := range Variants() {
		vs := VariantStats{ByStatus: map[string]int64{}}
		table := v.Table()
		if err := db.Table(table).Count(&vs.Total).Error; err != nil {
			vs.Total = 0
		}
		if err := db.Table(table).Where("reviewed = ?", true).Count(&vs.Reviewed).Error; err != nil {
			vs.Reviewed = 0
		}

		type statusCount struct {
			Status string
			N      int64
		}
		var counts []statusCount
		if err := db.Table(table).Select("status, COUNT(*) AS n").Group("status").Scan(&counts).Error; err == nil {
			for _, c := range counts {
				vs.ByStatus[models.NormalizeStatus(c.Status)] += c.N
			}
		}
		out.Scholarships[v.Name] = vs
	}

	if err := db.Model(&models.ContactSubmission{}).Count(&out.Contacts).Error; err != nil {
		out.Contacts = 0
	}

	today := models.PageViewDay(nowFunc(), s.loc)
	if err := db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&out.PageViewsToday).Error; err != nil {
		out.PageViewsToday = 0
	}
	return out
}
