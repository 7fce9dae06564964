package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/utils"
)

// PageViewRecorder counts successful GETs of the given public pages per day and path.
func PageViewRecorder(db *gorm.DB, loc *time.Location, pages ...string) gin.HandlerFunc {
	tracked := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		tracked[p] = struct{}{}
	}

	return func(c *gin.Context) {
		c.Next()

		if c.Request.Method != http.MethodGet {
			return
		}
		if status := c.Writer.Status(); status < 200 || status >= 300 {
			return
		}
		path := c.Request.URL.Path
		if _, ok := tracked[path]; !ok {
			return
		}

		now := time.Now()
		// Atomic upsert to avoid duplicate key errors under concurrency
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "path"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("page_views.count + 1"), "updated_at": now}),
		}).Create(&models.PageView{Date: models.PageViewDay(now, loc), Path: path, Count: 1}).Error
		if err != nil {
			utils.Sugar.Debugf("page view upsert failed path=%s err=%v", path, err)
		}
	}
}
