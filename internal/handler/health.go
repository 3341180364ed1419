package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Jottaaa12/pdv-web-admin/internal/infra"
	"github.com/Jottaaa12/pdv-web-admin/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The mail breaker and dead-letter counts are informational and do not
// change the status code.
func Health(db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if mailCB != nil {
			body["mail"] = mailCB.State().String()
		}
		if redisStatus == "connected" {
			if dlq, err := worker.DLQLengths(ctx, rdb); err == nil {
				body["dead_letters"] = dlq
			}
		}
		c.JSON(status, body)
	}
}
