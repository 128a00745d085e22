package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Pinger is satisfied by cache.RedisClient.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health checks DB and, when configured, Redis connectivity.
func Health(db *gorm.DB, rdb Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			redisStatus = "connected"
			if rdb.Ping(ctx) != nil {
				redisStatus = "error"
			}
		}

		status := fiber.StatusOK
		if dbStatus == "error" || redisStatus == "error" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"ok":    status == fiber.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		})
	}
}
