package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/lshigami/quizmaster/internal/dto"
)

const pingTimeout = 2 * time.Second

type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Ready godoc
// @Summary Readiness probe
// @Description Pings the database.
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health/ready [get]
func (c *HealthController) Ready(ctx *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := c.ping(ctx.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("Health check: database ping failed")
		ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "error", Database: "down", Timestamp: now})
		return
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: "up", Timestamp: now})
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health/live [get]
func (c *HealthController) Live(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Timestamp: time.Now().UTC().Format(time.RFC3339)})
}

func (c *HealthController) ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
