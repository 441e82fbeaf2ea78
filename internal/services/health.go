package services

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/teamdesk/teamdesk/internal/config"
	"github.com/teamdesk/teamdesk/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	SMTP         string            `json:"smtp"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck probes the database and, when configured, the SMTP relay.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check SMTP relay reachability; skipped when mail is not configured
	if cfg.SMTPHost == "" {
		result.SMTP = "not_configured"
	} else if err := utils.PingHostPort(cfg.SMTPHost, strconv.Itoa(cfg.SMTPPort), 1500*time.Millisecond); err != nil {
		result.Status = "unhealthy"
		result.SMTP = "unreachable"
		result.Details["smtp_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("SMTP ping failed: %v", err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; SMTP ping failed: %v", err)
		}
		log.Printf("Health check failed - smtp ping: %v", err)
	} else {
		result.SMTP = "ok"
		result.Details["smtp_host"] = cfg.SMTPHost
	}

	return result
}
