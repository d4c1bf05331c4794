package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ReadinessState string

const (
	ReadinessStateReady    ReadinessState = "ready"
	ReadinessStateNotReady ReadinessState = "not_ready"
	ReadinessStateOptional ReadinessState = "optional"
)

const readinessTimeout = 2 * time.Second

type ReadinessIssue struct {
	ID       string            `json:"id"`
	Status   ReadinessState    `json:"status"`
	Evidence map[string]string `json:"evidence,omitempty"`
}

// GetSystemReadiness reports whether the backing stores answer. Redis is
// optional: the subscriber cache fails open.
func (s *Server) GetSystemReadiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	issues := make([]ReadinessIssue, 0, 3)
	isReady := true

	if s.schemaGate != nil {
		if err := s.schemaGate.MustBeActive(ctx); err != nil {
			isReady = false
			issues = append(issues, ReadinessIssue{
				ID:       "schema_gate",
				Status:   ReadinessStateNotReady,
				Evidence: map[string]string{"error": err.Error()},
			})
		} else {
			issues = append(issues, ReadinessIssue{ID: "schema_gate", Status: ReadinessStateReady})
		}
	}

	if s.db == nil {
		issues = append(issues, ReadinessIssue{
			ID:       "database",
			Status:   ReadinessStateOptional,
			Evidence: map[string]string{"note": "call records served from csv"},
		})
	} else if err := s.pingDatabase(ctx); err != nil {
		isReady = false
		issues = append(issues, ReadinessIssue{
			ID:       "database",
			Status:   ReadinessStateNotReady,
			Evidence: map[string]string{"error": err.Error()},
		})
	} else {
		issues = append(issues, ReadinessIssue{ID: "database", Status: ReadinessStateReady})
	}

	if s.redis == nil {
		issues = append(issues, ReadinessIssue{
			ID:       "redis",
			Status:   ReadinessStateOptional,
			Evidence: map[string]string{"note": "subscriber cache disabled"},
		})
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		issues = append(issues, ReadinessIssue{
			ID:       "redis",
			Status:   ReadinessStateOptional,
			Evidence: map[string]string{"error": err.Error()},
		})
	} else {
		issues = append(issues, ReadinessIssue{ID: "redis", Status: ReadinessStateReady})
	}

	state := ReadinessStateReady
	status := http.StatusOK
	if !isReady {
		state = ReadinessStateNotReady
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"ready":        isReady,
		"system_state": state,
		"issues":       issues,
	})
}

func (s *Server) pingDatabase(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
