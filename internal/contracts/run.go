package contracts

import (
	"time"

	"github.com/google/uuid"
)

// Scrape run lifecycle states.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// ScrapeRun is the audit record of one full collection cycle.
// ⭐ SSOT: 수집 실행 감사 기록
type ScrapeRun struct {
	RunID      uuid.UUID          `json:"run_id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Found      int                `json:"found"`   // 검색으로 발견한 리스팅 수 (중복 제거 후)
	Stored     int                `json:"stored"`  // 새로 저장된 스냅샷 수
	Skipped    int                `json:"skipped"` // 검증 실패로 건너뛴 수
	SkipCounts map[SkipReason]int `json:"skip_counts,omitempty"`
	Status     string             `json:"status"`
	Error      *string            `json:"error,omitempty"`
}

// Duration returns the elapsed run time, zero while still running.
func (r *ScrapeRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
