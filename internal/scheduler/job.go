package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes one pass. The context is cancelled when the scheduler stops
	// or the job exceeds its timeout.
	Run(ctx context.Context) error

	// Schedule returns the cron expression, seconds first ("0 */3 * * * *")
	Schedule() string
}

// JobResult is the outcome of one run
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Skipped   bool          `json:"skipped,omitempty"`
	Error     string        `json:"error,omitempty"`
}

const historySize = 100

// JobHistory keeps the last historySize results of a job
type JobHistory struct {
	results []JobResult
}

// Add appends a result, evicting the oldest one when full
func (h *JobHistory) Add(result JobResult) {
	h.results = append(h.results, result)
	if len(h.results) > historySize {
		h.results = h.results[len(h.results)-historySize:]
	}
}

// Latest returns up to n most recent results, oldest first
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.results) {
		n = len(h.results)
	}
	out := make([]JobResult, n)
	copy(out, h.results[len(h.results)-n:])
	return out
}

// Len returns the number of stored results
func (h *JobHistory) Len() int {
	return len(h.results)
}

// SuccessRate returns the share of successful runs (0.0 - 1.0). Skipped runs don't count.
func (h *JobHistory) SuccessRate() float64 {
	total, ok := 0, 0
	for _, r := range h.results {
		if r.Skipped {
			continue
		}
		total++
		if r.Success {
			ok++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(ok) / float64(total)
}
