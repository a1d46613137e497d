package executor

import (
	"time"

	"github.com/wakethelight/driftaudit/types"
)

// Options configure a run of the executor.
type Options struct {
	Mode  types.Mode `json:"mode"`
	RunID string     `json:"run_id"`
}

// Result is the outcome of applying a batch of findings. Findings carry
// their terminal status; counts are derived, never recomputed elsewhere.
type Result struct {
	RunID     string          `json:"run_id"`
	Mode      types.Mode      `json:"mode"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Duration  time.Duration   `json:"duration"`
	Total     int             `json:"total"`
	Recorded  int             `json:"recorded"`
	Applied   int             `json:"applied"`
	Failed    int             `json:"failed"`
	Findings  []types.Finding `json:"findings"`
}
