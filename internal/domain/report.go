package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusPlanned = "planned"
	StatusCopied  = "copied"
	StatusFailed  = "failed"
)

const (
	ErrCodeIOFailed           = "io_failed"
	ErrCodeUnresolvedRecord   = "unresolved_record"
	ErrCodeNamingViolation    = "naming_violation"
	ErrCodeTargetConflict     = "target_conflict"
	ErrCodeConfigInvalid      = "config_invalid"
	ErrCodeReverseUnsupported = "reverse_unsupported"
	ErrCodeCanceled           = "canceled"
)

// RunReport 是对外稳定输出（--report 文件）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	Source string `json:"source"`
	Dest   string `json:"dest"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Planned int   `json:"planned"`
	Copied  int   `json:"copied"`
	Failed  int   `json:"failed"`
	Bytes   int64 `json:"bytes"`
}

type ItemResult struct {
	Src   string `json:"src"`
	Dst   string `json:"dst"`
	Key   string `json:"key"`
	Code  string `json:"code"`
	Title string `json:"title"`
	Size  int64  `json:"size"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 items 计算得出
//
// items 顺序即扫描顺序（按路径排序），这里不再重排。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Items == nil {
		r.Items = []ItemResult{}
	}

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusPlanned:
			s.Planned++
		case StatusCopied:
			s.Copied++
			s.Bytes += it.Size
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
