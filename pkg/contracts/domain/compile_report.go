package domain

import "time"

// FileViews is the per-file sum of Views
type FileViews struct {
	File  string `json:"file"`
	Views int64  `json:"views"`
}

// SkippedFile records an input file that failed to load
type SkippedFile struct {
	File      string `json:"file"`
	ErrorType string `json:"error_type"`
	Reason    string `json:"reason"`
}

// CompileReport is the summary of one compile run
type CompileReport struct {
	RunID          string           `json:"run_id"`
	InputDir       string           `json:"input_dir"`
	OutputPath     string           `json:"output_path"`
	XLSXPath       string           `json:"xlsx_path,omitempty"`
	FilesFound     int              `json:"files_found"`
	InputBytes     int64            `json:"input_bytes"`
	FilesLoaded    int              `json:"files_loaded"`
	TotalMessages  int              `json:"total_messages"`
	TotalViews     int64            `json:"total_views"`
	FileViews      []FileViews      `json:"file_views"`
	Skipped        []SkippedFile    `json:"skipped,omitempty"`
	CategoryTotals []CategoryTotals `json:"category_totals"`
	StartedAt      time.Time        `json:"started_at"`
	CompletedAt    time.Time        `json:"completed_at"`
}

// FilesSkipped returns the number of files that failed to load
func (r *CompileReport) FilesSkipped() int {
	return len(r.Skipped)
}
