package domain

import "time"

// Finding is a single issue reported by the lint tool.
type Finding struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// FileStats holds the finding count for a single file.
type FileStats struct {
	Name     string `json:"name"`
	Findings int    `json:"findings"`
}

// Summary aggregates the findings of a run.
type Summary struct {
	TotalFindings int            `json:"total_findings"`
	FilesAffected int            `json:"files_affected"`
	ByCode        map[string]int `json:"by_code"`
	Files         []*FileStats   `json:"files"`
	MeanPerFile   float64        `json:"mean_per_file"`
	MedianPerFile float64        `json:"median_per_file"`
	MaxPerFile    float64        `json:"max_per_file"`
}

// Report is the result of one gate run.
// It is the core domain entity of this application.
type Report struct {
	Tool            string        `json:"tool"`
	ProjectRoot     string        `json:"project_root"`
	EnvRoot         string        `json:"env_root,omitempty"`
	ToolExitCode    int           `json:"tool_exit_code"`
	Outcome         Outcome       `json:"outcome"`
	ExitCode        int           `json:"exit_code"`
	Duration        time.Duration `json:"-"`
	DurationSeconds float64       `json:"duration_seconds"`
	Findings        []Finding     `json:"findings"`
	Summary         *Summary      `json:"summary"`
}
