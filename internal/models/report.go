// Package models defines the domain types for tracksync.
package models

// DateLayout is the ISO calendar date format used for report keys and
// journal rows.
const DateLayout = "2006-01-02"

// TaskDuration is one task's share of a day: the raw seconds reported by
// the tracker plus the derived rounded minutes. TotalTimeMin is never
// stored independently; it is recomputed on every normalization pass.
type TaskDuration struct {
	Name         string `json:"name"`
	TotalTimeSec int    `json:"totalTimeSec"`
	TotalTimeMin int    `json:"totalTimeMin"`
}

// Active reports whether the task earns a note property. Tasks that round
// to zero minutes are skipped on purpose, not as an error.
func (t TaskDuration) Active() bool {
	return t.TotalTimeMin > 0
}

// PropertyName returns the frontmatter key the task's minutes are written
// under.
func (t TaskDuration) PropertyName() string {
	return t.Name + " (min)"
}

// RoundMinutes converts reported seconds to minutes, rounding half up.
func RoundMinutes(sec int) int {
	if sec < 0 {
		return -((-sec + 30) / 60)
	}
	return (sec + 30) / 60
}

// DailyReport is the normalized record of one calendar date's task
// durations.
type DailyReport struct {
	DateStr string         `json:"dateStr"`
	Tasks   []TaskDuration `json:"tasks"`
}

// ActiveTasks returns the tasks with nonzero rounded minutes, preserving
// report order.
func (d DailyReport) ActiveTasks() []TaskDuration {
	var out []TaskDuration
	for _, t := range d.Tasks {
		if t.Active() {
			out = append(out, t)
		}
	}
	return out
}

// ImportRecord is one row of the import journal: what a sync run wrote
// for a single date.
type ImportRecord struct {
	DateStr      string `json:"dateStr"`
	Tasks        int    `json:"tasks"`
	PropsWritten int    `json:"propsWritten"`
	ImportedAt   string `json:"importedAt"`
}
