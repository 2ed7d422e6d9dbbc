// Package timeline turns estimates into a Gantt schedule: start/end dates
// for Epics and Features against a fixed team calendar, plus a critical
// path over the resulting tasks.
package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/pmspec/pmspec/internal/project"
)

// Calendar constants: an 8-hour working day, weekends excluded.
const HoursPerDay = 8

// Fallback durations for entities scheduled without an estimate.
const (
	defaultFeatureHours = 8
	defaultEpicHours    = 40
)

// TaskType distinguishes epic-level from feature-level Gantt tasks.
type TaskType string

const (
	TaskEpic    TaskType = "epic"
	TaskFeature TaskType = "feature"
)

// Task is one bar on the Gantt chart. Dates are YYYY-MM-DD.
type Task struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         TaskType `json:"type"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Progress     float64  `json:"progress"`
	Dependencies []string `json:"dependencies"`
	Assignee     string   `json:"assignee,omitempty"`
	Status       string   `json:"status"`
}

// Plan is the scheduler output.
type Plan struct {
	Tasks        []Task   `json:"tasks"`
	CriticalPath []string `json:"criticalPath"`
}

// Options configures a scheduling run. A zero Start anchors at the current
// date.
type Options struct {
	Start time.Time
}

// Schedule assigns dates to every Epic and Feature. Epics are processed
// sorted by id; each Epic's Features run sequentially, also sorted by id,
// with each Feature starting the working day after its predecessor ends.
// A Feature's Gantt dependency list names only that preceding sibling, a
// same-epic sequencing hint rather than the blocks graph.
func Schedule(epics []project.Epic, features []project.Feature, opts Options) Plan {
	start := opts.Start
	if start.IsZero() {
		start = time.Now()
	}
	start = dateOnly(start)

	sortedEpics := make([]project.Epic, len(epics))
	copy(sortedEpics, epics)
	sort.Slice(sortedEpics, func(i, j int) bool { return sortedEpics[i].ID < sortedEpics[j].ID })

	var tasks []Task
	current := start

	for _, epic := range sortedEpics {
		var epicFeatures []project.Feature
		for _, f := range features {
			if f.EpicID == epic.ID {
				epicFeatures = append(epicFeatures, f)
			}
		}

		if len(epicFeatures) == 0 {
			estimate := epic.Estimate
			if estimate == 0 {
				estimate = defaultEpicHours
			}
			end := addWorkingDays(current, hoursToDays(estimate))
			tasks = append(tasks, Task{
				ID:       epic.ID,
				Name:     epic.Title,
				Type:     TaskEpic,
				Start:    formatDate(current),
				End:      formatDate(end),
				Progress: progress(epic.Actual, epic.Estimate),
				Status:   string(epic.Status),
			})
			current = end
			continue
		}

		sort.Slice(epicFeatures, func(i, j int) bool { return epicFeatures[i].ID < epicFeatures[j].ID })

		epicStart := current
		featureDate := current
		for i, f := range epicFeatures {
			estimate := f.Estimate
			if estimate == 0 {
				estimate = defaultFeatureHours
			}
			featureStart := featureDate
			featureEnd := addWorkingDays(featureStart, hoursToDays(estimate))

			var deps []string
			if i > 0 {
				deps = []string{epicFeatures[i-1].ID}
			}
			tasks = append(tasks, Task{
				ID:           f.ID,
				Name:         f.Title,
				Type:         TaskFeature,
				Start:        formatDate(featureStart),
				End:          formatDate(featureEnd),
				Progress:     progress(f.Actual, f.Estimate),
				Dependencies: deps,
				Assignee:     f.Assignee,
				Status:       string(f.Status),
			})
			featureDate = featureEnd
		}

		tasks = append(tasks, Task{
			ID:       epic.ID,
			Name:     epic.Title,
			Type:     TaskEpic,
			Start:    formatDate(epicStart),
			End:      formatDate(featureDate),
			Progress: progress(epic.Actual, epic.Estimate),
			Status:   string(epic.Status),
		})
		current = featureDate
	}

	return Plan{Tasks: tasks, CriticalPath: criticalPath(tasks)}
}

// criticalPath returns the ids of every epic-level task with positive
// duration. This is a deliberate simplification carried over from the
// source behavior: no longest-chain analysis is performed.
func criticalPath(tasks []Task) []string {
	var ids []string
	for _, t := range tasks {
		if t.Type == TaskEpic && t.End > t.Start {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func progress(actual, estimate float64) float64 {
	if estimate <= 0 {
		return 0
	}
	return actual / estimate * 100
}

func hoursToDays(hours float64) int {
	return int(math.Ceil(hours / HoursPerDay))
}

// addWorkingDays advances the date one calendar day at a time, counting
// only weekdays toward the total.
func addWorkingDays(t time.Time, days int) time.Time {
	added := 0
	for added < days {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return t
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
