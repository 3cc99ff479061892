package store

import "tasklist/models"

// FilterTasks returns the tasks matching status and priority, preserving order.
// The result never aliases the input.
func FilterTasks(tasks []models.Task, status models.StatusFilter, priority models.PriorityFilter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if status.Match(t) && priority.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

func ComputeStats(tasks []models.Task) models.Stats {
	var st models.Stats
	st.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			st.Completed++
		} else {
			st.Active++
		}
		switch t.Priority {
		case models.PriorityHigh:
			st.High++
		case models.PriorityMedium:
			st.Medium++
		case models.PriorityLow:
			st.Low++
		}
	}
	return st
}
