// Package timeflip implements the TimeFlip API client and the daily
// report normalizer.
package timeflip

import (
	"encoding/json"
	"fmt"

	"github.com/eliasvk/tracksync/internal/apperr"
	"github.com/eliasvk/tracksync/internal/models"
)

// Raw report payload shape: weeks → days → task infos.
type reportPayload struct {
	Weeks []weekPayload `json:"weeks"`
}

type weekPayload struct {
	Days []dayPayload `json:"days"`
}

type dayPayload struct {
	DateStr   string            `json:"dateStr"`
	TasksInfo []taskInfoPayload `json:"tasksInfo"`
}

type taskInfoPayload struct {
	Task      taskPayload `json:"task"`
	TotalTime int         `json:"totalTime"`
}

type taskPayload struct {
	Name string `json:"name"`
}

// Normalize flattens a raw daily-report body into a per-date table.
// Week and day ordering is irrelevant after flattening; entries are keyed
// by date string, and a duplicate date in the payload wins by last write
// (the source should never produce one, but this is not verified here).
//
// A body that is not JSON or lacks the weeks/days/tasksInfo nesting is a
// malformed-report condition, not an empty result.
func Normalize(body []byte) (map[string]models.DailyReport, error) {
	var payload reportPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("timeflip: %w: %v", apperr.ErrMalformedReport, err)
	}
	if payload.Weeks == nil {
		return nil, fmt.Errorf("timeflip: %w: missing weeks", apperr.ErrMalformedReport)
	}

	out := make(map[string]models.DailyReport)
	for _, week := range payload.Weeks {
		if week.Days == nil {
			return nil, fmt.Errorf("timeflip: %w: week missing days", apperr.ErrMalformedReport)
		}
		for _, day := range week.Days {
			if day.DateStr == "" {
				return nil, fmt.Errorf("timeflip: %w: day missing dateStr", apperr.ErrMalformedReport)
			}
			if day.TasksInfo == nil {
				return nil, fmt.Errorf("timeflip: %w: day %s missing tasksInfo", apperr.ErrMalformedReport, day.DateStr)
			}
			tasks := make([]models.TaskDuration, len(day.TasksInfo))
			for i, info := range day.TasksInfo {
				tasks[i] = models.TaskDuration{
					Name:         info.Task.Name,
					TotalTimeSec: info.TotalTime,
					TotalTimeMin: models.RoundMinutes(info.TotalTime),
				}
			}
			out[day.DateStr] = models.DailyReport{DateStr: day.DateStr, Tasks: tasks}
		}
	}
	return out, nil
}
