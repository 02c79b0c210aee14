package backendapi

import (
	"context"
	"net/http"
	"net/url"

	"schedule_web/backend/internal/timetable"
)

// FetchSchedule loads every generated period, ordered by day.
func (c *Client) FetchSchedule(ctx context.Context) ([]timetable.Entry, error) {
	var entries []timetable.Entry
	query := url.Values{"order": {"day"}, "dir": {"asc"}}
	if err := c.List(ctx, ScheduleView, query, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []timetable.Entry{}
	}
	return entries, nil
}

// GenerateSchedule asks the backend to rebuild the timetable.
func (c *Client) GenerateSchedule(ctx context.Context) error {
	return c.send(ctx, "schedule.generate", http.MethodPost, ScheduleGeneratePath, nil, true)
}

var _ timetable.Source = (*Client)(nil)
