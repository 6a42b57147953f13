package transport

import "time"

// SendRequest is the body of POST /admin/digests/weekly. An empty vertical
// means the vertical resolved from the request host.
type SendRequest struct {
	Vertical string `json:"vertical" validate:"omitempty,max=32"`
	DryRun   bool   `json:"dry_run"`
	Force    bool   `json:"force"`
}

// VerticalQuery selects a vertical for preview and run listings.
type VerticalQuery struct {
	Vertical string `form:"vertical" validate:"omitempty,max=32"`
}

// SendResponse reports a digest run, a dry run or a queued task.
type SendResponse struct {
	Message    string `json:"message"`
	Vertical   string `json:"vertical"`
	WeekOf     string `json:"week_of,omitempty"`
	Listings   int    `json:"listingsCount"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	DryRun     bool   `json:"dry_run,omitempty"`
	Queued     bool   `json:"queued,omitempty"`
	TaskID     string `json:"task_id,omitempty"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

// RunResponse is one row of the run history.
type RunResponse struct {
	ID         string    `json:"id"`
	Vertical   string    `json:"vertical"`
	WeekOf     string    `json:"week_of"`
	Recipients int       `json:"recipients"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	ArchiveKey *string   `json:"archive_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// RunListResponse wraps the run history.
type RunListResponse struct {
	Runs []RunResponse `json:"runs"`
}
