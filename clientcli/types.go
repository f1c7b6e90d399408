package clientcli

import (
	"github.com/sagarc03/stowback"
)

// JobResult is the outcome of archiving or restoring a single path.
type JobResult struct {
	Path string             `json:"path"`
	Job  stowback.JobRecord `json:"job"`
	Err  error              `json:"-"`
}

// Failed reports whether the request did not succeed.
func (r JobResult) Failed() bool {
	return r.Err != nil
}

// RestoreOptions configures a restore request.
type RestoreOptions struct {
	// Replace empties target directories before extracting. The default
	// merges the archive into whatever is already there.
	Replace bool
}

// Mode returns the server-side restore mode for the options.
func (o RestoreOptions) Mode() stowback.RestoreMode {
	if o.Replace {
		return stowback.ModeReplace
	}
	return stowback.ModeMerge
}

// ListJobsOptions configures a job listing.
type ListJobsOptions struct {
	Prefix string
	Limit  int
	Cursor string
	// All follows next_cursor until the listing is exhausted.
	All bool
}

// JobList is a page of jobs, newest first.
type JobList struct {
	Items      []stowback.JobRecord `json:"items"`
	NextCursor string               `json:"next_cursor,omitempty"`
}

// TotalBytes returns the sum of bytes moved by all jobs in the list.
func (l *JobList) TotalBytes() int64 {
	var total int64
	for i := range l.Items {
		total += l.Items[i].Bytes
	}
	return total
}

// Failures counts the failed jobs in the list.
func (l *JobList) Failures() int {
	n := 0
	for i := range l.Items {
		if l.Items[i].Status == stowback.StatusFailed {
			n++
		}
	}
	return n
}

type jobResponse struct {
	Success bool               `json:"success"`
	Job     stowback.JobRecord `json:"job"`
}

type errorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Job     *stowback.JobRecord `json:"job,omitempty"`
}
