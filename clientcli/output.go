package clientcli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagarc03/stowback"
)

// Formatter formats results for output.
type Formatter interface {
	FormatJobs(w io.Writer, results []JobResult) error
	FormatJob(w io.Writer, job *stowback.JobRecord) error
	FormatJobList(w io.Writer, list *JobList) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatJobs prints one line per archive or restore request. Failures are
// always printed, successes only when not quiet.
func (f *HumanFormatter) FormatJobs(w io.Writer, results []JobResult) error {
	for i := range results {
		r := &results[i]
		if r.Err != nil {
			_, _ = fmt.Fprintf(w, "Error: %s - %v\n", r.Path, r.Err)
			continue
		}
		if f.Quiet {
			continue
		}
		verb := "Archived"
		if r.Job.Kind == stowback.KindRestore {
			verb = "Restored"
			if r.Job.Mode != "" {
				verb += " (" + string(r.Job.Mode) + ")"
			}
		}
		_, _ = fmt.Fprintf(w, "%s: %s (%s, %s)\n", verb, r.Path, formatSize(r.Job.Bytes), formatDuration(r.Job.Duration()))
		_, _ = fmt.Fprintf(w, "  Job: %s\n", r.Job.ID)
	}
	return nil
}

// FormatJob prints a single job record.
func (f *HumanFormatter) FormatJob(w io.Writer, job *stowback.JobRecord) error {
	_, _ = fmt.Fprintf(w, "ID:         %s\n", job.ID)
	_, _ = fmt.Fprintf(w, "Kind:       %s\n", job.Kind)
	if job.Mode != "" {
		_, _ = fmt.Fprintf(w, "Mode:       %s\n", job.Mode)
	}
	_, _ = fmt.Fprintf(w, "Path:       %s\n", job.SourcePath)
	_, _ = fmt.Fprintf(w, "Object:     %s\n", job.ObjectKey)
	_, _ = fmt.Fprintf(w, "Directory:  %t\n", job.IsDirectory)
	_, _ = fmt.Fprintf(w, "Compressed: %t\n", job.IsCompressed)
	_, _ = fmt.Fprintf(w, "Status:     %s\n", job.Status)
	if job.ErrorKind != "" {
		_, _ = fmt.Fprintf(w, "Error:      %s: %s\n", job.ErrorKind, job.ErrorMessage)
	}
	_, _ = fmt.Fprintf(w, "Size:       %s\n", formatSize(job.Bytes))
	if job.ETag != "" {
		_, _ = fmt.Fprintf(w, "ETag:       %s\n", job.ETag)
	}
	_, _ = fmt.Fprintf(w, "Started:    %s\n", job.StartedAt.Local().Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "Duration:   %s\n", formatDuration(job.Duration()))
	return nil
}

// FormatJobList formats a job listing as a table.
func (f *HumanFormatter) FormatJobList(w io.Writer, list *JobList) error {
	if len(list.Items) == 0 {
		_, _ = fmt.Fprintln(w, "No jobs found")
		return nil
	}

	maxPathLen := 4 // "PATH"
	for i := range list.Items {
		if len(list.Items[i].SourcePath) > maxPathLen {
			maxPathLen = len(list.Items[i].SourcePath)
		}
	}
	if maxPathLen > 50 {
		maxPathLen = 50
	}

	_, _ = fmt.Fprintf(w, "%-19s  %-7s  %-9s  %-*s  %10s  %s\n", "STARTED", "KIND", "STATUS", maxPathLen, "PATH", "SIZE", "ID")
	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s  %s  %s\n",
		strings.Repeat("-", 19), strings.Repeat("-", 7), strings.Repeat("-", 9),
		strings.Repeat("-", maxPathLen), strings.Repeat("-", 10), strings.Repeat("-", 36))

	for i := range list.Items {
		job := &list.Items[i]
		path := job.SourcePath
		if len(path) > maxPathLen {
			path = "..." + path[len(path)-maxPathLen+3:]
		}
		_, _ = fmt.Fprintf(w, "%-19s  %-7s  %-9s  %-*s  %10s  %s\n",
			job.StartedAt.Local().Format("2006-01-02 15:04:05"),
			job.Kind,
			job.Status,
			maxPathLen,
			path,
			formatSize(job.Bytes),
			job.ID,
		)
	}

	_, _ = fmt.Fprintf(w, "\n%d job(s), %d failed (%s total)\n", len(list.Items), list.Failures(), formatSize(list.TotalBytes()))

	if list.NextCursor != "" {
		_, _ = fmt.Fprintf(w, "Next page: use --cursor %q\n", list.NextCursor)
	}

	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	maxNameLen := 4 // "NAME"
	for i := range profiles {
		if len(profiles[i].Name) > maxNameLen {
			maxNameLen = len(profiles[i].Name)
		}
	}
	if maxNameLen > 20 {
		maxNameLen = 20
	}

	_, _ = fmt.Fprintf(w, "  %-*s  %s\n", maxNameLen, "NAME", "ENDPOINT")
	_, _ = fmt.Fprintf(w, "  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", 8))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		name := p.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %s\n", marker, maxNameLen, name, p.Endpoint)
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	if profile.Timeout > 0 {
		_, _ = fmt.Fprintf(w, "Timeout:  %s\n", profile.Timeout)
	}
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatJobs formats archive or restore results as JSON.
func (f *JSONFormatter) FormatJobs(w io.Writer, results []JobResult) error {
	type jsonResult struct {
		Path  string              `json:"path"`
		Job   *stowback.JobRecord `json:"job,omitempty"`
		Error string              `json:"error,omitempty"`
	}

	output := struct {
		Results []jsonResult `json:"results"`
	}{
		Results: make([]jsonResult, len(results)),
	}

	for i := range results {
		r := &results[i]
		jr := jsonResult{Path: r.Path}
		if r.Job.ID != uuid.Nil {
			jr.Job = &r.Job
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		output.Results[i] = jr
	}

	return writeJSON(w, output)
}

// FormatJob formats a single job record as JSON.
func (f *JSONFormatter) FormatJob(w io.Writer, job *stowback.JobRecord) error {
	return writeJSON(w, job)
}

// FormatJobList formats a job listing as JSON.
func (f *JSONFormatter) FormatJobList(w io.Writer, list *JobList) error {
	return writeJSON(w, list)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		output.Profiles[i] = jsonProfile{
			Name:     profiles[i].Name,
			Endpoint: profiles[i].Endpoint,
			Default:  profiles[i].Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault bool) error {
	output := struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		Timeout  string `json:"timeout,omitempty"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		Default:  isDefault,
	}
	if profile.Timeout > 0 {
		output.Timeout = profile.Timeout.String()
	}
	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
		TB = GB * 1024
	)

	switch {
	case bytes >= TB:
		return fmt.Sprintf("%.1f TB", float64(bytes)/TB)
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < 0:
		return "0s"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
