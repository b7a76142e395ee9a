// Package server provides the HTTP server for the trackcut API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

// CreateJobRequest is the HTTP request body for creating a new split job.
type CreateJobRequest struct {
	// ArchiveURL points at a zip bundle of recordings to download and split.
	ArchiveURL string `json:"archive_url" validate:"required_without=Inputs,omitempty,url"`
	// Inputs are server-local recording paths, in playback order.
	Inputs []string `json:"inputs" validate:"omitempty,min=1,dive,required"`
	// Chunked marks Inputs as consecutive analysis chunks of SourcePath.
	Chunked bool `json:"chunked"`
	// SourcePath is the original recording the chunks were sliced from.
	SourcePath string `json:"source_path" validate:"required_if=Chunked true"`
	// Targets are requested track durations ("m:ss" or "h:mm:ss"), in order.
	// Empty means silence-only splitting.
	Targets []string `json:"targets" validate:"omitempty,min=1,dive,required"`
	// TracklistURL optionally points at a published track list used to fill
	// Targets when none are given.
	TracklistURL string `json:"tracklist_url" validate:"omitempty,url"`
	// MinTrackSec overrides the minimum track length for silence-only
	// splitting.
	MinTrackSec float64 `json:"min_track_sec" validate:"omitempty,gt=0"`
}

// CreateJobResponse is the HTTP response after creating a job.
type CreateJobResponse struct {
	// ID is the unique identifier for the created job.
	ID string `json:"id"`
	// Status is the initial job status.
	Status string `json:"status"`
}

// TrackResponse describes one published track of a finished job.
type TrackResponse struct {
	// Index is the track's position in the output ordering.
	Index int `json:"index"`
	// Name is the published file name.
	Name string `json:"name"`
	// URL is where the track can be retrieved.
	URL string `json:"url"`
	// DurationSec is the track length in seconds.
	DurationSec float64 `json:"duration_sec"`
}

// JobResponse is the HTTP response for getting job details.
type JobResponse struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// Error contains any error message if the job failed.
	Error string `json:"error,omitempty"`
	// Unsatisfied counts requested tracks the recordings could not fill
	// (PARTIAL jobs only).
	Unsatisfied int `json:"unsatisfied,omitempty"`
	// Tracks are the published outputs (terminal jobs only).
	Tracks []TrackResponse `json:"tracks,omitempty"`
}

// JobListResponse is the HTTP response for listing jobs.
type JobListResponse struct {
	// Jobs are the known jobs, without their track details.
	Jobs []JobSummary `json:"jobs"`
}

// JobSummary is one entry of a job listing.
type JobSummary struct {
	// ID is the unique identifier for the job.
	ID string `json:"id"`
	// Status is the current job status.
	Status string `json:"status"`
	// Tracks is the number of published outputs so far.
	Tracks int `json:"tracks"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
