package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Pipeline errors
	ErrExtractFailed  = fmt.Errorf("failed to extract video information")
	ErrNoItems        = fmt.Errorf("no videos found")
	ErrDownloadFailed = fmt.Errorf("failed to download audio")
	ErrUploadFailed   = fmt.Errorf("failed to upload media")
	ErrPublishFailed  = fmt.Errorf("failed to send to external API")
	ErrPanic          = fmt.Errorf("unexpected processing error")

	// Registry errors
	ErrTaskNotFound = fmt.Errorf("task not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
