package tui

import "errors"

// ErrMissingStatusService is returned when the status service is not provided.
var ErrMissingStatusService = errors.New("tui: status service is required")

// ErrMissingQueueService is returned when the queue service is not provided.
var ErrMissingQueueService = errors.New("tui: queue service is required")
