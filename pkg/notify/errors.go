package notify

import "errors"

// ErrHubClosed is returned when emitting on a closed hub.
var ErrHubClosed = errors.New("notify: hub is closed")
