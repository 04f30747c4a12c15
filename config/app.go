package config

import (
	"os"
	"strconv"
	"time"
)

const defaultNotifyPollSeconds = 60

// NotifyPollInterval is the interval clients should use when polling the
// notifications endpoint. Notification delivery is pull-based, so this value
// is also the staleness bound for unlock-request messages reaching
// administrators. Configurable via NOTIFY_POLL_SECONDS.
func NotifyPollInterval() time.Duration {
	s, err := strconv.Atoi(os.Getenv("NOTIFY_POLL_SECONDS"))
	if err != nil || s <= 0 {
		s = defaultNotifyPollSeconds
	}
	return time.Duration(s) * time.Second
}
