package consts

import "time"

const (
	// MaxLogEntries bounds the per-deployment log buffer. Oldest entries are
	// evicted first once the cap is hit.
	MaxLogEntries = 500

	// StopGracePeriod is how long a live process gets after SIGTERM before
	// it is killed.
	StopGracePeriod = 5 * time.Second

	// PanelPollInterval is the delay between remote server status polls.
	PanelPollInterval = 10 * time.Second

	// PanelPollFailureLimit is the number of consecutive failed polls before
	// a remote deployment is marked failed. A single missed poll only warns.
	PanelPollFailureLimit = 3

	// MetricsInterval is the delay between metric samples of a running bot.
	MetricsInterval = 15 * time.Second

	// PanelErrorBodyLimit caps how much of a panel error response body is
	// carried in the raised error.
	PanelErrorBodyLimit = 300

	// ManifestFetchTimeout bounds the best-effort live config schema fetch.
	ManifestFetchTimeout = 10 * time.Second
)
