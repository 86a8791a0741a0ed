package redisx

import "time"

const (
	// Bearer session: session:{token} -> user id. Written by the account service.
	KeySession = "session:%s"

	// Cached statistics report: stats:v{version}:{kind}:{date}:{flower}
	KeyStats = "stats:v%d:%s:%s:%s"

	// Bumped on every placed order; cached reports of older versions are ignored.
	KeyStatsVersion = "stats:version"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLDedup = 48 * time.Hour
)
