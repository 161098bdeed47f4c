package config

import "time"

const (
	// Matchmaking
	MatchDebounce       = 3 * time.Second
	RealtimeSettleDelay = 500 * time.Millisecond
	WelcomeMessage      = "You both love this song! Say hi and talk about the music."

	// Registry
	StaleListenerAge = 30 * time.Minute
	SweepSchedule    = "*/5 * * * *"

	// Catalog proxy
	CatalogCacheTTL = 60 * time.Second
)
