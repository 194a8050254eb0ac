package services

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// slowThreshold flags operations dominated by remote round trips (backtest
// loops, universe queries) when they run long.
const slowThreshold = 5 * time.Second

// TrackTime logs the elapsed time of an operation; deferred at the top of
// service entry points.
func TrackTime(operation string, start time.Time) {
	elapsed := time.Since(start)
	if elapsed > slowThreshold {
		log.Warnf("%s took %d ms", operation, elapsed.Milliseconds())
		return
	}
	log.Debugf("%s took %d ms", operation, elapsed.Milliseconds())
}
