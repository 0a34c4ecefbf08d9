package health

import (
	"net/http"
	"sync"
	"time"

	"github.com/fleetsync/gcp-integration-syncer/shared/errors"
	"github.com/fleetsync/gcp-integration-syncer/shared/syncerconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// passTimeMutex guards the pass timestamps; they are written by the sync
// loop goroutine and read by the health probe handler.
var passTimeMutex sync.Mutex
var lastPassStartTime = time.Time{}
var lastPassEndTime = time.Time{}

func UpdateLastPassStartTime() {
	passTimeMutex.Lock()
	defer passTimeMutex.Unlock()
	lastPassStartTime = time.Now()
}

func UpdateLastPassEndTime() {
	passTimeMutex.Lock()
	defer passTimeMutex.Unlock()
	lastPassEndTime = time.Now()
}

func ElapsedTimeSincePassStartWithoutCompletedPass() time.Duration {
	passTimeMutex.Lock()
	defer passTimeMutex.Unlock()

	if lastPassStartTime.IsZero() {
		return time.Duration(0)
	}

	// Completed pass
	if lastPassEndTime.After(lastPassStartTime) {
		return time.Duration(0)
	}

	return time.Since(lastPassStartTime)
}

// Checker fails the health probe when a pass has been stuck for longer than
// two sync intervals.
func Checker(*http.Request) error {
	threshold := 2 * viper.GetDuration(syncerconfig.SyncIntervalKey)
	if ElapsedTimeSincePassStartWithoutCompletedPass() > threshold {
		err := errors.Errorf("reconciliation pass running for more than %s - failing healthcheck", threshold)
		logrus.WithError(err).Error("Health check failed due to long reconciliation pass")
		return err
	}

	return nil
}
