package version

import (
	"os"
	"strings"
	"sync"
)

var (
	version = VersionLocal
	once    sync.Once
)

const VersionLocal = "0-local"

// Version returns the current version. It is read from a file baked into the
// release image; development builds report VersionLocal.
func Version() string {
	once.Do(func() {
		data, err := os.ReadFile("./version")
		if err != nil {
			return
		}
		version = strings.TrimSpace(string(data))
	})

	return version
}
