package reaper

import (
	"sync/atomic"
	"tailf/internal/positions"
	"time"

	"github.com/spf13/afero"
)

// Deletes rotated files once fully shipped and past the grace period
type Reaper struct {
	Namespace []string
	fsys      afero.Fs
	store     *positions.Store
	command   string           // optional shell command run after each delete
	now       func() time.Time // clock, replaceable in tests
	Metrics   *MetricStorage
}

type MetricStorage struct {
	Reaped atomic.Uint64
}
