package noboiler

import "github.com/pkg/errors"

// Frame acquisition errors. Device contexts return errors matching one of
// these through errors.Is so the run loop can classify them.
var (
	ErrTimeout     = errors.New("noboiler: frame acquire timed out")
	ErrOutdated    = errors.New("noboiler: surface is outdated")
	ErrLost        = errors.New("noboiler: surface lost")
	ErrOutOfMemory = errors.New("noboiler: out of memory")
)

var (
	ErrNoPlatform = errors.New("noboiler: no platform configured")
	ErrNoAdapter  = errors.New("noboiler: no compatible graphics adapter")
)

// IsTransient reports whether err is recovered by reconfiguring the surface
// and skipping the frame.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrOutdated) ||
		errors.Is(err, ErrLost)
}

// IsFatal reports whether err must terminate the run loop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory)
}
