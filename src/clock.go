package wxsame

import "time"

// Clock returns the current time as Unix seconds. Carried as a field
// rather than evaluated at construction time, so tests can supply a
// deterministic counter instead of the wall clock.
type Clock func() int64

// realClock is the default Clock, backed by the system wall clock.
func realClock() int64 {
	return time.Now().Unix()
}
