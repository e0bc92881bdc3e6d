// Package timestamp provides utilities for handling the on-disk timestamp
// encoding used by EssenceFS2: microseconds since the Unix epoch.
package timestamp

import "time"

// FromMicros converts an EssenceFS2 on-disk timestamp (microseconds since
// 1 January 1970 UTC) into a time.Time.
func FromMicros(us uint64) time.Time {
	return time.UnixMicro(int64(us)).UTC()
}

// ToSeconds truncates an on-disk microsecond timestamp to whole seconds,
// the resolution the Dir() hook info exposes.
func ToSeconds(us uint64) int64 {
	return int64(us / 1_000_000)
}
