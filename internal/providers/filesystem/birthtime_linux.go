//go:build linux

package filesystem

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime reads btime via statx, falling back to mtime when the
// filesystem does not record it
func birthTime(path string, info os.FileInfo) time.Time {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err == nil && stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec))
	}
	return info.ModTime()
}
