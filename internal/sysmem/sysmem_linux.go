//go:build linux

package sysmem

import "golang.org/x/sys/unix"

// TotalMemory returns total physical memory in bytes, as reported by
// the kernel via sysinfo(2).
func TotalMemory() int64 {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return FiveHundredMB + OneGB
	}
	return int64(info.Totalram) * int64(info.Unit)
}
