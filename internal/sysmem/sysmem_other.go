//go:build !linux

package sysmem

// TotalMemory returns a conservative placeholder total memory on
// platforms without a wired sysinfo probe.
func TotalMemory() int64 {
	return 4 * OneGB
}
