// Package sysmem probes total system memory for resolving
// Software.MaximumVolumeMemory=Automatic. The real probe is
// Linux-only (golang.org/x/sys/unix.Sysinfo); other platforms get a
// conservative stub.
package sysmem

// FiveHundredMB and OneGB are the bounds used by the Automatic
// resolution: max(512MB, totalMemory-1GB).
const (
	FiveHundredMB = 512 * 1024 * 1024
	OneGB         = 1024 * 1024 * 1024
)

// AutomaticVolumeMemory resolves Software.MaximumVolumeMemory=Automatic
// to a byte budget: the greater of 512MB and (total system memory - 1GB).
func AutomaticVolumeMemory() int64 {
	total := TotalMemory()
	budget := total - OneGB
	if budget < FiveHundredMB {
		return FiveHundredMB
	}
	return budget
}
