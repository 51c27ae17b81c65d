//go:build unix

package clock

import "golang.org/x/sys/unix"

func userTime() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	return timevalNanos(ru.Utime)
}

func snapshot() Usage {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return Usage{}
	}
	return Usage{
		SystemTime:             timevalNanos(ru.Stime),
		MajorPageFaults:        int64(ru.Majflt),
		VoluntaryCtxSwitches:   int64(ru.Nvcsw),
		InvoluntaryCtxSwitches: int64(ru.Nivcsw),
	}
}

func timevalNanos(tv unix.Timeval) int64 {
	return int64(tv.Sec)*1e9 + int64(tv.Usec)*1e3
}
