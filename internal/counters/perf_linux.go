//go:build linux

package counters

import (
	"encoding/binary"
	"errors"

	"golang.org/x/sys/unix"

	"gcmeter/internal/events"
)

// maxHardwareCounters is a conservative bound on general-purpose counter
// registers per core. The kernel would multiplex sets beyond the physical
// limit, which silently turns exact counts into estimates; rejecting larger
// selections up front keeps measurements exact.
const maxHardwareCounters = 8

func defaultBackend() Backend { return perfBackend{} }

// perfBackend allocates counters through perf_event_open, scoped to the
// calling thread.
type perfBackend struct{}

func (perfBackend) MaxCounters() int { return maxHardwareCounters }

func (perfBackend) Open(descriptors []events.Descriptor) (EventSet, error) {
	set := &perfSet{
		fds:  make([]int, 0, len(descriptors)),
		prev: make([]uint64, len(descriptors)),
	}

	for _, d := range descriptors {
		attr := unix.PerfEventAttr{
			Type:   d.Type,
			Config: d.Config,
			Size:   unix.PERF_ATTR_SIZE_VER7,
			Bits:   unix.PerfBitDisabled | unix.PerfBitExcludeHv,
		}

		// pid=0, cpu=-1: this thread, any CPU.
		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			set.Close()
			libErr := &LibraryError{Op: "perf_event_open", Code: codeFromErrno(err), Errno: err}
			switch libErr.Code {
			case CodePermission, CodeNoCounterSupport, CodeEventConflict:
				return nil, &ResourceError{
					Event:  d.Name,
					Reason: "counter allocation failed",
					Cause:  libErr,
				}
			}
			return nil, libErr
		}
		set.fds = append(set.fds, fd)
	}

	if err := set.ioctlAll(unix.PERF_EVENT_IOC_RESET, "ioctl(PERF_EVENT_IOC_RESET)"); err != nil {
		set.Close()
		return nil, err
	}
	return set, nil
}

type perfSet struct {
	fds []int

	// prev holds the raw register value at the last flush, per event, so
	// Accumulate can hand out deltas without resetting the hardware.
	prev []uint64
}

func (s *perfSet) ioctlAll(req uint, op string) error {
	for _, fd := range s.fds {
		if err := unix.IoctlSetInt(fd, req, 0); err != nil {
			return &LibraryError{Op: op, Code: codeFromErrno(err), Errno: err}
		}
	}
	return nil
}

func (s *perfSet) Start() error {
	return s.ioctlAll(unix.PERF_EVENT_IOC_ENABLE, "ioctl(PERF_EVENT_IOC_ENABLE)")
}

func (s *perfSet) Stop() error {
	return s.ioctlAll(unix.PERF_EVENT_IOC_DISABLE, "ioctl(PERF_EVENT_IOC_DISABLE)")
}

func (s *perfSet) Accumulate(dst []int64) error {
	if len(dst) != len(s.fds) {
		return &LibraryError{Op: "read", Code: CodeInvalidArgument}
	}

	var buf [8]byte
	for i, fd := range s.fds {
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			return &LibraryError{Op: "read", Code: codeFromErrno(err), Errno: err}
		}
		if n != 8 {
			return &LibraryError{Op: "read", Code: CodeBufferOverflow}
		}
		raw := binary.NativeEndian.Uint64(buf[:])
		dst[i] += int64(raw - s.prev[i])
		s.prev[i] = raw
	}
	return nil
}

func (s *perfSet) Reset() error {
	if err := s.ioctlAll(unix.PERF_EVENT_IOC_RESET, "ioctl(PERF_EVENT_IOC_RESET)"); err != nil {
		return err
	}
	for i := range s.prev {
		s.prev[i] = 0
	}
	return nil
}

func (s *perfSet) Close() error {
	var firstErr error
	for _, fd := range s.fds {
		if err := unix.Close(fd); err != nil && firstErr == nil {
			firstErr = &LibraryError{Op: "close", Code: codeFromErrno(err), Errno: err}
		}
	}
	s.fds = nil
	return firstErr
}

// codeFromErrno is the single conversion point from OS errnos to the closed
// status-code table.
func codeFromErrno(err error) Code {
	for _, m := range errnoCodes {
		if errors.Is(err, m.errno) {
			return m.code
		}
	}
	return CodeSystemCall
}

var errnoCodes = []struct {
	errno unix.Errno
	code  Code
}{
	{unix.EACCES, CodePermission},
	{unix.EPERM, CodePermission},
	{unix.ENOENT, CodeUnknownEvent},
	{unix.ENODEV, CodeNoCounterSupport},
	{unix.EOPNOTSUPP, CodeNoCounterSupport},
	{unix.ENOSYS, CodeNoCounterSupport},
	{unix.EMFILE, CodeEventConflict},
	{unix.ENOSPC, CodeEventConflict},
	{unix.ENOMEM, CodeOutOfMemory},
	{unix.E2BIG, CodeInvalidArgument},
	{unix.EINVAL, CodeInvalidArgument},
	{unix.EBADF, CodeInvalidArgument},
	{unix.EFAULT, CodeInvalidArgument},
	{unix.EINTR, CodeCountersLost},
}
