package counters

import "fmt"

// Code is a counter-library status code. The set is closed: every failure the
// backend can report maps onto exactly one of these, and a single message
// table covers them all. Success is zero, failures are negative, matching the
// ABI convention of native counter libraries.
type Code int

const (
	CodeOK               Code = 0
	CodeInvalidArgument  Code = -1
	CodeOutOfMemory      Code = -2
	CodeSystemCall       Code = -3
	CodeUnsupported      Code = -4
	CodeCountersLost     Code = -5
	CodeInternal         Code = -6
	CodeUnknownEvent     Code = -7
	CodeEventConflict    Code = -8
	CodeNotRunning       Code = -9
	CodeAlreadyRunning   Code = -10
	CodeNoEventSet       Code = -11
	CodeNotPreset        Code = -12
	CodeNoCounterSupport Code = -13
	CodePermission       Code = -14
	CodeNotInitialized   Code = -15
	CodeBufferOverflow   Code = -16
)

var codeNames = map[Code]string{
	CodeOK:               "OK",
	CodeInvalidArgument:  "EINVAL",
	CodeOutOfMemory:      "ENOMEM",
	CodeSystemCall:       "ESYS",
	CodeUnsupported:      "ENOSUPP",
	CodeCountersLost:     "ELOST",
	CodeInternal:         "EBUG",
	CodeUnknownEvent:     "ENOEVNT",
	CodeEventConflict:    "ECNFLCT",
	CodeNotRunning:       "ENOTRUN",
	CodeAlreadyRunning:   "EISRUN",
	CodeNoEventSet:       "ENOEVST",
	CodeNotPreset:        "ENOTPRESET",
	CodeNoCounterSupport: "ENOCNTR",
	CodePermission:       "EPERM",
	CodeNotInitialized:   "ENOINIT",
	CodeBufferOverflow:   "EBUF",
}

var codeMessages = map[Code]string{
	CodeOK:               "no error",
	CodeInvalidArgument:  "invalid argument",
	CodeOutOfMemory:      "insufficient memory",
	CodeSystemCall:       "system call failed",
	CodeUnsupported:      "not supported by this component",
	CodeCountersLost:     "access to the counters was lost or interrupted",
	CodeInternal:         "internal error",
	CodeUnknownEvent:     "event does not exist",
	CodeEventConflict:    "event exists, but cannot be counted due to hardware resource limits",
	CodeNotRunning:       "event set is not started",
	CodeAlreadyRunning:   "event set is already started",
	CodeNoEventSet:       "no event set available",
	CodeNotPreset:        "event is not a valid preset",
	CodeNoCounterSupport: "hardware does not support performance counters",
	CodePermission:       "permission level does not permit operation",
	CodeNotInitialized:   "counter library not initialized",
	CodeBufferOverflow:   "buffer size exceeded",
}

// String returns the symbolic name of the code, e.g. "ECNFLCT".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Message returns the human-readable description of the code.
func (c Code) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return "unknown error code"
}

// LibraryError wraps a single counter-library failure with its symbolic kind.
// It is always fatal to the measurement session that triggered it.
type LibraryError struct {
	// Op is the counter-library operation that failed, e.g.
	// "perf_event_open" or "ioctl(PERF_EVENT_IOC_ENABLE)".
	Op string

	// Code is the mapped status code.
	Code Code

	// Errno is the underlying OS error, when one exists.
	Errno error
}

func (e *LibraryError) Error() string {
	msg := fmt.Sprintf("counter library: %s: %s (%s, code %d)", e.Op, e.Code.Message(), e.Code, int(e.Code))
	if e.Errno != nil {
		msg += ": " + e.Errno.Error()
	}
	return msg
}

func (e *LibraryError) Unwrap() error { return e.Errno }

// ResourceError reports that a hardware counter resource could not serve a
// request: counter-set exhaustion, event conflicts, permission failures, or a
// second context attempting to run concurrently. The batch aborts; the
// context remains safely destroyable.
type ResourceError struct {
	// Event is the offending event name, when one can be identified.
	Event string

	// Reason describes the failure.
	Reason string

	// Cause is the underlying library error, if any.
	Cause error
}

func (e *ResourceError) Error() string {
	msg := "counter resource error"
	if e.Event != "" {
		msg += fmt.Sprintf(" for event %q", e.Event)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ResourceError) Unwrap() error { return e.Cause }
