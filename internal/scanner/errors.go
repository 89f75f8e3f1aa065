package scanner

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Veraticus/shelfscan/internal/common"
)

// ErrorKind classifies why a session failed to start.
type ErrorKind int

const (
	KindUnavailable ErrorKind = iota
	KindPermissionDenied
	KindNoDevice
	KindDeviceBusy
)

func (k ErrorKind) String() string {
	switch k {
	case KindPermissionDenied:
		return "permission_denied"
	case KindNoDevice:
		return "no_device"
	case KindDeviceBusy:
		return "device_busy"
	default:
		return "unavailable"
	}
}

// StartError is a classified start failure. Every StartError ends the
// attempt; nothing retries it.
type StartError struct {
	Err  error
	Kind ErrorKind
}

// Message is the text shown to the user.
func (e *StartError) Message() string {
	switch e.Kind {
	case KindPermissionDenied:
		return "Camera permission denied. Please allow camera access."
	case KindNoDevice:
		return "No camera found on this device."
	case KindDeviceBusy:
		return "Camera is being used by another application."
	default:
		return "Camera access denied or not available."
	}
}

func (e *StartError) Error() string {
	if e.Err == nil {
		return e.Message()
	}
	return fmt.Sprintf("%s: %v", e.Message(), e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind, so a failure classified
// from its message text still satisfies errors.Is.
func (e *StartError) Is(target error) bool {
	switch e.Kind {
	case KindPermissionDenied:
		return target == common.ErrPermissionDenied
	case KindNoDevice:
		return target == common.ErrNoDevice
	case KindDeviceBusy:
		return target == common.ErrDeviceBusy
	default:
		return false
	}
}

// Classify maps a decoder start error onto an ErrorKind. Typed errors are
// checked first; collaborators that only report text are matched on the
// names browsers and drivers use for the same conditions.
func Classify(err error) *StartError {
	var se *StartError
	if errors.As(err, &se) {
		return se
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}

	kind := KindUnavailable
	switch {
	case errors.Is(err, common.ErrPermissionDenied),
		errors.Is(err, os.ErrPermission),
		containsAny(msg, "Permission denied", "NotAllowedError"):
		kind = KindPermissionDenied
	case errors.Is(err, common.ErrNoDevice),
		errors.Is(err, os.ErrNotExist),
		containsAny(msg, "NotFoundError"):
		kind = KindNoDevice
	case errors.Is(err, common.ErrDeviceBusy),
		errors.Is(err, syscall.EBUSY),
		containsAny(msg, "NotReadableError"):
		kind = KindDeviceBusy
	}

	return &StartError{Kind: kind, Err: err}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
