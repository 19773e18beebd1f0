package nsx

import "fmt"

// FormatError indicates that the file contents violate the NSx layout:
// an unsupported file type tag, a sampling period other than 1, or a data
// packet that does not start with the 0x01 sentinel. The file is assumed
// static, so a FormatError is fatal and never retried.
type FormatError struct {
	Offset int64  // byte offset at which the violation was found
	Reason string // human-readable description
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid NSx file at byte %d: %s", e.Offset, e.Reason)
}

// SelectionError indicates that a non-empty channel or electrode request
// resolved to an empty set. The caller may retry with a different request.
type SelectionError struct {
	Kind      string // "electrodes" or "channels"
	Requested []int
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("none of the requested %s %v are in the file", e.Kind, e.Requested)
}
