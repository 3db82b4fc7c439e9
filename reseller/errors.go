package reseller

import "fmt"

// RejectedError means the reseller answered but refused the charge, either
// with a 4xx status or with a success status that carries no payment URL.
type RejectedError struct {
	StatusCode int
	MissingURL bool
	Reason     string
}

func (e *RejectedError) Error() string {
	if e.MissingURL {
		return "reseller declined the charge: " + e.Reason
	}
	return fmt.Sprintf("reseller rejected the charge with status %d: %s", e.StatusCode, e.Reason)
}

// UnavailableError means no usable answer came back: the reseller could not
// be reached, timed out, failed with a 5xx, or sent a body we cannot read.
type UnavailableError struct {
	StatusCode int
	Timeout    bool
	Malformed  bool
	Err        error
}

func (e *UnavailableError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("reseller did not answer in time: %v", e.Err)
	case e.Malformed:
		return fmt.Sprintf("reseller sent an unreadable response: %v", e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("reseller failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("reseller unreachable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
