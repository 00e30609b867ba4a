// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"errors"
	"fmt"
)

// Reason identifies which validation check rejected a request.
type Reason int

const (
	InvalidKeywordFormat Reason = iota + 1
	KeywordTooLong
	InvalidPagination
	InvalidVenue
	InvalidYear
)

// Sentinel errors, one per Reason. A *ValidationError wraps exactly one.
var (
	ErrInvalidKeywordFormat = errors.New("invalid keyword format")
	ErrKeywordTooLong       = errors.New("keyword too long")
	ErrInvalidPagination    = errors.New("invalid pagination")
	ErrInvalidVenue         = errors.New("invalid venue")
	ErrInvalidYear          = errors.New("invalid year")
)

var reasonSentinels = map[Reason]error{
	InvalidKeywordFormat: ErrInvalidKeywordFormat,
	KeywordTooLong:       ErrKeywordTooLong,
	InvalidPagination:    ErrInvalidPagination,
	InvalidVenue:         ErrInvalidVenue,
	InvalidYear:          ErrInvalidYear,
}

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case InvalidKeywordFormat:
		return "InvalidKeywordFormat"
	case KeywordTooLong:
		return "KeywordTooLong"
	case InvalidPagination:
		return "InvalidPagination"
	case InvalidVenue:
		return "InvalidVenue"
	case InvalidYear:
		return "InvalidYear"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// ValidationError reports a rejected request parameter. Validation errors
// are caller-input errors and are never worth retrying.
type ValidationError struct {
	Reason Reason

	// Param is the request parameter that failed (q, offset, limit, s, y).
	Param string

	// Value is the offending input, or the offending token within it.
	Value string

	// Detail is an optional human-readable explanation.
	Detail string
}

func (e *ValidationError) Error() string {
	msg := "invalid request"
	if sentinel, ok := reasonSentinels[e.Reason]; ok {
		msg = sentinel.Error()
	}
	if e.Param != "" {
		msg = fmt.Sprintf("%s: %s=%q", msg, e.Param, e.Value)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap returns the sentinel for the reason so errors.Is works.
func (e *ValidationError) Unwrap() error {
	return reasonSentinels[e.Reason]
}

func reject(reason Reason, param, value, detail string) *ValidationError {
	return &ValidationError{Reason: reason, Param: param, Value: value, Detail: detail}
}

// ReasonOf returns the Reason carried by err, or 0 if err is not a
// validation error.
func ReasonOf(err error) Reason {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return 0
}
