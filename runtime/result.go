// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"fmt"

	"github.com/pkg/errors"
)

// Status is the outcome kind of applying a transaction or event.
type Status byte

const (
	Pass Status = iota
	Fail
	Warning // a failure found while only checking
)

func (s Status) String() string {
	switch s {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	default:
		return "WARNING"
	}
}

// Result is the outcome of a handler.
type Result struct {
	Status  Status
	Message string
}

// Passed returns the standard pass result.
func Passed(checkOnly bool) Result {
	if checkOnly {
		return Result{Pass, "Check only"}
	}
	return Result{Status: Pass}
}

// Failed returns a failure result.
func Failed(format string, args ...any) Result {
	return Result{Fail, fmt.Sprintf(format, args...)}
}

// OK reports whether the result is an unconditional success.
func (r Result) OK() bool { return r.Status == Pass }

func (r Result) String() string {
	if r.Message == "" {
		return r.Status.String()
	}
	return r.Status.String() + ": " + r.Message
}

// Rejection is the error raised by a check a transaction does not pass.
type Rejection struct {
	msg string
}

// Reject creates a rejection.
func Reject(format string, args ...any) *Rejection {
	return &Rejection{fmt.Sprintf(format, args...)}
}

func (r *Rejection) Error() string { return r.msg }

// Result converts the rejection. A rejection found while only checking is a warning.
func (r *Rejection) Result(checkOnly bool) Result {
	if checkOnly {
		return Result{Warning, r.msg}
	}
	return Result{Fail, r.msg}
}

// IsRejection reports whether err is, or wraps, a rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// ErrNotImplemented is raised, as a panic, when no handler exists for a
// transaction type. Nodes disagreeing on their handler set cannot recover.
var ErrNotImplemented = errors.New("not implemented")

// IsNotImplemented reports whether v, an error or a recovered panic value,
// is a dispatch miss.
func IsNotImplemented(v any) bool {
	err, ok := v.(error)
	return ok && errors.Is(err, ErrNotImplemented)
}
