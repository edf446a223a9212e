package retry

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"net/textproto"
	"syscall"
)

// SQL Server error numbers that indicate a connectivity or throttling problem
var transientSQLErrors = map[int32]struct{}{
	-2:    {}, // timeout
	53:    {}, // server not found
	233:   {}, // no process on the other end of the pipe
	1205:  {}, // deadlock victim
	4060:  {}, // cannot open database
	10053: {},
	10054: {},
	10060: {},
	40197: {},
	40501: {},
	40613: {},
	49918: {},
	49919: {},
	49920: {},
}

type sqlErrorNumberer interface {
	SQLErrorNumber() int32
}

type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// MarkTransient flags err as retryable regardless of its kind.
func MarkTransient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

func isMarked(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

func isNetwork(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

// IsTransientDB reports whether a data access error is worth retrying.
func IsTransientDB(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if isMarked(err) || isNetwork(err) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se sqlErrorNumberer
	if errors.As(err, &se) {
		_, ok := transientSQLErrors[se.SQLErrorNumber()]
		return ok
	}
	return false
}

// IsTransientTransport reports whether a mail transport error is worth retrying.
func IsTransientTransport(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if isMarked(err) || isNetwork(err) || errors.Is(err, io.EOF) {
		return true
	}
	var tpe *textproto.Error
	if errors.As(err, &tpe) {
		return tpe.Code >= 400 && tpe.Code < 500
	}
	return false
}
