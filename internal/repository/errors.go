// Package repository implements the MySQL persistence layer: the
// reservation ledger, the restaurant catalog, menus, users and refresh
// tokens.  Repositories return the booking package's sentinel errors
// where its contracts require them, plus a few sentinels of their own
// for auth-specific cases.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/reservebite/reservebite-api/internal/booking"
)

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a delete or update cannot proceed
// because of dependent records, such as deleting a restaurant that
// still has open reservations. Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers the ledger cares about.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// mysqlErrno extracts the server error number, or 0 for non-MySQL
// errors.
func mysqlErrno(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports whether err is a unique-key violation.
func isDuplicate(err error) bool {
	return mysqlErrno(err) == mysqlErrDuplicateEntry
}

// classifyTxErr maps transaction failures onto the booking taxonomy.
// Deadlocks and lock wait timeouts become booking.ErrConflict so the
// engine can retry the commit; everything else passes through
// unchanged.
func classifyTxErr(err error) error {
	switch mysqlErrno(err) {
	case mysqlErrDeadlock, mysqlErrLockWaitTimeout:
		return booking.ErrConflict
	default:
		return err
	}
}
