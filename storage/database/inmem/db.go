// Package inmem is a map-backed implementation of the domain repositories,
// used by tests and local tinkering. It mirrors the ordering and enrichment
// semantics of the Postgres queries.
package inmem

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/file"
	"github.com/Ma114119/Combits-2025/core/group"
	"github.com/Ma114119/Combits-2025/core/membership"
	"github.com/Ma114119/Combits-2025/core/message"
	"github.com/Ma114119/Combits-2025/core/notification"
	"github.com/Ma114119/Combits-2025/core/session"
	"github.com/Ma114119/Combits-2025/core/user"
)

var errNotSupported = errors.New("raw SQL is not supported by the in-memory store")

type DB struct {
	mu sync.Mutex

	users         map[int]user.User
	groups        map[int]group.Group
	memberships   map[int]membership.Membership
	sessions      map[int]session.Session
	rsvps         map[int]session.RSVP
	files         map[int]file.File
	messages      map[int]message.Message
	notifications map[int]notification.Notification

	userSeq, groupSeq, membershipSeq, sessionSeq,
	rsvpSeq, fileSeq, messageSeq, notificationSeq int
}

var _ core.DB = (*DB)(nil)

func NewDB() *DB {
	db := &DB{}
	db.Reset()
	return db
}

// Reset drops all stored data. Sequences keep counting so IDs stay unique
// across resets within a test run.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = make(map[int]user.User)
	db.groups = make(map[int]group.Group)
	db.memberships = make(map[int]membership.Membership)
	db.sessions = make(map[int]session.Session)
	db.rsvps = make(map[int]session.RSVP)
	db.files = make(map[int]file.File)
	db.messages = make(map[int]message.Message)
	db.notifications = make(map[int]notification.Notification)
}

func (db *DB) Exec(string, ...interface{}) (sql.Result, error) { return nil, errNotSupported }
func (db *DB) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNotSupported
}
func (db *DB) Query(string, ...interface{}) (*sql.Rows, error) { return nil, errNotSupported }
func (db *DB) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNotSupported
}
func (db *DB) QueryRow(string, ...interface{}) *sql.Row                         { return nil }
func (db *DB) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }

// BeginTx takes the store lock for the duration of the transaction, which
// serializes writers the way the row locks do on Postgres. Rollback cannot
// undo anything; tests only exercise paths that either fully commit or fail
// before the first write.
func (db *DB) BeginTx(context.Context, *sql.TxOptions) (core.DBTransactor, error) {
	db.mu.Lock()
	return &tx{db: db}, nil
}

type tx struct {
	db   *DB
	done bool
}

func (t *tx) Commit() error {
	if !t.done {
		t.done = true
		t.db.mu.Unlock()
	}
	return nil
}

func (t *tx) Rollback() error {
	if !t.done {
		t.done = true
		t.db.mu.Unlock()
	}
	return nil
}

func (t *tx) Exec(string, ...interface{}) (sql.Result, error) { return nil, errNotSupported }
func (t *tx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNotSupported
}
func (t *tx) Query(string, ...interface{}) (*sql.Rows, error) { return nil, errNotSupported }
func (t *tx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNotSupported
}
func (t *tx) QueryRow(string, ...interface{}) *sql.Row                         { return nil }
func (t *tx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }

// inTx reports whether the caller already holds the store lock through an
// open transaction handed down as the optional executor.
func inTx(exec []core.DBExecutor) bool {
	if len(exec) == 0 {
		return false
	}
	_, ok := exec[0].(*tx)
	return ok
}

// lock takes the store lock unless the caller already holds it through an
// open transaction; the returned func undoes exactly what lock did.
func (db *DB) lock(exec ...core.DBExecutor) func() {
	if inTx(exec) {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}
