// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"anoa.com/devsearch/internal/bootstrap"
	"anoa.com/devsearch/internal/lifecycle"
	"anoa.com/devsearch/pkg/mailer"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with foreign keys on,
// migrates the schema and installs the sync callbacks with m.
func NewDB(t testing.TB, m mailer.Mailer) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if m == nil {
		m = &Mailbox{}
	}
	if err := lifecycle.Register(db, m); err != nil {
		t.Fatalf("register callbacks: %v", err)
	}
	if err := bootstrap.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := bootstrap.SeedRoles(db); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	return db
}

// Mail is one message captured by Mailbox.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailbox records outgoing mail. Setting Err makes every send fail.
type Mailbox struct {
	mu   sync.Mutex
	Err  error
	sent []Mail
}

func (m *Mailbox) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, Mail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *Mailbox) Sent() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}

// Slug is a short lower-case token handy for unique usernames.
func Slug() string {
	return strings.ReplaceAll(uuid.NewString()[:8], "-", "")
}
