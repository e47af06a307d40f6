package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"tutordesk/internal/pkg/logger"
	"tutordesk/internal/platform/database"
)

var dbSeq atomic.Int64

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:tutordesk_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.New(context.Background(), "sqlite", dsn, logger.Nop())
	if err != nil {
		t.Fatalf("NewDB() failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("NewDB() migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
