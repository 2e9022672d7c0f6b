package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/draftlog/internal/db"
)

func setupDraftTestDB(t *testing.T) func() {
	t.Helper()

	dsn := fmt.Sprintf("file:draft-service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Draft{}, &db.APIToken{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestDraftSaveMintsID(t *testing.T) {
	cleanup := setupDraftTestDB(t)
	defer cleanup()

	svc := NewDraftService(db.DB)
	row, err := svc.Save(DraftInput{PostTitle: "无题", UserID: 1})
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if row.DraftID == "" {
		t.Fatal("expected a minted draft id")
	}
}

func TestDraftSaveUpserts(t *testing.T) {
	cleanup := setupDraftTestDB(t)
	defer cleanup()

	svc := NewDraftService(db.DB)
	first, err := svc.Save(DraftInput{DraftID: "d-1", PostTitle: "v1", Tags: []string{"go"}, UserID: 1})
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}

	second, err := svc.Save(DraftInput{DraftID: "d-1", PostTitle: "v2", Tags: []string{"go", "blog"}, UserID: 1})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatal("saving the same draft id must update the existing row")
	}

	var count int64
	db.DB.Model(&db.Draft{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single row, got %d", count)
	}

	fetched, err := svc.Fetch("d-1", 1)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if fetched.PostTitle != "v2" || len(fetched.Tags) != 2 {
		t.Fatalf("upsert lost fields: %+v", fetched)
	}
}

func TestDraftSaveRejectsForeignDraft(t *testing.T) {
	cleanup := setupDraftTestDB(t)
	defer cleanup()

	svc := NewDraftService(db.DB)
	if _, err := svc.Save(DraftInput{DraftID: "d-1", PostTitle: "mine", UserID: 1}); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	if _, err := svc.Save(DraftInput{DraftID: "d-1", PostTitle: "steal", UserID: 2}); !errors.Is(err, ErrDraftForbidden) {
		t.Fatalf("expected ErrDraftForbidden, got %v", err)
	}
	if _, err := svc.Fetch("d-1", 2); !errors.Is(err, ErrDraftForbidden) {
		t.Fatalf("expected ErrDraftForbidden on fetch, got %v", err)
	}
}

func TestDraftFetchUnknown(t *testing.T) {
	cleanup := setupDraftTestDB(t)
	defer cleanup()

	svc := NewDraftService(db.DB)
	if _, err := svc.Fetch("ghost", 1); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestDraftDelete(t *testing.T) {
	cleanup := setupDraftTestDB(t)
	defer cleanup()

	svc := NewDraftService(db.DB)
	if _, err := svc.Save(DraftInput{DraftID: "d-1", PostTitle: "x", UserID: 1}); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	if err := svc.Delete("d-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := svc.Delete("d-1"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound on second delete, got %v", err)
	}
}

func TestDraftPreviewSanitizes(t *testing.T) {
	cleanup := setupDraftTestDB(t)
	defer cleanup()

	svc := NewDraftService(db.DB)
	input := DraftInput{
		DraftID:     "d-1",
		PostContent: "# 标题\n\n<script>alert(1)</script>正文",
		UserID:      1,
	}
	if _, err := svc.Save(input); err != nil {
		t.Fatalf("seed save failed: %v", err)
	}

	previewHTML, err := svc.Preview("d-1", 1)
	if err != nil {
		t.Fatalf("Preview failed: %v", err)
	}
	if !strings.Contains(previewHTML, "<h1") {
		t.Fatalf("expected rendered heading, got %s", previewHTML)
	}
	if strings.Contains(previewHTML, "<script>") {
		t.Fatalf("script must be stripped, got %s", previewHTML)
	}
}
