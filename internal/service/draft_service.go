package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/draftlog/internal/db"
)

var (
	ErrDraftNotFound  = errors.New("draft not found")
	ErrDraftForbidden = errors.New("draft belongs to another user")
)

// DraftService wraps draft related database operations.
type DraftService struct {
	db *gorm.DB
}

// DraftInput represents the snapshot a client submits for persistence.
type DraftInput struct {
	DraftID     string
	PostTitle   string
	PostDesc    string
	PostContent string
	Tags        []string
	ImageURLs   []string
	Custom      map[string]any
	CreatedAt   time.Time
	UpdatedAt   time.Time
	IsTemporary bool
	UserID      uint
}

// NewDraftService creates a DraftService instance.
func NewDraftService(gdb *gorm.DB) *DraftService {
	return &DraftService{db: gdb}
}

// Save upserts the draft keyed by its client-visible id, minting one when
// the client has none yet. The returned draft always carries the id the
// client should continue using.
func (s *DraftService) Save(input DraftInput) (*db.Draft, error) {
	draftID := strings.TrimSpace(input.DraftID)
	if draftID == "" {
		draftID = uuid.NewString()
	}

	var row db.Draft
	err := s.db.Where("draft_id = ?", draftID).First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		row = db.Draft{DraftID: draftID, UserID: input.UserID}
	}

	if row.UserID != input.UserID {
		return nil, ErrDraftForbidden
	}

	row.PostTitle = input.PostTitle
	row.PostDesc = input.PostDesc
	row.PostContent = input.PostContent
	row.Tags = input.Tags
	row.ImageURLs = input.ImageURLs
	row.Custom = input.Custom
	row.IsTemporary = input.IsTemporary
	row.ClientCreatedAt = input.CreatedAt
	row.ClientUpdatedAt = input.UpdatedAt

	if err := s.db.Save(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Fetch returns the draft with the given id, scoped to its owner.
func (s *DraftService) Fetch(draftID string, userID uint) (*db.Draft, error) {
	var row db.Draft
	if err := s.db.Where("draft_id = ?", draftID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDraftNotFound
		}
		return nil, err
	}
	if row.UserID != userID {
		return nil, ErrDraftForbidden
	}
	return &row, nil
}

// List returns all drafts of a user, newest first.
func (s *DraftService) List(userID uint) ([]db.Draft, error) {
	var rows []db.Draft
	if err := s.db.Where("user_id = ?", userID).
		Order("updated_at desc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes a draft by its client-visible id.
func (s *DraftService) Delete(draftID string) error {
	result := s.db.Where("draft_id = ?", draftID).Delete(&db.Draft{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// Preview renders the draft's markdown content to sanitized HTML.
func (s *DraftService) Preview(draftID string, userID uint) (string, error) {
	row, err := s.Fetch(draftID, userID)
	if err != nil {
		return "", err
	}
	return renderMarkdown(row.PostContent)
}
