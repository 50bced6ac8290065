package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category forms a forest through ParentID. Acyclicity is not enforced
// structurally; traversal must guard against malformed parent links.
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Slug      string     `gorm:"uniqueIndex;size:140"`
	Name      string     `gorm:"size:140"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index"`
	Image     string     `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CategoryRepo interface {
	ListAll(ctx context.Context) ([]Category, error)
}
