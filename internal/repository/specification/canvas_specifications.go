package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CanvasOwnedByUser struct {
	UserID uuid.UUID
}

func (s CanvasOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("canvases.user_id = ?", s.UserID)
}

type FavoritesOnly struct{}

func (s FavoritesOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_favorite = ?", true)
}

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name ILIKE ?", "%"+s.Name+"%")
}
