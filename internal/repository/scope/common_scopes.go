package scope

import "gorm.io/gorm"

// NewestFirst is the default listing order for documents and audits.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}

func OldestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
