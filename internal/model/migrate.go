package model

import "gorm.io/gorm"

// AutoMigrate runs GORM auto-migration for all models and creates custom indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Invitation{}); err != nil {
		return err
	}

	// Listing is served newest first.
	return db.Exec(
		"CREATE INDEX IF NOT EXISTS idx_admin_invitations_created_at " +
			"ON admin_invitations (created_at DESC)",
	).Error
}
