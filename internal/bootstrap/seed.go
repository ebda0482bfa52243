package bootstrap

import (
	"errors"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Profile{},
		&entity.Skill{},
		&entity.Tag{},
		&entity.Project{},
		&entity.Review{},
		&entity.Attachment{},
		&entity.Message{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Site administrator"},
		{Name: entity.RoleDeveloper, Description: "Developer"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedAdminUser creates the admin account once. Its profile is created by
// the sync callbacks like any other user's.
func SeedAdminUser(db *gorm.DB, username, email, password string) error {
	if username == "" || password == "" {
		return errors.New("admin username and password are required")
	}

	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Log.Debug("admin user already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     username,
		Email:        email,
		FirstName:    "Administrator",
		PasswordHash: string(hashed),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	logger.Log.WithField("username", username).Info("admin user seeded")
	return nil
}
