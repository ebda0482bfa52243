// Package lifecycle keeps User and Profile rows mirrored through gorm callbacks.
//
// The callbacks run inside the statement's transaction, so a failure in any
// of them rolls the triggering write back.
package lifecycle

import (
	"context"
	"fmt"
	"reflect"

	"anoa.com/devsearch/internal/entity"
	"anoa.com/devsearch/pkg/logger"
	"anoa.com/devsearch/pkg/mailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	createProfileHook = "devsearch:create_profile"
	updateUserHook    = "devsearch:update_user"
	deleteUserHook    = "devsearch:delete_user"
)

// Register installs the sync callbacks on db. m delivers the welcome email.
func Register(db *gorm.DB, m mailer.Mailer) error {
	s := &syncer{mailer: m}

	if err := db.Callback().Create().After("gorm:after_create").Before("gorm:commit_or_rollback_transaction").Register(createProfileHook, s.afterCreate); err != nil {
		return fmt.Errorf("register %s: %w", createProfileHook, err)
	}
	if err := db.Callback().Update().After("gorm:after_update").Before("gorm:commit_or_rollback_transaction").Register(updateUserHook, s.afterUpdate); err != nil {
		return fmt.Errorf("register %s: %w", updateUserHook, err)
	}
	if err := db.Callback().Delete().After("gorm:after_delete").Before("gorm:commit_or_rollback_transaction").Register(deleteUserHook, s.afterDelete); err != nil {
		return fmt.Errorf("register %s: %w", deleteUserHook, err)
	}
	return nil
}

type syncer struct {
	mailer mailer.Mailer
}

// afterCreate gives every new User its Profile, then greets them by email.
func (s *syncer) afterCreate(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	users := collect[entity.User](db)
	if len(users) == 0 {
		return
	}

	tx := db.Session(&gorm.Session{NewDB: true})
	for _, u := range users {
		profile := entity.Profile{
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
			Name:     u.FirstName,
		}
		if err := tx.Create(&profile).Error; err != nil {
			_ = db.AddError(fmt.Errorf("create profile for %s: %w", u.Username, err))
			return
		}
		u.Profile = &profile

		if err := mailer.SendWelcome(statementContext(db), s.mailer, u.Email); err != nil {
			_ = db.AddError(fmt.Errorf("welcome email for %s: %w", u.Username, err))
			return
		}
		logger.Log.WithField("user_id", u.ID).Info("profile created for new user")
	}
}

// afterUpdate copies the editable identity fields of a Profile onto its User.
func (s *syncer) afterUpdate(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	profiles := collect[entity.Profile](db)
	if len(profiles) == 0 {
		return
	}

	tx := db.Session(&gorm.Session{NewDB: true})
	for _, p := range profiles {
		if p.UserID == uuid.Nil {
			continue
		}
		err := tx.Model(&entity.User{}).Where("id = ?", p.UserID).Updates(map[string]interface{}{
			"first_name": p.Name,
			"username":   p.Username,
			"email":      p.Email,
		}).Error
		if err != nil {
			_ = db.AddError(fmt.Errorf("sync user %s: %w", p.UserID, err))
			return
		}
	}
}

// afterDelete removes the User behind every deleted Profile.
func (s *syncer) afterDelete(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	profiles := collect[entity.Profile](db)
	if len(profiles) == 0 {
		return
	}

	tx := db.Session(&gorm.Session{NewDB: true})
	for _, p := range profiles {
		if p.UserID == uuid.Nil {
			continue
		}
		if err := tx.Where("id = ?", p.UserID).Delete(&entity.User{}).Error; err != nil {
			_ = db.AddError(fmt.Errorf("delete user %s: %w", p.UserID, err))
			return
		}
	}
}

// collect returns the models of type T the statement operated on.
func collect[T any](db *gorm.DB) []*T {
	if db.Statement.Schema == nil || db.Statement.Schema.ModelType != reflect.TypeOf((*T)(nil)).Elem() {
		return nil
	}

	rv := db.Statement.ReflectValue
	var out []*T
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			elem := rv.Index(i)
			if elem.Kind() == reflect.Ptr {
				if elem.IsNil() {
					continue
				}
				elem = elem.Elem()
			}
			if m, ok := elem.Addr().Interface().(*T); ok {
				out = append(out, m)
			}
		}
	case reflect.Struct:
		if rv.CanAddr() {
			if m, ok := rv.Addr().Interface().(*T); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func statementContext(db *gorm.DB) context.Context {
	if db.Statement.Context != nil {
		return db.Statement.Context
	}
	return context.Background()
}
