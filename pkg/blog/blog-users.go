package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateUser registers a new user, unless the email is already taken, in which case the existing user is returned
// untouched.
func (s *Store) CreateUser(ctx context.Context, data UserData) (*User, error) {
	existing, err := s.FindUserByEmail(ctx, data.Email)
	if err == nil {
		s.logger.WithField("email", data.Email).Info("user with this email already exists")
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	var user = User{Name: data.Name, Email: data.Email}
	if err = s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// the unique index is authoritative: another writer registered the email after the lookup
		if isDuplicate(err) {
			s.logger.WithField("email", data.Email).Info("user with this email already exists")
			return s.FindUserByEmail(ctx, data.Email)
		}
		return nil, storeError(fmt.Sprintf("creating user %q", data.Email), err)
	}

	s.logger.WithFields(logrus.Fields{"id": user.ID, "name": user.Name, "email": user.Email}).Info("user created")
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	users, err := listAll[User](ctx, s.db)
	if err != nil {
		return users, storeError("listing users", err)
	}
	s.logger.WithField("count", len(users)).Info("users listed")
	return users, nil
}

// ListUsersInclude fetches every user along with its author, the author's posts, and the user's comments.
func (s *Store) ListUsersInclude(ctx context.Context) ([]User, error) {
	var users = make([]User, 0)
	if err := s.db.WithContext(ctx).
		Preload("Author.Posts").
		Preload("Comments").
		Find(&users).Error; err != nil {
		return users, storeError("listing users with relations", err)
	}
	s.logger.WithField("count", len(users)).Info("users listed with authors, posts and comments")
	return users, nil
}

// FindUserByEmail returns ErrNotFound when no user matches the email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, storeError(fmt.Sprintf("finding user %q", email), err)
	}
	return &user, nil
}

// UpdateUser overwrites name and email. No row changes when another user already owns the email: the method
// returns a nil user along with ErrEmailTaken.
func (s *Store) UpdateUser(ctx context.Context, id uint, data UserData) (*User, error) {
	var taken int64
	if err := s.db.WithContext(ctx).Model(&User{}).
		Where("email = ? AND id <> ?", data.Email, id).
		Count(&taken).Error; err != nil {
		return nil, storeError(fmt.Sprintf("checking email %q", data.Email), err)
	}
	if taken > 0 {
		s.logger.WithField("email", data.Email).Warn("email already in use")
		return nil, ErrEmailTaken
	}

	user, err := updateByID[User](ctx, s.db, id, map[string]interface{}{
		"name":  data.Name,
		"email": data.Email,
	})
	if err != nil {
		if isDuplicate(err) {
			s.logger.WithField("email", data.Email).Warn("email already in use")
			return nil, ErrEmailTaken
		}
		return nil, storeError(fmt.Sprintf("updating user %d", id), err)
	}

	s.logger.WithFields(logrus.Fields{"id": user.ID, "name": user.Name, "email": user.Email}).Info("user updated")
	return user, nil
}

// DeleteUserByEmail removes the user together with its author, posts and comments. It reports false, without
// errors, when no user matches the email.
func (s *Store) DeleteUserByEmail(ctx context.Context, email string) (bool, error) {
	var user User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.WithField("email", email).Info("user not found")
		return false, nil
	}
	if err != nil {
		return false, storeError(fmt.Sprintf("deleting user %q", email), err)
	}

	s.logger.WithFields(logrus.Fields{"id": user.ID, "name": user.Name, "email": user.Email}).Info("user deleted")
	return true, nil
}

// DeleteUsers removes every user, and by cascade every author, post and comment, returning the removed users count.
func (s *Store) DeleteUsers(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&User{})
	if result.Error != nil {
		return 0, storeError("deleting all users", result.Error)
	}
	s.logger.WithField("count", result.RowsAffected).Info("all users deleted")
	return result.RowsAffected, nil
}
