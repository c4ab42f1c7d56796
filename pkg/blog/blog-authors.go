package blog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

func (s *Store) CreateAuthor(ctx context.Context, data AuthorData) (*Author, error) {
	var author = Author{
		UserID:       data.UserID,
		Tags:         data.Tags,
		Surname:      data.Surname,
		CompleteName: data.CompleteName,
	}
	if err := s.db.WithContext(ctx).Create(&author).Error; err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("creating author for user %d: %w", data.UserID, ErrAuthorExists)
		}
		return nil, storeError(fmt.Sprintf("creating author for user %d", data.UserID), err)
	}
	authorFields(s.logger, &author).Info("author created")
	return &author, nil
}

func (s *Store) ListAuthors(ctx context.Context) ([]Author, error) {
	authors, err := listAll[Author](ctx, s.db)
	if err != nil {
		return authors, storeError("listing authors", err)
	}
	s.logger.WithField("count", len(authors)).Info("authors listed")
	return authors, nil
}

// FindAuthorByUserID returns ErrNotFound when the user has no author.
func (s *Store) FindAuthorByUserID(ctx context.Context, userID uint) (*Author, error) {
	var author Author
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&author).Error; err != nil {
		return nil, storeError(fmt.Sprintf("finding author of user %d", userID), err)
	}
	return &author, nil
}

func (s *Store) UpdateAuthor(ctx context.Context, id uint, data AuthorData) (*Author, error) {
	author, err := updateByID[Author](ctx, s.db, id, map[string]interface{}{
		"user_id":       data.UserID,
		"tags":          data.Tags,
		"surname":       data.Surname,
		"complete_name": data.CompleteName,
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("updating author %d: %w", id, ErrAuthorExists)
		}
		return nil, storeError(fmt.Sprintf("updating author %d", id), err)
	}
	authorFields(s.logger, author).Info("author updated")
	return author, nil
}

// DeleteAuthor removes the author along with its posts and their comments.
func (s *Store) DeleteAuthor(ctx context.Context, id uint) (*Author, error) {
	author, err := deleteByID[Author](ctx, s.db, id)
	if err != nil {
		return nil, storeError(fmt.Sprintf("deleting author %d", id), err)
	}
	authorFields(s.logger, author).Info("author deleted")
	return author, nil
}

func authorFields(logger logrus.FieldLogger, author *Author) logrus.FieldLogger {
	return logger.WithFields(logrus.Fields{
		"id":           author.ID,
		"userId":       author.UserID,
		"tags":         author.Tags,
		"completeName": author.CompleteName,
	})
}
