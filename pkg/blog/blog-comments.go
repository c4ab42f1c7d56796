package blog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

func (s *Store) CreateComment(ctx context.Context, data CommentData) (*Comment, error) {
	var comment = Comment{UserID: data.UserID, PostID: data.PostID, Text: data.Text}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, storeError(fmt.Sprintf("creating comment on post %d", data.PostID), err)
	}
	commentFields(s.logger, &comment).Info("comment created")
	return &comment, nil
}

func (s *Store) ListComments(ctx context.Context) ([]Comment, error) {
	comments, err := listAll[Comment](ctx, s.db)
	if err != nil {
		return comments, storeError("listing comments", err)
	}
	s.logger.WithField("count", len(comments)).Info("comments listed")
	return comments, nil
}

// UpdateComment writes only the fields set in the patch. An empty patch changes nothing and returns the comment.
func (s *Store) UpdateComment(ctx context.Context, id uint, patch CommentPatch) (*Comment, error) {
	var columns = patch.columns()

	var comment *Comment
	var err error
	if len(columns) == 0 {
		comment = new(Comment)
		err = s.db.WithContext(ctx).First(comment, id).Error
	} else {
		comment, err = updateByID[Comment](ctx, s.db, id, columns)
	}
	if err != nil {
		return nil, storeError(fmt.Sprintf("updating comment %d", id), err)
	}

	commentFields(s.logger, comment).Info("comment updated")
	return comment, nil
}

func (s *Store) DeleteComment(ctx context.Context, id uint) (*Comment, error) {
	comment, err := deleteByID[Comment](ctx, s.db, id)
	if err != nil {
		return nil, storeError(fmt.Sprintf("deleting comment %d", id), err)
	}
	commentFields(s.logger, comment).Info("comment deleted")
	return comment, nil
}

func commentFields(logger logrus.FieldLogger, comment *Comment) logrus.FieldLogger {
	return logger.WithFields(logrus.Fields{
		"id":     comment.ID,
		"userId": comment.UserID,
		"postId": comment.PostID,
		"text":   comment.Text,
	})
}
