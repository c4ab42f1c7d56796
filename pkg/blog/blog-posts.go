package blog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

func (s *Store) CreatePost(ctx context.Context, data PostData) (*Post, error) {
	var post = Post{AuthorID: data.AuthorID, Title: data.Title, Text: data.Text}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, storeError(fmt.Sprintf("creating post for author %d", data.AuthorID), err)
	}
	postFields(s.logger, &post).Info("post created")
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	posts, err := listAll[Post](ctx, s.db)
	if err != nil {
		return posts, storeError("listing posts", err)
	}
	s.logger.WithField("count", len(posts)).Info("posts listed")
	return posts, nil
}

func (s *Store) UpdatePost(ctx context.Context, id uint, data PostData) (*Post, error) {
	post, err := updateByID[Post](ctx, s.db, id, map[string]interface{}{
		"author_id": data.AuthorID,
		"title":     data.Title,
		"text":      data.Text,
	})
	if err != nil {
		return nil, storeError(fmt.Sprintf("updating post %d", id), err)
	}
	postFields(s.logger, post).Info("post updated")
	return post, nil
}

// DeletePost removes the post along with its comments.
func (s *Store) DeletePost(ctx context.Context, id uint) (*Post, error) {
	post, err := deleteByID[Post](ctx, s.db, id)
	if err != nil {
		return nil, storeError(fmt.Sprintf("deleting post %d", id), err)
	}
	postFields(s.logger, post).Info("post deleted")
	return post, nil
}

func postFields(logger logrus.FieldLogger, post *Post) logrus.FieldLogger {
	return logger.WithFields(logrus.Fields{"id": post.ID, "authorId": post.AuthorID, "title": post.Title})
}
