package storage

import (
	"fmt"

	"github.com/silktrader/blogstore/pkg/blog"
	"gorm.io/gorm"
)

// migrate creates the users, authors, posts and comments tables along with their unique indexes and
// ON DELETE CASCADE foreign keys, as declared by the blog models' tags.
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&blog.User{}, &blog.Author{}, &blog.Post{}, &blog.Comment{}); err != nil {
		return fmt.Errorf("migrating blog schema: %w", err)
	}
	return nil
}
