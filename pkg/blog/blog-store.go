package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Storer exposes create, list, update and delete operations for users, authors, posts and comments.
type Storer interface {
	CreateUser(ctx context.Context, data UserData) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	ListUsersInclude(ctx context.Context) ([]User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, id uint, data UserData) (*User, error)
	DeleteUserByEmail(ctx context.Context, email string) (bool, error)
	DeleteUsers(ctx context.Context) (int64, error)

	CreateAuthor(ctx context.Context, data AuthorData) (*Author, error)
	ListAuthors(ctx context.Context) ([]Author, error)
	FindAuthorByUserID(ctx context.Context, userID uint) (*Author, error)
	UpdateAuthor(ctx context.Context, id uint, data AuthorData) (*Author, error)
	DeleteAuthor(ctx context.Context, id uint) (*Author, error)

	CreatePost(ctx context.Context, data PostData) (*Post, error)
	ListPosts(ctx context.Context) ([]Post, error)
	UpdatePost(ctx context.Context, id uint, data PostData) (*Post, error)
	DeletePost(ctx context.Context, id uint) (*Post, error)

	CreateComment(ctx context.Context, data CommentData) (*Comment, error)
	ListComments(ctx context.Context) ([]Comment, error)
	UpdateComment(ctx context.Context, id uint, patch CommentPatch) (*Comment, error)
	DeleteComment(ctx context.Context, id uint) (*Comment, error)
}

var (
	ErrNotFound         = errors.New("not found")
	ErrEmailTaken       = errors.New("email is already in use")
	ErrAuthorExists     = errors.New("user already has an author")
	ErrMissingReference = errors.New("referenced record doesn't exist")
)

// Store is the Storer backed by gorm. It holds no state besides the shared connection.
type Store struct {
	db     *gorm.DB
	logger logrus.FieldLogger
}

var _ Storer = (*Store)(nil)

func NewStore(db *gorm.DB, logger logrus.FieldLogger) *Store {
	return &Store{db: db, logger: logger}
}

// isDuplicate detects unique and primary key violations, whether translated by gorm or raw from sqlite
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isMissingReference(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// storeError maps gorm and driver failures onto the package's sentinel errors, keeping the operation as context.
func storeError(operation string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", operation, ErrNotFound)
	case isMissingReference(err):
		return fmt.Errorf("%s: %w", operation, ErrMissingReference)
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}

func listAll[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	// initialise empty slice to avoid null serialisation
	var rows = make([]T, 0)
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return rows, err
	}
	return rows, nil
}

// updateByID writes the given columns on the row matching id and reads it back.
func updateByID[T any](ctx context.Context, db *gorm.DB, id uint, columns map[string]interface{}) (*T, error) {
	var row T
	result := db.WithContext(ctx).Model(&row).Where("id = ?", id).Updates(columns)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var updated T
	if err := db.WithContext(ctx).First(&updated, id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// deleteByID removes the row matching id and returns it as it was before deletion.
// Dependent rows go along through the schema's ON DELETE CASCADE rules.
func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var row T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, id).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}
