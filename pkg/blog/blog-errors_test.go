package blog

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openDB(t *testing.T, translate bool) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "errors.db")+"?_fk=on"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: translate,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Author{}, &Post{}, &Comment{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// constraint violations are recognised whether or not gorm translates driver errors
func TestConstraintErrorsClassification(t *testing.T) {
	for _, translate := range []bool{true, false} {
		t.Run(fmt.Sprintf("translate=%v", translate), func(t *testing.T) {
			db := openDB(t, translate)

			require.NoError(t, db.Create(&User{Name: "Ann", Email: "ann@example.com"}).Error)
			err := db.Create(&User{Name: "Bob", Email: "ann@example.com"}).Error
			require.Error(t, err)
			assert.True(t, isDuplicate(err))
			assert.False(t, isMissingReference(err))

			err = db.Create(&Author{UserID: 42, CompleteName: "Ghost"}).Error
			require.Error(t, err)
			assert.True(t, isMissingReference(err))
			assert.False(t, isDuplicate(err))
			assert.ErrorIs(t, storeError("creating author", err), ErrMissingReference)
		})
	}
}

func TestStoreErrorKeepsContext(t *testing.T) {
	err := storeError("finding user \"x\"", gorm.ErrRecordNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "finding user \"x\": not found")

	var other = errors.New("disk I/O error")
	assert.ErrorIs(t, storeError("listing users", other), other)
	assert.False(t, isDuplicate(other))
	assert.False(t, isMissingReference(other))
}

func TestCommentPatchColumns(t *testing.T) {
	var userID uint = 3
	var text = "new text"

	assert.Empty(t, CommentPatch{}.columns())
	assert.Equal(t, map[string]interface{}{"text": text}, CommentPatch{Text: &text}.columns())
	assert.Equal(t, map[string]interface{}{"user_id": userID, "text": text}, CommentPatch{UserID: &userID, Text: &text}.columns())
}

func TestPayloadValidation(t *testing.T) {
	assert.NoError(t, UserData{Name: "João", Email: "joaosilva@gmail.com"}.Validate())
	assert.Error(t, UserData{Name: "João", Email: "not an email"}.Validate())
	assert.Error(t, UserData{Email: "joao@yahoo.com"}.Validate())
	// domains are never resolved
	assert.NoError(t, UserData{Name: "Emílio", Email: "emilio@no-such-domain.invalid"}.Validate())

	assert.NoError(t, AuthorData{UserID: 1, CompleteName: "João Silva"}.Validate())
	assert.Error(t, AuthorData{CompleteName: "João Silva"}.Validate())

	assert.NoError(t, PostData{AuthorID: 1, Title: "Bolo"}.Validate())
	assert.Error(t, PostData{AuthorID: 1}.Validate())

	assert.NoError(t, CommentData{UserID: 1, PostID: 1, Text: "ok"}.Validate())
	assert.Error(t, CommentData{UserID: 1, Text: "ok"}.Validate())

	var empty = ""
	assert.NoError(t, CommentPatch{}.Validate())
	assert.Error(t, CommentPatch{Text: &empty}.Validate())
}
