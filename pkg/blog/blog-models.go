package blog

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

/*
User is a registered person, who can become an author and comment on posts.

Author: at most one per user, removed along with the user
Comments: every comment the user wrote, removed along with the user
*/
type User struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Email    string    `gorm:"not null;uniqueIndex" json:"email"`
	Author   *Author   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author,omitempty"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

/*
Author is the publishing profile of a user.

UserID: owning user, unique so that a user has one author at most
Posts: "has-many" relation, removed along with the author
*/
type Author struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UserID       uint   `gorm:"not null;uniqueIndex" json:"userId"`
	Tags         string `json:"tags"`
	Surname      string `json:"surname"`
	CompleteName string `json:"completeName"`
	Posts        []Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"posts,omitempty"`
}

type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	AuthorID uint      `gorm:"not null;index" json:"authorId"`
	Title    string    `gorm:"not null" json:"title"`
	Text     string    `json:"text"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

type Comment struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;index" json:"userId"`
	PostID uint   `gorm:"not null;index" json:"postId"`
	Text   string `json:"text"`
}

// Payloads, entities without their generated ids

type UserData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (data UserData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.Name, validation.Required, validation.Length(1, 100)),
		// syntax only, is.Email would resolve the domain on every call
		validation.Field(&data.Email, validation.Required, is.EmailFormat),
	)
}

type AuthorData struct {
	UserID       uint   `json:"userId"`
	Tags         string `json:"tags"`
	Surname      string `json:"surname"`
	CompleteName string `json:"completeName"`
}

func (data AuthorData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.UserID, validation.Required),
		validation.Field(&data.CompleteName, validation.Required),
	)
}

type PostData struct {
	AuthorID uint   `json:"authorId"`
	Title    string `json:"title"`
	Text     string `json:"text"`
}

func (data PostData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.AuthorID, validation.Required),
		validation.Field(&data.Title, validation.Required),
	)
}

type CommentData struct {
	UserID uint   `json:"userId"`
	PostID uint   `json:"postId"`
	Text   string `json:"text"`
}

func (data CommentData) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.UserID, validation.Required),
		validation.Field(&data.PostID, validation.Required),
		validation.Field(&data.Text, validation.Required),
	)
}

// CommentPatch carries a partial comment update; nil fields are left untouched.
type CommentPatch struct {
	UserID *uint   `json:"userId"`
	PostID *uint   `json:"postId"`
	Text   *string `json:"text"`
}

func (data CommentPatch) Validate() error {
	return validation.ValidateStruct(&data,
		validation.Field(&data.UserID, validation.NilOrNotEmpty),
		validation.Field(&data.PostID, validation.NilOrNotEmpty),
		validation.Field(&data.Text, validation.NilOrNotEmpty),
	)
}

// columns lists the assignments of a patch, keyed by column name
func (data CommentPatch) columns() map[string]interface{} {
	var columns = make(map[string]interface{})
	if data.UserID != nil {
		columns["user_id"] = *data.UserID
	}
	if data.PostID != nil {
		columns["post_id"] = *data.PostID
	}
	if data.Text != nil {
		columns["text"] = *data.Text
	}
	return columns
}
