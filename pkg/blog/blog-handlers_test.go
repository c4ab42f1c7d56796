package blog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/silktrader/blogstore/pkg/blog"
	"github.com/silktrader/blogstore/pkg/rest"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type api struct {
	t       *testing.T
	store   *blog.Store
	db      *gorm.DB
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	store, db, _ := newTestStore(t)
	logger, _ := test.NewNullLogger()
	engine, err := rest.New(rest.Config{Logger: logger})
	require.NoError(t, err)
	blog.RegisterHandlers(engine, store)
	return &api{t: t, store: store, db: db, handler: engine.Handler()}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// call performs the request and decodes the response body into out, when given
func (a *api) call(method, target, body string, out interface{}) int {
	a.t.Helper()
	var request = httptest.NewRequest(method, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	var recorder = httptest.NewRecorder()
	a.handler.ServeHTTP(recorder, request)

	assert.Equal(a.t, "application/json", recorder.Header().Get("Content-Type"))
	if out != nil {
		require.NoError(a.t, json.Unmarshal(recorder.Body.Bytes(), out))
	}
	return recorder.Code
}

func TestHandlersCreateUser(t *testing.T) {
	var a = newAPI(t)

	var created, again blog.User
	require.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/users", `{"name":"Ann","email":"ann@example.com"}`, &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ann", created.Name)

	// the same email answers with the existing user
	require.Equal(t, http.StatusCreated, a.call(http.MethodPost, "/users", `{"name":"Other","email":"ann@example.com"}`, &again))
	assert.Equal(t, created, again)

	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/users", `{"name":"Ann","email":"nope"}`, nil))
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPost, "/users", `{"name":`, nil))
}

func TestHandlersUpdateUser(t *testing.T) {
	var a = newAPI(t)
	var ann = seedChain(t, a.store, "Ann", "ann@example.com")
	seedChain(t, a.store, "Bob", "bob@example.com")

	var updated blog.User
	require.Equal(t, http.StatusOK, a.call(http.MethodPut, "/users/"+itoa(ann.user.ID), `{"name":"Anne","email":"anne@example.com"}`, &updated))
	assert.Equal(t, blog.User{ID: ann.user.ID, Name: "Anne", Email: "anne@example.com"}, updated)

	assert.Equal(t, http.StatusConflict, a.call(http.MethodPut, "/users/"+itoa(ann.user.ID), `{"name":"Anne","email":"bob@example.com"}`, nil))
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodPut, "/users/999", `{"name":"Ghost","email":"ghost@example.com"}`, nil))
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPut, "/users/abc", `{"name":"Anne","email":"anne@example.com"}`, nil))
	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPut, "/users/0", `{"name":"Anne","email":"anne@example.com"}`, nil))
}

func TestHandlersListUsers(t *testing.T) {
	var a = newAPI(t)
	var ann = seedChain(t, a.store, "Ann", "ann@example.com")

	var plain []blog.User
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/users", "", &plain))
	require.Len(t, plain, 1)
	assert.Nil(t, plain[0].Author)

	var full []blog.User
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/users?include=relations", "", &full))
	require.Len(t, full, 1)
	require.NotNil(t, full[0].Author)
	assert.Equal(t, ann.author.ID, full[0].Author.ID)
	require.Len(t, full[0].Author.Posts, 1)
	assert.Equal(t, ann.post.ID, full[0].Author.Posts[0].ID)
	require.Len(t, full[0].Comments, 1)
	assert.Equal(t, ann.comment.ID, full[0].Comments[0].ID)

	var none []blog.Comment
	_, err := a.store.DeleteUsers(context.Background())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, a.call(http.MethodGet, "/comments", "", &none))
	assert.NotNil(t, none, "empty lists are encoded as []")
}

func TestHandlersDeleteUsers(t *testing.T) {
	var a = newAPI(t)
	seedChain(t, a.store, "Ann", "ann@example.com")
	seedChain(t, a.store, "Bob", "bob@example.com")
	seedChain(t, a.store, "Cid", "cid@example.com")

	assert.Equal(t, http.StatusNotFound, a.call(http.MethodDelete, "/users?email=ghost@example.com", "", nil))

	var raw map[string]interface{}
	require.Equal(t, http.StatusOK, a.call(http.MethodDelete, "/users?email=ann@example.com", "", &raw))
	assert.Equal(t, map[string]interface{}{"deleted": float64(1)}, raw)
	assert.EqualValues(t, 2, countRows(t, a.db, &blog.Author{}))

	var result blog.DeletedCount
	require.Equal(t, http.StatusOK, a.call(http.MethodDelete, "/users", "", &result))
	assert.EqualValues(t, 2, result.Deleted)
	assert.Zero(t, countRows(t, a.db, &blog.Comment{}))
}

func TestHandlersAuthorsAndPosts(t *testing.T) {
	var a = newAPI(t)
	var ann = seedChain(t, a.store, "Ann", "ann@example.com")

	// one author per user
	assert.Equal(t, http.StatusConflict, a.call(http.MethodPost, "/authors", `{"userId":`+itoa(ann.user.ID)+`,"completeName":"Ann Again"}`, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, a.call(http.MethodPost, "/authors", `{"userId":999,"completeName":"Nobody"}`, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, a.call(http.MethodPost, "/posts", `{"authorId":999,"title":"Orphan"}`, nil))

	var post blog.Post
	require.Equal(t, http.StatusOK, a.call(http.MethodPut, "/posts/"+itoa(ann.post.ID), `{"authorId":`+itoa(ann.author.ID)+`,"title":"New","text":"Body"}`, &post))
	assert.Equal(t, "New", post.Title)

	var deleted blog.Author
	require.Equal(t, http.StatusOK, a.call(http.MethodDelete, "/authors/"+itoa(ann.author.ID), "", &deleted))
	assert.Equal(t, ann.author.ID, deleted.ID)
	assert.Zero(t, countRows(t, a.db, &blog.Post{}))
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodDelete, "/authors/"+itoa(ann.author.ID), "", nil))
}

func TestHandlersPatchComment(t *testing.T) {
	var a = newAPI(t)
	var ann = seedChain(t, a.store, "Ann", "ann@example.com")

	var comment blog.Comment
	require.Equal(t, http.StatusOK, a.call(http.MethodPatch, "/comments/"+itoa(ann.comment.ID), `{"text":"edited"}`, &comment))
	assert.Equal(t, blog.Comment{ID: ann.comment.ID, UserID: ann.user.ID, PostID: ann.post.ID, Text: "edited"}, comment)

	assert.Equal(t, http.StatusBadRequest, a.call(http.MethodPatch, "/comments/"+itoa(ann.comment.ID), `{"text":""}`, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, a.call(http.MethodPatch, "/comments/"+itoa(ann.comment.ID), `{"postId":999}`, nil))
	assert.Equal(t, http.StatusNotFound, a.call(http.MethodPatch, "/comments/999", `{"text":"edited"}`, nil))
}
