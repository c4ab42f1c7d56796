package blog

import (
	"errors"
	"net/http"
	"strconv"

	JSON "github.com/silktrader/blogstore/pkg/json-utilities"
	"github.com/silktrader/blogstore/pkg/rest"
)

func RegisterHandlers(engine *rest.Engine, store Storer) {
	engine.Get("/users", getUsers(store))
	engine.Post("/users", addUser(store))
	engine.Put("/users/:id", updateUser(store))
	engine.Delete("/users", deleteUsers(store))

	engine.Get("/authors", getAuthors(store))
	engine.Post("/authors", addAuthor(store))
	engine.Put("/authors/:id", updateAuthor(store))
	engine.Delete("/authors/:id", deleteAuthor(store))

	engine.Get("/posts", getPosts(store))
	engine.Post("/posts", addPost(store))
	engine.Put("/posts/:id", updatePost(store))
	engine.Delete("/posts/:id", deletePost(store))

	engine.Get("/comments", getComments(store))
	engine.Post("/comments", addComment(store))
	engine.Patch("/comments/:id", updateComment(store))
	engine.Delete("/comments/:id", deleteComment(store))
}

// reportError translates store errors into responses; unexpected ones are logged and reported as 500s
func reportError(writer http.ResponseWriter, request *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		JSON.NotFound(writer, err.Error())
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrAuthorExists):
		JSON.Conflict(writer, err.Error())
	case errors.Is(err, ErrMissingReference):
		JSON.UnprocessableEntity(writer, err.Error())
	default:
		rest.GetLogger(request).WithError(err).Error("store operation failed")
		JSON.InternalServerError(writer, err)
	}
}

// getID parses the `:id` route parameter, answering with a bad request when it isn't a positive integer
func getID(writer http.ResponseWriter, request *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(rest.GetParam(request, "id"), 10, 0)
	if err != nil || id == 0 {
		JSON.BadRequestWithMessage(writer, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// getUsers handles GET "/users"; `?include=relations` eagerly fetches authors, posts and comments.
func getUsers(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var users []User
		var err error
		if request.URL.Query().Get("include") == "relations" {
			users, err = store.ListUsersInclude(request.Context())
		} else {
			users, err = store.ListUsers(request.Context())
		}
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, users)
	}
}

func addUser(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[UserData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}

		// an already registered email yields the existing user
		user, err := store.CreateUser(request.Context(), data)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Created(writer, user)
	}
}

func updateUser(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := getID(writer, request)
		if !ok {
			return
		}
		data, err := JSON.DecodeValidate[UserData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}
		user, err := store.UpdateUser(request.Context(), id, data)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, user)
	}
}

// DeletedCount is the body answering user deletions.
type DeletedCount struct {
	Deleted int64 `json:"deleted"`
}

// deleteUsers handles DELETE "/users": with an `email` query parameter only the matching user goes, otherwise all do.
func deleteUsers(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var query = request.URL.Query()
		if query.Has("email") {
			var email = query.Get("email")
			deleted, err := store.DeleteUserByEmail(request.Context(), email)
			if err != nil {
				reportError(writer, request, err)
				return
			}
			if !deleted {
				JSON.NotFound(writer, "No user with email "+email)
				return
			}
			JSON.Ok(writer, DeletedCount{Deleted: 1})
			return
		}

		deleted, err := store.DeleteUsers(request.Context())
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, DeletedCount{Deleted: deleted})
	}
}

func getAuthors(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		authors, err := store.ListAuthors(request.Context())
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, authors)
	}
}

func addAuthor(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[AuthorData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}
		author, err := store.CreateAuthor(request.Context(), data)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Created(writer, author)
	}
}

func updateAuthor(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := getID(writer, request)
		if !ok {
			return
		}
		data, err := JSON.DecodeValidate[AuthorData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}
		author, err := store.UpdateAuthor(request.Context(), id, data)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, author)
	}
}

func deleteAuthor(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := getID(writer, request)
		if !ok {
			return
		}
		author, err := store.DeleteAuthor(request.Context(), id)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, author)
	}
}

func getPosts(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		posts, err := store.ListPosts(request.Context())
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, posts)
	}
}

func addPost(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[PostData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}
		post, err := store.CreatePost(request.Context(), data)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Created(writer, post)
	}
}

func updatePost(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := getID(writer, request)
		if !ok {
			return
		}
		data, err := JSON.DecodeValidate[PostData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}
		post, err := store.UpdatePost(request.Context(), id, data)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, post)
	}
}

func deletePost(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := getID(writer, request)
		if !ok {
			return
		}
		post, err := store.DeletePost(request.Context(), id)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, post)
	}
}

func getComments(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		comments, err := store.ListComments(request.Context())
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, comments)
	}
}

func addComment(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		data, err := JSON.DecodeValidate[CommentData](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}
		comment, err := store.CreateComment(request.Context(), data)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Created(writer, comment)
	}
}

// updateComment handles PATCH "/comments/:id", where omitted fields are left as they are
func updateComment(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := getID(writer, request)
		if !ok {
			return
		}
		patch, err := JSON.DecodeValidate[CommentPatch](request)
		if err != nil {
			JSON.ValidationError(writer, err)
			return
		}
		comment, err := store.UpdateComment(request.Context(), id, patch)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, comment)
	}
}

func deleteComment(store Storer) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		id, ok := getID(writer, request)
		if !ok {
			return
		}
		comment, err := store.DeleteComment(request.Context(), id)
		if err != nil {
			reportError(writer, request, err)
			return
		}
		JSON.Ok(writer, comment)
	}
}
