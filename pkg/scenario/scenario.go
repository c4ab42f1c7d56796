// Package scenario walks a blog store through a fixed demonstration: it creates three users with their authors,
// posts and comments, mutates and removes the third chain, then deletes users one at a time and all at once,
// listing the survivors with their relations in between.
package scenario

import (
	"context"
	"errors"

	"github.com/silktrader/blogstore/pkg/blog"
	"github.com/sirupsen/logrus"
)

// chain groups the records created for a single user
type chain struct {
	user    *blog.User
	author  *blog.Author
	post    *blog.Post
	comment *blog.Comment
}

type seed struct {
	user    blog.UserData
	author  blog.AuthorData
	post    blog.PostData
	comment string
}

var seeds = []seed{
	{
		user:    blog.UserData{Name: "Emílio", Email: "emilio@hotmail.com"},
		author:  blog.AuthorData{Tags: "Carros", Surname: "Murta", CompleteName: "Emílio Murta"},
		post:    blog.PostData{Title: "Vendo minha Ferrari F355", Text: "Estou vendendo minha Ferrari F355. Carro de garagem!"},
		comment: "Está com apenas 38000 km rodados!",
	},
	{
		user:    blog.UserData{Name: "Guilherme", Email: "guilherme@gmail.com"},
		author:  blog.AuthorData{Tags: "Atividade", Surname: "Gaspar", CompleteName: "Guilherme Gaspar"},
		post:    blog.PostData{Title: "Atividade com prisma ORM", Text: "Está é minha atividade usando prisma ORM."},
		comment: "Minha atividade está ficando muito boa!",
	},
	{
		user:    blog.UserData{Name: "JAUM", Email: "joao@yahoo.com"},
		author:  blog.AuthorData{Tags: "Receita de PÃO", Surname: "Silva", CompleteName: "João Silvazzzz"},
		post:    blog.PostData{Title: "Bolo de BANANA", Text: "Aqui vai a receita de um delicioso bolo de BANANA: 2 ovos, farinha, manteiga, chocolate em pó e fermento."},
		comment: "faltou acrescentar um pouco de óleo.",
	},
}

// CascadeEmail identifies the user removed by email halfway through the scenario.
const CascadeEmail = "emilio@hotmail.com"

// Run executes the scenario step by step. Users and authors left over by earlier runs are reused. An email
// conflict on the user update and a failed bulk deletion are logged and skipped; any other failure stops the
// scenario and is returned.
func Run(ctx context.Context, store blog.Storer, logger logrus.FieldLogger) error {
	logger.Info("--- creating records ---")
	var chains = make([]chain, 0, len(seeds))
	for _, s := range seeds {
		c, err := create(ctx, store, logger, s)
		if err != nil {
			return err
		}
		chains = append(chains, c)
	}

	if err := updateChain(ctx, store, logger, chains[2]); err != nil {
		return err
	}
	if err := deleteChain(ctx, store, logger, chains[2]); err != nil {
		return err
	}
	if err := listUsers(ctx, store, logger); err != nil {
		return err
	}

	logger.WithField("email", CascadeEmail).Info("deleting user (cascade)")
	if _, err := store.DeleteUserByEmail(ctx, CascadeEmail); err != nil {
		return err
	}
	if err := listUsers(ctx, store, logger); err != nil {
		return err
	}

	logger.Info("deleting all users")
	if _, err := store.DeleteUsers(ctx); err != nil {
		logger.WithError(err).Error("couldn't delete users")
	}
	return listUsers(ctx, store, logger)
}

func create(ctx context.Context, store blog.Storer, logger logrus.FieldLogger, s seed) (c chain, err error) {
	if c.user, err = store.CreateUser(ctx, s.user); err != nil {
		return c, err
	}

	var authorData = s.author
	authorData.UserID = c.user.ID
	c.author, err = store.CreateAuthor(ctx, authorData)
	if errors.Is(err, blog.ErrAuthorExists) {
		// left over by an interrupted run
		logger.WithField("userId", c.user.ID).Info("author already exists")
		c.author, err = store.FindAuthorByUserID(ctx, c.user.ID)
	}
	if err != nil {
		return c, err
	}

	var postData = s.post
	postData.AuthorID = c.author.ID
	if c.post, err = store.CreatePost(ctx, postData); err != nil {
		return c, err
	}

	c.comment, err = store.CreateComment(ctx, blog.CommentData{UserID: c.user.ID, PostID: c.post.ID, Text: s.comment})
	return c, err
}

func updateChain(ctx context.Context, store blog.Storer, logger logrus.FieldLogger, c chain) error {
	logger.Info("updating João's comment")
	var text = "Faltou acrescentar óleo e um pouco de água também."
	if _, err := store.UpdateComment(ctx, c.comment.ID, blog.CommentPatch{Text: &text}); err != nil {
		return err
	}

	logger.Info("updating João's post")
	if _, err := store.UpdatePost(ctx, c.post.ID, blog.PostData{
		AuthorID: c.author.ID,
		Title:    "Bolo de CHOCOLATE",
		Text:     "Aqui vai a receita de um delicioso bolo de CHOCOLATE: 2 ovos, farinha, manteiga, chocolate em pó e fermento.",
	}); err != nil {
		return err
	}

	logger.Info("updating author João")
	if _, err := store.UpdateAuthor(ctx, c.author.ID, blog.AuthorData{
		UserID:       c.user.ID,
		Tags:         "Receita de BOLO",
		Surname:      "Silva",
		CompleteName: "João Silva",
	}); err != nil {
		return err
	}

	logger.Info("updating user João")
	_, err := store.UpdateUser(ctx, c.user.ID, blog.UserData{Name: "João", Email: "joaosilva@gmail.com"})
	if errors.Is(err, blog.ErrEmailTaken) {
		logger.WithError(err).Warn("user left unchanged")
		return nil
	}
	return err
}

func deleteChain(ctx context.Context, store blog.Storer, logger logrus.FieldLogger, c chain) error {
	logger.Info("deleting João's comment")
	if _, err := store.DeleteComment(ctx, c.comment.ID); err != nil {
		return err
	}

	logger.Info("deleting João's post")
	if _, err := store.DeletePost(ctx, c.post.ID); err != nil {
		return err
	}

	logger.Info("deleting author João")
	_, err := store.DeleteAuthor(ctx, c.author.ID)
	return err
}

// listUsers prints every user with its author, posts and comments
func listUsers(ctx context.Context, store blog.Storer, logger logrus.FieldLogger) error {
	users, err := store.ListUsersInclude(ctx)
	if err != nil {
		return err
	}
	for _, user := range users {
		var entry = logger.WithFields(logrus.Fields{
			"id":       user.ID,
			"email":    user.Email,
			"comments": len(user.Comments),
		})
		if user.Author != nil {
			entry = entry.WithFields(logrus.Fields{
				"author": user.Author.CompleteName,
				"posts":  len(user.Author.Posts),
			})
		}
		entry.Infof("user %s", user.Name)
	}
	return nil
}
