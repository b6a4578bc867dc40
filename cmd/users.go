package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/pulse/internal/images"
	"github.com/desertthunder/pulse/internal/shared"
	"github.com/desertthunder/pulse/internal/ui"
	"github.com/urfave/cli/v3"
)

// UsersList prints active accounts in sign-up order.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	db, closeDB, err := r.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	users, err := r.accounts(db).Users(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if len(users) == 0 {
		return r.writePlain("%s\n", ui.Styles.Help("no users"))
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.Itoa(u.Sequence()),
			u.Username(),
			u.Slug(),
			u.CreatedAt().Format("2006-01-02 15:04:05"),
		})
	}

	return r.writePlain("%s", ui.Styles.Table([]string{"#", "USERNAME", "SLUG", "CREATED"}, rows))
}

// UsersDelete soft-deletes an account and removes its pictures.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	db, closeDB, err := r.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	accounts := r.accounts(db)
	user, err := accounts.UserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrUserNotFound, username)
	}

	if err := accounts.Delete(ctx, user.ID()); err != nil {
		return err
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	uploader := images.NewUploader(store, shared.WithLogger(r.logger, "component", "uploader"))
	if err := uploader.Remove(ctx, user.Slug()); err != nil {
		return err
	}

	return r.writePlain("%s\n", ui.Styles.OK("deleted "+user.Username()))
}
