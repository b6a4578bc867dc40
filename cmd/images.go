package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/pulse/internal/images"
	"github.com/desertthunder/pulse/internal/shared"
	"github.com/desertthunder/pulse/internal/slug"
	"github.com/desertthunder/pulse/internal/ui"
	"github.com/urfave/cli/v3"
)

// ImagesResolve prints the picture reference a username resolves to.
func (r *Runner) ImagesResolve(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	key := slug.Slugify(username)
	res := r.resolver(store).Lookup(ctx, key)

	name := res.Name
	if name == "" {
		name = "-"
	}

	return r.writePlain("%s", ui.Styles.KeyValues(
		"slug", key,
		"name", name,
		"source", string(res.Source),
		"reference", res.Reference,
	))
}

// ImagesUpload stores the file at path as the picture for a username.
func (r *Runner) ImagesUpload(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	path := cmd.StringArg("path")
	if username == "" || path == "" {
		return fmt.Errorf("%w: username and path", shared.ErrMissingArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	uploader := images.NewUploader(store, shared.WithLogger(r.logger, "component", "uploader"))
	name, err := uploader.Upload(ctx, slug.Slugify(username), filepath.Base(path), data)
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", ui.Styles.OK("stored "+name))
}

// ImagesList prints every stored picture.
func (r *Runner) ImagesList(ctx context.Context, cmd *cli.Command) error {
	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	entries, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pictures: %w", err)
	}

	if len(entries) == 0 {
		return r.writePlain("%s\n", ui.Styles.Help("no pictures stored"))
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Name,
			strconv.FormatInt(e.Size, 10),
			e.ModTime.Format("2006-01-02 15:04:05"),
		})
	}

	return r.writePlain("%s", ui.Styles.Table([]string{"NAME", "BYTES", "MODIFIED"}, rows))
}

// ImagesRemove deletes every picture stored for a username.
func (r *Runner) ImagesRemove(ctx context.Context, cmd *cli.Command) error {
	username := cmd.StringArg("username")
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}

	store, err := r.openStore(ctx)
	if err != nil {
		return err
	}

	key := slug.Slugify(username)
	uploader := images.NewUploader(store, shared.WithLogger(r.logger, "component", "uploader"))
	if err := uploader.Remove(ctx, key); err != nil {
		return err
	}

	return r.writePlain("%s\n", ui.Styles.OK("removed pictures for "+key))
}
