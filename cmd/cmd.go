// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand runs the web application
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides server.host and server.port",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the app in the default browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand prepares config and database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write the example config to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Create the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recent migration",
				Action: r.SetupRollback,
			},
		},
		Action: r.Setup,
	}
}

// imagesCommand manages profile pictures
func imagesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "images",
		Aliases: []string{"img"},
		Usage:   "Profile picture operations",
		Commands: []*cli.Command{
			{
				Name:  "resolve",
				Usage: "Show which picture a username resolves to",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Action: r.ImagesResolve,
			},
			{
				Name:  "upload",
				Usage: "Store a picture for a username",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
					&cli.StringArg{Name: "path"},
				},
				Action: r.ImagesUpload,
			},
			{
				Name:   "list",
				Usage:  "List stored pictures",
				Action: r.ImagesList,
			},
			{
				Name:  "remove",
				Usage: "Delete every picture stored for a username",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Action: r.ImagesRemove,
			},
		},
	}
}

// usersCommand manages accounts
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Account administration",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List active accounts",
				Action: r.UsersList,
			},
			{
				Name:  "delete",
				Usage: "Delete an account and its picture",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "username"},
				},
				Action: r.UsersDelete,
			},
		},
	}
}
