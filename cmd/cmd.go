// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: prettyDefault,
		},
	}
}

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if needed, initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write a config.toml with the default settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles sign-in and account recovery.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Aliases:  []string{"e"},
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Sources:  cli.EnvVars("SHELF_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and remove the stored token",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Validate the stored token and report the auth state",
				Flags:  outputFlags(false),
				Action: r.AuthStatus,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in member",
				Flags:  outputFlags(true),
				Action: r.AuthWhoami,
			},
			{
				Name:  "register",
				Usage: "Create an account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Sources:  cli.EnvVars("SHELF_PASSWORD"),
						Required: true,
					},
					&cli.StringFlag{Name: "handle", Usage: "Public handle", Required: true},
					&cli.StringFlag{Name: "birth-date", Usage: "Birth date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "gender", Usage: "male, female or other"},
				},
				Action: r.AuthRegister,
			},
			{
				Name:      "forgot",
				Usage:     "Request a password reset email",
				Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
				Action:    r.AuthForgot,
			},
			{
				Name:  "reset",
				Usage: "Set a new password with a reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Usage: "Reset token from the email", Required: true},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "New password",
						Sources:  cli.EnvVars("SHELF_PASSWORD"),
						Required: true,
					},
				},
				Action: r.AuthReset,
			},
		},
	}
}

// memberCommand handles profile operations.
func memberCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "member",
		Usage: "Show and edit member profiles",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show your profile with follower counts",
				Flags:  outputFlags(true),
				Action: r.MemberShow,
			},
			{
				Name:  "update",
				Usage: "Update profile fields; only the flags given are changed",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "birth-date", Usage: "Birth date (YYYY-MM-DD)"},
					&cli.StringFlag{Name: "handle", Usage: "Public handle"},
					&cli.StringFlag{Name: "gender", Usage: "male, female or other"},
					&cli.StringFlag{Name: "bio", Usage: "Short biography"},
					&cli.StringFlag{Name: "image", Usage: "Profile image URL"},
				},
				Action: r.MemberUpdate,
			},
			{
				Name:      "view",
				Usage:     "Show another member's public profile",
				Arguments: []cli.Argument{&cli.StringArg{Name: "handle"}},
				Flags: append(outputFlags(true), &cli.BoolFlag{
					Name:  "reviews",
					Usage: "Include the member's reviews",
				}),
				Action: r.MemberView,
			},
		},
	}
}

// favoritesCommand handles favorite operations.
func favoritesCommand(r *Runner) *cli.Command {
	typeFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   "Media type (movie, series or album); all types when omitted",
		}
	}
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Manage your favorites",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List favorites with their titles",
				Flags: append(outputFlags(true), typeFlag(), &cli.BoolFlag{
					Name:  "refs",
					Usage: "List references only, without looking up titles",
				}),
				Action: r.FavoritesList,
			},
			{
				Name:      "add",
				Usage:     "Add an item to your favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "ref", UsageText: "type:id"}},
				Action:    r.FavoritesAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove an item from your favorites",
				Arguments: []cli.Argument{&cli.StringArg{Name: "ref", UsageText: "type:id"}},
				Action:    r.FavoritesRemove,
			},
			{
				Name:  "check",
				Usage: "Check whether items are favorites",
				Flags: append(outputFlags(true),
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Usage:    "Media type of the ids",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "id",
						Usage:    "Item id; repeat for several",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent checks",
						Value: 5,
					},
				),
				Action: r.FavoritesCheck,
			},
			{
				Name:  "export",
				Usage: "Export your favorites to disk",
				Flags: []cli.Flag{
					typeFlag(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, markdown or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: <handle>_library)",
					},
				},
				Action: r.FavoritesExport,
			},
		},
	}
}

// followCommand handles follow operations.
func followCommand(r *Runner) *cli.Command {
	handleArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "handle"}} }
	return &cli.Command{
		Name:  "follow",
		Usage: "Follow and unfollow members",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Follow a member",
				Arguments: handleArg(),
				Action:    r.FollowAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Unfollow a member",
				Arguments: handleArg(),
				Action:    r.FollowRemove,
			},
			{
				Name:      "status",
				Usage:     "Show whether you follow a member",
				Arguments: handleArg(),
				Action:    r.FollowStatus,
			},
			{
				Name:      "list",
				Usage:     "List followers and followed members (yours when no handle is given)",
				Arguments: handleArg(),
				Flags:     outputFlags(true),
				Action:    r.FollowList,
			},
		},
	}
}

// reviewsCommand handles reviews and ratings.
func reviewsCommand(r *Runner) *cli.Command {
	refArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "ref", UsageText: "type:id"}} }
	return &cli.Command{
		Name:  "reviews",
		Usage: "Read and write reviews",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List the reviews of an item",
				Arguments: refArg(),
				Flags:     outputFlags(true),
				Action:    r.ReviewsList,
			},
			{
				Name:      "add",
				Usage:     "Review an item",
				Arguments: refArg(),
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:     "rating",
						Aliases:  []string{"r"},
						Usage:    "Rating from 0 to 5 in half steps",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Review text",
					},
				},
				Action: r.ReviewsAdd,
			},
			{
				Name:      "average",
				Aliases:   []string{"avg"},
				Usage:     "Show the average rating of an item",
				Arguments: refArg(),
				Flags:     outputFlags(true),
				Action:    r.ReviewsAverage,
			},
		},
	}
}

// mediaCommand handles catalogue lookups.
func mediaCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "id"}} }
	return &cli.Command{
		Name:  "media",
		Usage: "Look up movies, series and albums",
		Commands: []*cli.Command{
			{
				Name:      "movie",
				Usage:     "Show a movie",
				Arguments: idArg(),
				Flags:     outputFlags(true),
				Action:    r.MediaMovie,
			},
			{
				Name:      "series",
				Usage:     "Show a series",
				Arguments: idArg(),
				Flags:     outputFlags(true),
				Action:    r.MediaSeries,
			},
			{
				Name:      "album",
				Usage:     "Show an album",
				Arguments: idArg(),
				Flags:     outputFlags(true),
				Action:    r.MediaAlbum,
			},
			{
				Name:      "search",
				Usage:     "Search the catalogue",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: append(outputFlags(true), &cli.StringFlag{
					Name:    "type",
					Aliases: []string{"t"},
					Usage:   "Media type to search",
					Value:   "movie",
				}),
				Action: r.MediaSearch,
			},
		},
	}
}

// localeCommand reads and writes the locale preference sent as Accept-Language.
func localeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "locale",
		Usage: "Show or change the preferred locale",
		Commands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Show the current locale",
				Action: r.LocaleGet,
			},
			{
				Name:      "set",
				Usage:     "Store a new locale",
				Arguments: []cli.Argument{&cli.StringArg{Name: "locale"}},
				Action:    r.LocaleSet,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for browsing favorites.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse your favorites interactively",
		Action:  r.TUI,
	}
}
