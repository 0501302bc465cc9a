// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

const replaceDescription = `Replaces every liked song with your top tracks for the chosen time range.

The run is not atomic. All liked songs are removed before the top tracks are
added, so a failure part way through can leave the collection empty or partly
filled. Use --dry-run first to see what would be liked.`

// rootCommand builds the likeswap command tree. Running it without a subcommand replaces liked songs.
func rootCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:        "likeswap",
		Usage:       "Replace your Spotify liked songs with your top tracks",
		Description: replaceDescription,
		Version:     "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("LIKESWAP_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Top tracks requested per page (1-50, defaults to sync.page_size)",
				Value:   50,
			},
			&cli.StringFlag{
				Name:    "time-range",
				Aliases: []string{"t"},
				Usage:   "Top tracks window: short (4 weeks), medium (6 months) or long (all time)",
				Value:   "short",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be liked without changing anything",
			},
			&cli.BoolFlag{
				Name:  "show-top",
				Usage: "List your top tracks and exit",
			},
			&cli.BoolFlag{
				Name:  "show-liked",
				Usage: "List your liked songs and exit",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Songs per add/remove request (1-50, defaults to sync.batch_size)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv or markdown",
				Value:   "text",
			},
		},
		Before:   r.Configure,
		After:    r.Close,
		Action:   r.Replace,
		Commands: r.register(),
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the configuration file and initialize the database",
		Action: r.Setup,
	}
}

// authCommand manages the stored Spotify session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify login",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize likeswap in the browser and store a session",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 2 * time.Minute,
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the logged in Spotify account",
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Revoke the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "prune",
				Usage:  "Delete expired sessions from the database",
				Action: r.AuthPrune,
			},
		},
	}
}

// serveCommand runs the HTTP login API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API for browser logins",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.BoolFlag{
				Name:  "secure",
				Usage: "Mark the session cookie Secure (use behind HTTPS)",
			},
			&cli.DurationFlag{
				Name:  "prune-interval",
				Usage: "How often expired sessions and states are removed",
				Value: 10 * time.Minute,
			},
		},
		Action: r.Serve,
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Pick a time range and replace liked songs interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the terminal",
				Value: "./tmp/likeswap-tui.log",
			},
		},
		Action: r.TUI,
	}
}
