// submodule cmd contains flag sets shared by several commands
package main

import (
	"github.com/desertthunder/midias/internal/models"
	"github.com/urfave/cli/v3"
)

// connectionFlags select and authenticate the server of remote commands.
func connectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "base-url",
			Usage: "Server URL (default: the configured host and port)",
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Log in as this user first",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "Secret of --username",
		},
		&cli.StringFlag{
			Name:  "api-key",
			Usage: "Send this key in the X-API-Key header",
		},
	}
}

// filterFlags are the media filters shared by listings and reports.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "platform",
			Usage: "vimeo or youtube",
		},
		&cli.Int64Flag{
			Name:  "line-id",
			Usage: "Only media of this line",
		},
		&cli.Int64Flag{
			Name:  "system-id",
			Usage: "Only media of this system",
		},
		&cli.StringFlag{
			Name:  "date-from",
			Usage: "Earliest publication date (YYYY-MM-DD)",
		},
		&cli.StringFlag{
			Name:  "date-to",
			Usage: "Latest publication date (YYYY-MM-DD)",
		},
	}
}

func filterFromCommand(cmd *cli.Command) models.MediaFilter {
	filter := models.MediaFilter{
		Platform: models.Platform(cmd.String("platform")),
		DateFrom: cmd.String("date-from"),
		DateTo:   cmd.String("date-to"),
	}
	if cmd.IsSet("line-id") {
		id := cmd.Int64("line-id")
		filter.LineID = &id
	}
	if cmd.IsSet("system-id") {
		id := cmd.Int64("system-id")
		filter.SystemID = &id
	}
	return filter
}
