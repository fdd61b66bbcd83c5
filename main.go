package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	auditcmd "github.com/davyos/siteforge/internal/audit"
	buildcmd "github.com/davyos/siteforge/internal/build"
	historycmd "github.com/davyos/siteforge/internal/history"
	submitcmd "github.com/davyos/siteforge/internal/submit"
)

func main() {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "root",
			Usage: "site root directory",
			Value: ".",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to the site config file",
			Value: "siteforge.yaml",
		},
		&cli.StringFlag{
			Name:  "domain",
			Usage: "site domain, overrides the config value",
		},
		&cli.BoolFlag{
			Name:  "quiet",
			Usage: "log errors only",
		},
	}

	app := &cli.App{
		Name:  "siteforge",
		Usage: "assemble and audit a static HTML site",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "rewrite the site tree: links, layout, metadata, pagination, sitemap",
				Flags:  commonFlags,
				Action: buildcmd.BuildAction,
			},
			{
				Name:  "audit",
				Usage: "check the tree for dead links, orphans and structural defects",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "skip-external",
						Usage: "skip the external link liveness probe",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "do not record this run in the history database",
					},
				}, commonFlags...),
				Action: auditcmd.AuditAction,
			},
			{
				Name:   "submit",
				Usage:  "submit the sitemap's URLs to the indexing endpoint",
				Flags:  commonFlags,
				Action: submitcmd.SubmitAction,
			},
			{
				Name:  "history",
				Usage: "list past audit runs",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum runs to list",
						Value: 20,
					},
				}, commonFlags...),
				Action: historycmd.HistoryAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
