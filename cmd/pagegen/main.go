package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagegen/internal/config"
	"git.home.luguber.info/inful/pagegen/internal/version"
)

func main() {
	if path, err := config.LoadEnvFile(""); err != nil {
		slog.Warn("Failed to load environment file", "error", err)
	} else if path != "" {
		slog.Debug("Loaded environment variables", "path", path)
	}

	var cli CLI
	kong.Parse(&cli,
		kong.Name("pagegen"),
		kong.Description("Render one page per JSON record plus an index page from two templates."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	os.Exit(cli.Execute())
}
