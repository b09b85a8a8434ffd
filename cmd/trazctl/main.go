// trazctl runs maintenance tasks against the trazabilidad database:
// migrations, catalog seeding and label printing.
package main

import (
	"context"
	"os"
	"time"

	"trazabilidad/internal/cli"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cmd := cli.NewRootCommand()
	cmd.SilenceErrors = true
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("trazctl")
		os.Exit(1)
	}
}
