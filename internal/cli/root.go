package cli

import (
	"fmt"
	"slices"

	"trazabilidad/internal/config"
	"trazabilidad/internal/infra"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DatabaseURL string
	Format      string // "text" | "json"
}

var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the trazctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "trazctl",
		Short: "Administración del servicio de trazabilidad",
		Long: `Tareas de mantenimiento fuera del servidor HTTP: migrar el esquema,
cargar el catálogo de referencia e imprimir etiquetas de lote.

La base de datos se toma de DATABASE_URL salvo que se indique --database-url.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DatabaseURL, "database-url", "", "postgres://... o sqlite://ruta (por defecto DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewEtiquetaCommand(opts))

	return cmd
}

// abrir loads the configuration, applies flag overrides and opens the store.
// The returned func closes the pool.
func (o *RootOptions) abrir() (*gorm.DB, *config.Config, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("config: %w", err)
	}
	if o.DatabaseURL != "" {
		cfg.DatabaseURL = o.DatabaseURL
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database: %w", err)
	}
	cerrar := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cfg, cerrar, nil
}
