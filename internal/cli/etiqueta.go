package cli

import (
	"fmt"
	"os"

	"trazabilidad/internal/infra"
	"trazabilidad/internal/repository"
	"trazabilidad/internal/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewEtiquetaCommand prints the flattened label of a lot and optionally
// writes its PDF. The label cache is not used.
func NewEtiquetaCommand(rootOpts *RootOptions) *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:          "etiqueta <lote-id>",
		Short:        "Imprime la etiqueta de un lote",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("lote-id: %w", err)
			}

			db, cfg, cerrar, err := rootOpts.abrir()
			if err != nil {
				return err
			}
			defer cerrar()

			svc := service.NewEtiquetaService(repository.NewLoteRepository(db), nil, cfg.EtiquetaMaxProfundidad, cfg.EmpresaNombre)
			ctx := cmd.Context()

			et, err := svc.Aplanar(ctx, id)
			if err != nil {
				return err
			}
			if pdfPath != "" {
				b, err := svc.PDF(ctx, id)
				if err != nil {
					return err
				}
				if err := os.WriteFile(pdfPath, b, 0o644); err != nil {
					return err
				}
			}
			return escribir(cmd.OutOrStdout(), rootOpts.Format, et, infra.EtiquetaTexto(et, cfg.EmpresaNombre))
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "escribe además la etiqueta en PDF en esta ruta")
	return cmd
}
