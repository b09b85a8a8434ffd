package cli

import (
	"fmt"
	"os"

	"trazabilidad/internal/infra"

	"github.com/spf13/cobra"
)

type seedResult struct {
	Alergenos int `json:"alergenos"`
	Unidades  int `json:"unidades"`
	Tipos     int `json:"tipos"`
}

// NewSeedCommand loads the reference catalog. Safe to run repeatedly.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var ruta string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carga el catálogo de referencia",
		Long: `Carga alérgenos, unidades y tipos de elaborado. Sin --catalogo se usa el
catálogo incluido (14 alérgenos del Reglamento UE 1169/2011). Las filas que
ya existen no se modifican.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := leerCatalogo(ruta)
			if err != nil {
				return err
			}

			db, _, cerrar, err := rootOpts.abrir()
			if err != nil {
				return err
			}
			defer cerrar()

			if err := infra.CargarCatalogo(db, cat); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			res := seedResult{Alergenos: len(cat.Alergenos), Unidades: len(cat.Unidades), Tipos: len(cat.Tipos)}
			return escribir(cmd.OutOrStdout(), rootOpts.Format, res,
				fmt.Sprintf("catálogo cargado: %d alérgenos, %d unidades, %d tipos\n", res.Alergenos, res.Unidades, res.Tipos))
		},
	}

	cmd.Flags().StringVarP(&ruta, "catalogo", "c", "", "fichero YAML con el catálogo")
	return cmd
}

func leerCatalogo(ruta string) (*infra.Catalogo, error) {
	if ruta == "" {
		return infra.CatalogoPorDefecto()
	}
	f, err := os.Open(ruta)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return infra.LeerCatalogo(f)
}
