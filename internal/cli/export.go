package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/export"
)

const exportFilePermission = 0o644

func newExportCmd(e *env) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every record as CSV or XLSX",
		Long:  "Export every record. Without --out the file is named frc_scouting_data_YYYYMMDD_HHMMSS.<format>; --out - writes to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != service.FormatCSV && format != service.FormatXLSX {
				return fmt.Errorf("%w: %q", service.ErrUnknownFormat, format)
			}
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				var buf bytes.Buffer
				if err := svc.Export(cmd.Context(), &buf, format); err != nil {
					return err
				}
				if out == "-" {
					_, err := cmd.OutOrStdout().Write(buf.Bytes())
					return err
				}
				name := out
				if name == "" {
					name = export.FileName(format, time.Now())
				}
				if err := os.WriteFile(name, buf.Bytes(), exportFilePermission); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", service.FormatCSV, "csv or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	return cmd
}
