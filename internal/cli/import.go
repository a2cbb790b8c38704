package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/scout/internal/app"
	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/normalize"
)

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import scouting payloads from a JSON file",
		Long: "Import a JSON array of payloads (objects or scanned QR strings) or a single payload object.\n" +
			"Use - to read from stdin. Duplicates and invalid items are reported and skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raws, err := readPayloads(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			return e.withService(cmd.Context(), func(svc *service.Service) error {
				return runImport(cmd, svc, raws, importBatchSize(e))
			})
		},
	}
}

// readPayloads reads path ("-" for in) as a payload array or a single object.
func readPayloads(in io.Reader, path string) ([]model.RawSubmission, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read payloads: %w", err)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		raw, err := normalize.Decode(bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		return []model.RawSubmission{raw}, nil
	}
	return normalize.DecodeBatch(bytes.NewReader(data))
}

// importBatchSize keeps each Import call within the queue so no item is
// turned away for backpressure.
func importBatchSize(e *env) int {
	return max(1, min(e.cfg.ImportQueueSize, e.cfg.ImportMaxItems))
}

func runImport(cmd *cobra.Command, svc *service.Service, raws []model.RawSubmission, batch int) error {
	out := cmd.OutOrStdout()
	counts := make(map[model.ImportStatus]int)

	for start := 0; start < len(raws); start += batch {
		end := min(start+batch, len(raws))
		results, err := svc.Import(cmd.Context(), raws[start:end])
		if err != nil {
			return fmt.Errorf("import items %d-%d: %w", start, end-1, err)
		}
		for _, r := range results {
			counts[r.Status]++
			if r.Status != model.ImportCreated {
				fmt.Fprintf(out, "item %d: %s: %s\n", start+r.Index, r.Status, r.Error)
			}
		}
	}

	fmt.Fprintf(out, "Imported %d of %d payloads (%d duplicate, %d invalid, %d failed, %d backpressure)\n",
		counts[model.ImportCreated], len(raws),
		counts[model.ImportDuplicate], counts[model.ImportInvalid],
		counts[model.ImportFailed], counts[model.ImportBackpressure])
	return nil
}
