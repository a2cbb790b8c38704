package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ContentTypeCSV is served with CSV downloads.
const ContentTypeCSV = "text/csv; charset=utf-8"

// WriteCSV writes t with standard quoting, so notes containing commas,
// quotes or newlines survive a round trip.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
