package finder

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/Mc-Fr/Convertisseur/pkg/block"
)

// Record is one row of a Parquet report.
type Record struct {
	X     int32  `parquet:"x"`
	Y     int32  `parquet:"y"`
	Z     int32  `parquet:"z"`
	Label string `parquet:"label"`
	Query string `parquet:"query"`
}

// WriteText writes one position per line.
func WriteText(w io.Writer, positions []block.Pos) error {
	for _, p := range positions {
		if _, err := fmt.Fprintln(w, p); err != nil {
			return err
		}
	}
	return nil
}

// WriteParquet stores positions as a Parquet file at path.
func WriteParquet(path string, q Query, positions []block.Pos) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	rows := make([]Record, len(positions))
	for i, p := range positions {
		rows[i] = Record{
			X:     int32(p.X),
			Y:     int32(p.Y),
			Z:     int32(p.Z),
			Label: p.Label,
			Query: q.String(),
		}
	}

	w := parquet.NewGenericWriter[Record](f)
	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("closing report writer: %w", err)
	}
	return f.Close()
}
