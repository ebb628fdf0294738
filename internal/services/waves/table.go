package waves

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"NeelyWave/internal/domain/models"
)

// TableHeader is the first row produced by ToTable.
var TableHeader = []string{"Date", "Open", "High", "Low", "Close", "Typical"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToTable flattens s into rows of Date, Open, High, Low, Close, Typical with
// RFC 3339 dates in UTC. The header row comes first.
func ToTable(s *models.Series) [][]string {
	rows := make([][]string, 0, s.Len()+1)
	rows = append(rows, append([]string(nil), TableHeader...))
	for i := 0; i < s.Len(); i++ {
		rows = append(rows, []string{
			s.Date[i].UTC().Format(time.RFC3339),
			formatFloat(s.Open[i]),
			formatFloat(s.High[i]),
			formatFloat(s.Low[i]),
			formatFloat(s.Close[i]),
			formatFloat(s.Typical[i]),
		})
	}
	return rows
}

// WriteCSV writes ToTable(s) as comma separated text.
func WriteCSV(w io.Writer, s *models.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ToTable(s)); err != nil {
		return err
	}
	return cw.Error()
}
