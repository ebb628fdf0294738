package waves

import (
	"bytes"
	"strings"
	"testing"
)

func TestToTable(t *testing.T) {
	s := seriesOf(10, 12.5)
	rows := ToTable(s)
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "Date,Open,High,Low,Close,Typical" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if got := strings.Join(rows[2], ","); got != "2024-03-04T09:01:00Z,12.5,12.5,12.5,12.5,12.5" {
		t.Fatalf("unexpected row %s", got)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, seriesOf(1)); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := "Date,Open,High,Low,Close,Typical\n2024-03-04T09:00:00Z,1,1,1,1,1\n"
	if buf.String() != want {
		t.Fatalf("unexpected csv %q", buf.String())
	}
}
