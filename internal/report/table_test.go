package report

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const twoTablesHTML = `
<html>
	<body>
		<table>
			<tr><td>Menú</td><td>Enlaces</td></tr>
		</table>
		<table>
			<tr><th>Parole Cuba</th><th>Aprobados</th></tr>
			<tr><td>TOTAL</td><td>100</td></tr>
			<tr><td>3-mar</td><td> 20 </td></tr>
			<tr><td>solo una celda</td></tr>
		</table>
	</body>
</html>
`

func TestFirstTable(t *testing.T) {
	table, err := FirstTable{}.Find(twoTablesHTML)
	if err != nil {
		t.Fatalf("Find() unexpected error: %v", err)
	}
	if !strings.Contains(table.Text(), "Menú") {
		t.Errorf("Find() returned %q, want the first table", table.Text())
	}
}

func TestFirstTable_NoTable(t *testing.T) {
	_, err := FirstTable{}.Find(`<html><body><p>Sin datos</p></body></html>`)
	if !errors.Is(err, ErrTableNotFound) {
		t.Errorf("Find() error = %v, want ErrTableNotFound", err)
	}
}

func TestHeaderContains(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		text      string
		wantMatch string
		wantErr   bool
	}{
		{
			name:      "second table has header",
			html:      twoTablesHTML,
			text:      "cuba",
			wantMatch: "Parole Cuba",
		},
		{
			name:      "default match text",
			html:      twoTablesHTML,
			wantMatch: "Parole Cuba",
		},
		{
			name:      "case insensitive",
			html:      `<table><tr><td>CUBANOS APROBADOS</td></tr></table>`,
			text:      "Cuba",
			wantMatch: "CUBANOS",
		},
		{
			name:    "mention outside header ignored",
			html:    `<table><tr><td>Fecha</td></tr><tr><td>Cuba</td></tr></table>`,
			text:    "cuba",
			wantErr: true,
		},
		{
			name:    "table without rows",
			html:    `<table></table>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := HeaderContains{Text: tt.text}.Find(tt.html)

			if tt.wantErr {
				if !errors.Is(err, ErrTableNotFound) {
					t.Errorf("Find() error = %v, want ErrTableNotFound", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Find() unexpected error: %v", err)
			}
			if !strings.Contains(table.Text(), tt.wantMatch) {
				t.Errorf("Find() returned %q, want table containing %q", table.Text(), tt.wantMatch)
			}
		})
	}
}

func TestRows(t *testing.T) {
	table, err := HeaderContains{Text: "cuba"}.Find(twoTablesHTML)
	if err != nil {
		t.Fatalf("Find() unexpected error: %v", err)
	}

	got := Rows(table)
	want := []Row{
		{Label: "TOTAL", Value: "100"},
		{Label: "3-mar", Value: "20"},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rows() = %v, want %v", got, want)
	}
}
