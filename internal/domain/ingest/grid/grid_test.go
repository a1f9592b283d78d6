package grid

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDecodeWorkbook(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Касса"); err != nil {
		t.Fatalf("SetSheetName: %v", err)
	}
	rows := [][]interface{}{
		{"Дата", "Сумма", "Комментарий"},
		{"15.03.2024", 1500.5, ""},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName: %v", err)
		}
		if err := f.SetSheetRow("Касса", cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	sheets, err := DecodeWorkbook(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeWorkbook: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "Касса" {
		t.Fatalf("unexpected sheets: %+v", sheets)
	}

	g := sheets[0].Grid
	if len(g) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(g))
	}
	if c := g.Cell(0, 0); c.Kind != CellString || c.Text != "Дата" {
		t.Errorf("unexpected header cell: %+v", c)
	}
	if c := g.Cell(1, 1); c.Kind != CellNumber || c.Number != 1500.5 {
		t.Errorf("numeric cell must arrive as a number: %+v", c)
	}
}

func TestDecodeWorkbook_BadBytes(t *testing.T) {
	_, err := DecodeWorkbook([]byte("not a workbook"))
	if !errors.Is(err, ErrBadWorkbook) {
		t.Errorf("expected ErrBadWorkbook, got %v", err)
	}
}

func TestGridCell_OutOfBounds(t *testing.T) {
	g := Grid{{Cell{Kind: CellString, Text: "x"}}}
	for _, coord := range [][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}} {
		if c := g.Cell(coord[0], coord[1]); !c.IsBlank() {
			t.Errorf("Cell(%d, %d) = %+v, want blank", coord[0], coord[1], c)
		}
	}
}

func TestClassifyCell(t *testing.T) {
	cases := []struct {
		raw  string
		kind CellKind
	}{
		{"", CellEmpty},
		{"   ", CellEmpty},
		{"45000", CellNumber},
		{"-12.5", CellNumber},
		{"Дата", CellString},
		{"15.03.2024", CellString},
	}
	for _, c := range cases {
		if got := classifyCell(c.raw); got.Kind != c.kind {
			t.Errorf("classifyCell(%q) kind = %v, want %v", c.raw, got.Kind, c.kind)
		}
	}
}

func TestColumnLetter(t *testing.T) {
	cases := []struct {
		idx  int
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
	}
	for _, c := range cases {
		if got := ColumnLetter(c.idx); got != c.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", c.idx, got, c.want)
		}
	}
}
