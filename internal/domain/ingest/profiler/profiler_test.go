package profiler

import (
	"fmt"
	"testing"

	"github.com/vloginova/finledger/internal/domain/ingest/grid"
)

func row(values ...string) []grid.Cell {
	cells := make([]grid.Cell, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		cells[i] = grid.Cell{Kind: grid.CellString, Text: v}
	}
	return cells
}

func TestProfileSheet_Columns(t *testing.T) {
	g := grid.Grid{
		row("Дата", "", "Сумма", "Сумма"),
		row("15.03.2024", "x", "100", "200"),
	}
	p := ProfileSheet(g, "Касса", 0)

	if p.Sheet != "Касса" {
		t.Errorf("sheet = %q, want %q", p.Sheet, "Касса")
	}
	want := []string{"Дата", "Колонка B", "Сумма", "Сумма (D)"}
	if len(p.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %d: %v", len(want), len(p.Columns), p.Columns)
	}
	for i, name := range want {
		if p.Columns[i] != name {
			t.Errorf("column %d = %q, want %q", i, p.Columns[i], name)
		}
	}
}

func TestProfileSheet_ValuesDistinctFirstSeen(t *testing.T) {
	g := grid.Grid{
		row("Контрагент"),
		row("Иванов"),
		row("Петров"),
		row("Иванов"),
		row(""),
		row("Сидоров"),
	}
	p := ProfileSheet(g, "Лист", 0)

	values := p.Values["Контрагент"]
	want := []string{"Иванов", "Петров", "Сидоров"}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d: %v", len(want), len(values), values)
	}
	for i, v := range want {
		if values[i] != v {
			t.Errorf("value %d = %q, want %q", i, values[i], v)
		}
	}
}

func TestProfileSheet_SampleCap(t *testing.T) {
	g := grid.Grid{row("Контрагент")}
	for i := 0; i < maxDistinctValues+50; i++ {
		g = append(g, row(fmt.Sprintf("Контрагент %d", i)))
	}
	p := ProfileSheet(g, "Лист", 0)

	if len(p.Values["Контрагент"]) != maxDistinctValues {
		t.Errorf("expected sample capped at %d, got %d", maxDistinctValues, len(p.Values["Контрагент"]))
	}
}

func TestProfileSheet_HeaderRowOutOfRange(t *testing.T) {
	p := ProfileSheet(grid.Grid{}, "Пустой", 0)
	if len(p.Columns) != 0 {
		t.Errorf("expected no columns for an empty grid, got %v", p.Columns)
	}
}
