package detector

import (
	"testing"

	"github.com/vloginova/finledger/internal/domain/ingest/grid"
	"github.com/vloginova/finledger/internal/domain/ledger"
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

func numRow(values ...float64) []grid.Cell {
	cells := make([]grid.Cell, len(values))
	for i, v := range values {
		cells[i] = grid.Cell{Kind: grid.CellNumber, Number: v, Text: "1"}
	}
	return cells
}

func TestClassify_BySheetName(t *testing.T) {
	g := grid.Grid{row("Дата", "Сумма")}

	cases := []struct {
		sheetName string
		want      ledger.SheetType
	}{
		{"Касса", ledger.SheetCashJournal},
		{"касса март", ledger.SheetCashJournal},
		{"Наличные", ledger.SheetCashJournal},
		{"Банк", ledger.SheetBankJournal},
		{"Расчетный счет", ledger.SheetBankJournal},
		{"Расчётный счёт", ledger.SheetBankJournal},
		{"Р/С Сбер", ledger.SheetBankJournal},
		{"Справочник", ledger.SheetReference},
		{"справ. статей", ledger.SheetReference},
	}

	for _, c := range cases {
		class := Classify(g, c.sheetName)
		if class.Type != c.want {
			t.Errorf("Classify(%q) type = %q, want %q", c.sheetName, class.Type, c.want)
		}
	}
}

func TestClassify_NamePrecedesHeaders(t *testing.T) {
	// A sheet named after the reference wins even with journal-looking headers.
	g := grid.Grid{row("Дата оплаты", "Сумма", "Кошелек")}
	class := Classify(g, "Справочник статей")
	if class.Type != ledger.SheetReference {
		t.Errorf("expected reference by name, got %q", class.Type)
	}
}

func TestClassify_CashByHeaders(t *testing.T) {
	g := grid.Grid{
		row("Дата оплаты", "Сумма", "Статья", "Кошелек", "Контрагент"),
		row("15.03.2024", "1000", "Выручка", "Основной", "Иванов"),
	}
	class := Classify(g, "Лист1")
	if class.Type != ledger.SheetCashJournal {
		t.Errorf("expected cash_journal, got %q", class.Type)
	}
	if class.HeaderRow != 0 {
		t.Errorf("expected header row 0, got %d", class.HeaderRow)
	}
}

func TestClassify_BankByHeaders(t *testing.T) {
	g := grid.Grid{
		row("Дата поступления", "Сумма", "Аналитика Дт", "Аналитика Кт", "Назначение платежа"),
	}
	class := Classify(g, "Лист2")
	if class.Type != ledger.SheetBankJournal {
		t.Errorf("expected bank_journal, got %q", class.Type)
	}
}

func TestClassify_ReferenceByHeaders(t *testing.T) {
	cases := [][]grid.Cell{
		row("Статья ДДС", "Группа", "Комментарий"),
		row("Справочник контрагентов"),
		row("Статья", "Вид деятельности"),
	}
	for i, header := range cases {
		class := Classify(grid.Grid{header}, "Лист3")
		if class.Type != ledger.SheetReference {
			t.Errorf("case %d: expected reference, got %q", i, class.Type)
		}
	}
}

func TestClassify_LooseCashFallback(t *testing.T) {
	// Generic journal headers with no wallet or analytics columns.
	g := grid.Grid{row("Дата", "Сумма", "Статья расхода", "Примечание")}
	class := Classify(g, "Лист4")
	if class.Type != ledger.SheetCashJournal {
		t.Errorf("expected cash_journal, got %q", class.Type)
	}
}

func TestClassify_Unknown(t *testing.T) {
	g := grid.Grid{row("Имя", "Фамилия", "Телефон")}
	class := Classify(g, "Лист5")
	if class.Type != ledger.SheetUnknown {
		t.Errorf("expected unknown, got %q", class.Type)
	}
}

func TestFindHeaderRow_SkipsTitleRows(t *testing.T) {
	g := grid.Grid{
		row("Отчет за март 2024"),
		{},
		row("Дата", "Сумма", "Статья", "Контрагент"),
		row("15.03.2024", "1000", "Выручка", "Иванов"),
	}
	if got := FindHeaderRow(g); got != 2 {
		t.Errorf("FindHeaderRow = %d, want 2", got)
	}
}

func TestFindHeaderRow_TieKeepsEarliest(t *testing.T) {
	g := grid.Grid{
		row("Дата", "Сумма", "Статья"),
		row("Дата", "Сумма", "Статья"),
	}
	if got := FindHeaderRow(g); got != 0 {
		t.Errorf("FindHeaderRow = %d, want 0 on a tie", got)
	}
}

func TestFindHeaderRow_NumericRowsScoreLow(t *testing.T) {
	g := grid.Grid{
		numRow(1, 2, 3, 4, 5),
		row("Дата", "Сумма"),
	}
	if got := FindHeaderRow(g); got != 1 {
		t.Errorf("FindHeaderRow = %d, want 1", got)
	}
}

func TestFindHeaderRow_BeyondSearchDepth(t *testing.T) {
	g := make(grid.Grid, 12)
	g[11] = row("Дата", "Сумма", "Статья")
	if got := FindHeaderRow(g); got != 0 {
		t.Errorf("FindHeaderRow = %d, want 0 when headers sit past the scan depth", got)
	}
}

func TestFindHeaderRow_EmptyGrid(t *testing.T) {
	if got := FindHeaderRow(grid.Grid{}); got != 0 {
		t.Errorf("FindHeaderRow(empty) = %d, want 0", got)
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"  Ёлка   ТЕСТ ", "елка тест"},
		{"Расчётный счёт", "расчетный счет"},
		{"Дата\tоплаты", "дата оплаты"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeText(c.input); got != c.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}
