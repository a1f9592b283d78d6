package ledger

import (
	"testing"
	"time"
)

func sampleTransactions() []Transaction {
	return []Transaction{
		{
			ID: "tx-1", Date: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
			Sheet: "Касса", Article: "Выручка", Branch: "Центр",
			Counterparty: "Иванов Иван", Direction: DirectionIn, AmountKopecks: 100000,
		},
		{
			ID: "tx-2", Date: time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC),
			Sheet: "Касса", Article: "Аренда", Branch: "Центр",
			Counterparty: "ООО Арендодатель", Direction: DirectionOut, AmountKopecks: 250000,
		},
		{
			ID: "tx-3", Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			Sheet: "Банк", Article: "Выручка", Branch: "Север",
			Counterparty: "ООО Клиент", Direction: DirectionIn, AmountKopecks: 500000,
		},
	}
}

func ids(txs []Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func assertIDs(t *testing.T, got []Transaction, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotIDs)
		}
	}
}

func TestApply_EmptyFilterReturnsAll(t *testing.T) {
	got := Apply(sampleTransactions(), Filter{})
	assertIDs(t, got, "tx-1", "tx-2", "tx-3")
}

func TestApply_DateRange(t *testing.T) {
	f := Filter{
		DateFrom: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	// DateTo is inclusive to the end of its day, so the 18:30 transaction
	// on the boundary day stays in.
	got := Apply(sampleTransactions(), f)
	assertIDs(t, got, "tx-2")
}

func TestApply_DateFromExcludesEarlier(t *testing.T) {
	f := Filter{DateFrom: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)}
	got := Apply(sampleTransactions(), f)
	assertIDs(t, got, "tx-2", "tx-3")
}

func TestApply_Dimensions(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"by article", Filter{Articles: []string{"Выручка"}}, []string{"tx-1", "tx-3"}},
		{"by branch", Filter{Branches: []string{"Север"}}, []string{"tx-3"}},
		{"by counterparty", Filter{Counterparties: []string{"Иванов Иван"}}, []string{"tx-1"}},
		{"by sheet", Filter{Sheets: []string{"Банк"}}, []string{"tx-3"}},
		{"by direction", Filter{Direction: DirectionOut}, []string{"tx-2"}},
		{"several values", Filter{Articles: []string{"Выручка", "Аренда"}}, []string{"tx-1", "tx-2", "tx-3"}},
		{"no match", Filter{Articles: []string{"Зарплата"}}, nil},
	}
	for _, c := range cases {
		got := Apply(sampleTransactions(), c.filter)
		assertIDs(t, got, c.want...)
	}
}

func TestApply_DimensionsAndCombined(t *testing.T) {
	f := Filter{
		Articles:  []string{"Выручка"},
		Branches:  []string{"Центр"},
		Direction: DirectionIn,
	}
	got := Apply(sampleTransactions(), f)
	assertIDs(t, got, "tx-1")
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTransactions())

	if s.Count != 3 {
		t.Errorf("count = %d, want 3", s.Count)
	}
	if s.TotalInKopecks != 600000 {
		t.Errorf("total in = %d, want 600000", s.TotalInKopecks)
	}
	if s.TotalOutKopecks != 250000 {
		t.Errorf("total out = %d, want 250000", s.TotalOutKopecks)
	}
	if s.NetKopecks != 350000 {
		t.Errorf("net = %d, want 350000", s.NetKopecks)
	}

	if len(s.ByArticle) != 2 {
		t.Fatalf("expected 2 article rollups, got %d", len(s.ByArticle))
	}
	// Sorted by turnover: Выручка 600000 before Аренда 250000.
	if s.ByArticle[0].Key != "Выручка" || s.ByArticle[0].InKopecks != 600000 || s.ByArticle[0].Transaction != 2 {
		t.Errorf("unexpected first article rollup: %+v", s.ByArticle[0])
	}
	if s.ByArticle[1].Key != "Аренда" || s.ByArticle[1].OutKopecks != 250000 {
		t.Errorf("unexpected second article rollup: %+v", s.ByArticle[1])
	}

	if len(s.ByBranch) != 2 {
		t.Fatalf("expected 2 branch rollups, got %d", len(s.ByBranch))
	}
	if s.ByBranch[0].Key != "Север" {
		t.Errorf("unexpected first branch rollup: %+v", s.ByBranch[0])
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 || s.NetKopecks != 0 || len(s.ByArticle) != 0 {
		t.Errorf("unexpected summary for empty input: %+v", s)
	}
}
