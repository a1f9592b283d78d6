package resolver

import (
	"testing"

	"github.com/vloginova/finledger/internal/domain/ledger"
)

func refs(names ...string) []ledger.CounterpartyRef {
	out := make([]ledger.CounterpartyRef, len(names))
	for i, n := range names {
		out[i] = ledger.CounterpartyRef{Name: n}
	}
	return out
}

func TestResolve_ExactMatch(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("ООО Ромашка", "Иванов Иван Иванович")})

	cases := []struct {
		raw  string
		want string
	}{
		{"ООО Ромашка", "ООО Ромашка"},
		{"ооо ромашка", "ООО Ромашка"},
		{"ООО \"Ромашка\"", "ООО Ромашка"},
		{"ООО Ромашка Договор №45 от 01.01.24", "ООО Ромашка"},
		{"Иванов Иван Иванович", "Иванов Иван Иванович"},
	}
	for _, c := range cases {
		if got := d.Resolve(c.raw); got != c.want {
			t.Errorf("Resolve(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestResolve_OrgPrefixStripped(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("ООО Ромашка")})

	// The journal omits the organizational form the reference carries.
	if got := d.Resolve("Ромашка"); got != "ООО Ромашка" {
		t.Errorf("Resolve = %q, want %q", got, "ООО Ромашка")
	}
}

func TestResolve_OrgTokensStripped(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("Ромашка")})

	// The journal adds an organizational form the reference lacks.
	if got := d.Resolve("ООО Ромашка"); got != "Ромашка" {
		t.Errorf("Resolve = %q, want %q", got, "Ромашка")
	}
}

func TestResolve_TokenSignature(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("Иванов Иван")})

	// Word order does not matter at the signature level.
	if got := d.Resolve("Иван Иванов"); got != "Иванов Иван" {
		t.Errorf("Resolve = %q, want %q", got, "Иванов Иван")
	}
}

func TestResolve_HomographsFolded(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("ООО Ромашка")})

	// Latin lookalike letters in the journal value.
	if got := d.Resolve("OOO Pомашка"); got != "ООО Ромашка" {
		t.Errorf("Resolve = %q, want %q", got, "ООО Ромашка")
	}
}

func TestResolve_NotInDictionary(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("ООО Ромашка")})

	if got := d.Resolve("ЗАО Одуванчик"); got != NotInDictionary {
		t.Errorf("Resolve = %q, want %q", got, NotInDictionary)
	}
}

func TestResolve_EmptyInput(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("ООО Ромашка")})

	for _, raw := range []string{"", "   "} {
		if got := d.Resolve(raw); got != "" {
			t.Errorf("Resolve(%q) = %q, want empty", raw, got)
		}
	}
}

func TestResolve_NoReferencesFallsBackToCleaned(t *testing.T) {
	d := Build(nil)

	if d.HasReferences() {
		t.Fatal("expected no references")
	}
	got := d.Resolve("ООО Ромашка Договор №45")
	if got != "ООО Ромашка" {
		t.Errorf("Resolve = %q, want cleaned value %q", got, "ООО Ромашка")
	}
}

func TestBuild_FirstWriteWins(t *testing.T) {
	// Two sources know the same counterparty under different casing; the
	// first loaded display name is canonical.
	d := Build([][]ledger.CounterpartyRef{
		refs("ООО Ромашка"),
		refs("ооо РОМАШКА"),
	})

	if got := d.Resolve("ооо ромашка"); got != "ООО Ромашка" {
		t.Errorf("Resolve = %q, want first-loaded %q", got, "ООО Ромашка")
	}
	if got := d.Resolve("Ромашка"); got != "ООО Ромашка" {
		t.Errorf("Resolve = %q, want %q", got, "ООО Ромашка")
	}
}

func TestBuild_SkipsBlankEntries(t *testing.T) {
	d := Build([][]ledger.CounterpartyRef{refs("", "  ", "ООО Ромашка")})

	if got := d.Resolve("Ромашка"); got != "ООО Ромашка" {
		t.Errorf("Resolve = %q, want %q", got, "ООО Ромашка")
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"ООО \"Ромашка\"", "ооо ромашка"},
		{"Альфа-Банк", "альфа банк"},
		{"  Ёж  и  Уж  ", "еж и уж"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.input); got != c.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestTokenSignature(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"иванов иван", "иван иванов"},
		{"ооо ромашка", "ромашка"},
		{"центр здоровья и красоты", "здоровья красоты центр"},
		{"и в на", ""},
	}
	for _, c := range cases {
		if got := TokenSignature(c.input); got != c.want {
			t.Errorf("TokenSignature(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}
