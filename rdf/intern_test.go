package rdf

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestInternDeterminism(t *testing.T) {
	in := NewInterner()

	a1, err := in.Intern("Alice")
	if err != nil {
		t.Fatalf("intern failed: %v", err)
	}
	a2, err := in.Intern("Alice")
	if err != nil {
		t.Fatalf("re-intern failed: %v", err)
	}
	if a1 != a2 {
		t.Errorf("interning the same string twice gave %d and %d", a1, a2)
	}

	b, _ := in.Intern("Bob")
	if b == a1 {
		t.Errorf("distinct strings share id %d", b)
	}
}

func TestInternDenseSequentialIDs(t *testing.T) {
	in := NewInterner()
	for i := 0; i < 100; i++ {
		id, err := in.Intern(fmt.Sprintf("sym-%d", i))
		if err != nil {
			t.Fatalf("intern %d: %v", i, err)
		}
		if id != ID(i) {
			t.Fatalf("expected dense id %d, got %d", i, id)
		}
	}
	if in.Len() != 100 {
		t.Errorf("expected 100 entries, got %d", in.Len())
	}
}

func TestInternResolveRoundtrip(t *testing.T) {
	in := NewInterner()
	words := []string{"Alice", "knows", "Bob", "", "with spaces", "ünïcodé"}
	for _, w := range words {
		id, err := in.Intern(w)
		if err != nil {
			t.Fatalf("intern %q: %v", w, err)
		}
		got, err := in.Resolve(id)
		if err != nil {
			t.Fatalf("resolve %d: %v", id, err)
		}
		if got != w {
			t.Errorf("resolve(%d) = %q, want %q", id, got, w)
		}
	}
}

func TestInternGrowthPreservesEntries(t *testing.T) {
	in := NewInterner()
	// Far past the initial slot count to force several rehashes.
	const n = 10000
	ids := make([]ID, n)
	for i := 0; i < n; i++ {
		ids[i] = in.MustIntern(fmt.Sprintf("entry-%d", i))
	}
	for i := 0; i < n; i++ {
		id, ok := in.Lookup(fmt.Sprintf("entry-%d", i))
		if !ok || id != ids[i] {
			t.Fatalf("entry-%d: lookup gave (%d,%v), want %d", i, id, ok, ids[i])
		}
	}
}

func TestInternFrozen(t *testing.T) {
	in := NewInterner()
	alice := in.MustIntern("Alice")
	in.Freeze()

	if !in.Frozen() {
		t.Fatal("Frozen() false after Freeze")
	}

	// Existing entries still intern and resolve.
	got, err := in.Intern("Alice")
	if err != nil || got != alice {
		t.Fatalf("frozen intern of known string: (%d, %v)", got, err)
	}

	// Unseen strings fail fast.
	if _, err := in.Intern("Mallory"); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("frozen intern of new string: got %v, want ErrUnknownSymbol", err)
	}
}

func TestResolveUnknownID(t *testing.T) {
	in := NewInterner()
	in.MustIntern("only")
	if _, err := in.Resolve(42); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("resolve of unassigned id: got %v, want ErrUnknownSymbol", err)
	}
}

func TestLookupDoesNotInsert(t *testing.T) {
	in := NewInterner()
	if _, ok := in.Lookup("ghost"); ok {
		t.Fatal("lookup of absent string returned ok")
	}
	if in.Len() != 0 {
		t.Errorf("lookup inserted an entry: len = %d", in.Len())
	}
}

func BenchmarkInternExisting(b *testing.B) {
	in := NewInterner()
	for i := 0; i < 1024; i++ {
		in.MustIntern(fmt.Sprintf(":attr/field-%d", i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = in.Intern(":attr/field-512")
	}
}

func BenchmarkInternNew(b *testing.B) {
	in := NewInterner()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = in.Intern(fmt.Sprintf("sym-%d", i))
	}
}
