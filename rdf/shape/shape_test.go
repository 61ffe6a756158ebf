package shape

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/janus-rdf/rdf"
	"github.com/wbrown/janus-rdf/rdf/store"
)

// fixture is a store with a small HR-style graph plus the well-known ids
// the tests constrain.
type fixture struct {
	in *rdf.Interner
	st *store.Store

	typeOf     rdf.ID
	employee   rdf.ID
	contractor rdf.ID
	hasManager rdf.ID
	hasBadge   rdf.ID
	hasSSH     rdf.ID
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	in := rdf.NewInterner()
	f := &fixture{
		in:         in,
		typeOf:     in.MustIntern("rdf:type"),
		employee:   in.MustIntern("Employee"),
		contractor: in.MustIntern("Contractor"),
		hasManager: in.MustIntern("hasManager"),
		hasBadge:   in.MustIntern("hasBadge"),
		hasSSH:     in.MustIntern("hasSSHKey"),
	}
	f.st = store.New(in)
	return f
}

func (f *fixture) add(t testing.TB, tr rdf.Triple) {
	t.Helper()
	if err := f.st.Add(tr); err != nil {
		t.Fatalf("add %v: %v", tr, err)
	}
}

func TestMinCountViolation(t *testing.T) {
	f := newFixture(t)
	dilbert := f.in.MustIntern("dilbert")
	f.add(t, rdf.Triple{S: dilbert, P: f.typeOf, O: f.employee})
	// Typed Employee, but no hasManager triple.

	sh := NewBuilder("EmployeeShape", f.typeOf).
		TargetClass(f.employee).
		Count(f.hasManager, 1, -1).
		Compile()
	v := NewValidator(f.st, sh)

	results := v.Validate(dilbert)
	require.Len(t, results, 1)
	r := results[0]
	assert.True(t, r.Applicable)
	assert.False(t, r.Conforms, "missing hasManager must violate, not silently pass")
	require.Len(t, r.Violations, 1)
	assert.Equal(t, KindMinCount, r.Violations[0].Kind)
	assert.Equal(t, f.hasManager, r.Violations[0].Predicate)
	assert.Equal(t, 0, r.Violations[0].Got)
	assert.Equal(t, 1, r.Violations[0].Want)
}

func TestNonApplicableIsVacuouslySatisfied(t *testing.T) {
	f := newFixture(t)
	visitor := f.in.MustIntern("visitor")
	f.add(t, rdf.Triple{S: visitor, P: f.typeOf, O: f.contractor})

	sh := NewBuilder("EmployeeShape", f.typeOf).
		TargetClass(f.employee).
		Count(f.hasManager, 1, -1).
		Compile()
	v := NewValidator(f.st, sh)

	r := v.Validate(visitor)[0]
	assert.False(t, r.Applicable)
	assert.True(t, r.Conforms, "non-applicable shapes conform vacuously")
	assert.Empty(t, r.Violations)
}

func TestRequiredAndForbidden(t *testing.T) {
	f := newFixture(t)
	alice := f.in.MustIntern("alice")
	boss := f.in.MustIntern("boss")
	f.add(t, rdf.Triple{S: alice, P: f.typeOf, O: f.employee})
	f.add(t, rdf.Triple{S: alice, P: f.hasManager, O: boss})
	f.add(t, rdf.Triple{S: alice, P: f.hasSSH, O: f.in.MustIntern("key-1")})

	sh := NewBuilder("BadgeShape", f.typeOf).
		TargetClass(f.employee).
		Require(f.hasManager, f.hasBadge).
		Forbid(f.hasSSH).
		Compile()
	v := NewValidator(f.st, sh)

	r := v.Validate(alice)[0]
	assert.False(t, r.Conforms)
	// Short-circuit order: the required failure reports before the
	// forbidden predicate is ever examined.
	require.NotEmpty(t, r.Violations)
	assert.Equal(t, KindRequired, r.Violations[0].Kind)
	assert.Equal(t, f.hasBadge, r.Violations[0].Predicate)

	// Fix the required side; now the forbidden predicate trips.
	f.add(t, rdf.Triple{S: alice, P: f.hasBadge, O: f.in.MustIntern("badge-7")})
	r = v.Validate(alice)[0]
	assert.False(t, r.Conforms)
	require.NotEmpty(t, r.Violations)
	assert.Equal(t, KindForbidden, r.Violations[0].Kind)
	assert.Equal(t, f.hasSSH, r.Violations[0].Predicate)
}

func TestMaxCount(t *testing.T) {
	f := newFixture(t)
	bob := f.in.MustIntern("bob")
	f.add(t, rdf.Triple{S: bob, P: f.typeOf, O: f.employee})
	f.add(t, rdf.Triple{S: bob, P: f.hasManager, O: f.in.MustIntern("m1")})
	f.add(t, rdf.Triple{S: bob, P: f.hasManager, O: f.in.MustIntern("m2")})

	sh := NewBuilder("SingleManager", f.typeOf).
		TargetClass(f.employee).
		Count(f.hasManager, 1, 1).
		Compile()
	r := NewValidator(f.st, sh).Validate(bob)[0]
	assert.False(t, r.Conforms)
	require.Len(t, r.Violations, 1)
	assert.Equal(t, KindMaxCount, r.Violations[0].Kind)
	assert.Equal(t, 2, r.Violations[0].Got)
}

func TestCombinators(t *testing.T) {
	f := newFixture(t)
	carol := f.in.MustIntern("carol")
	f.add(t, rdf.Triple{S: carol, P: f.typeOf, O: f.employee})
	f.add(t, rdf.Triple{S: carol, P: f.hasBadge, O: f.in.MustIntern("badge-1")})

	hasBadge := NewBuilder("HasBadge", f.typeOf).Require(f.hasBadge).Compile()
	hasSSH := NewBuilder("HasSSH", f.typeOf).Require(f.hasSSH).Compile()

	or := NewBuilder("Either", f.typeOf).Combine(CombOr, hasBadge, hasSSH).Compile()
	assert.True(t, NewValidator(f.st, or).Validate(carol)[0].Conforms)

	and := NewBuilder("Both", f.typeOf).Combine(CombAnd, hasBadge, hasSSH).Compile()
	r := NewValidator(f.st, and).Validate(carol)[0]
	assert.False(t, r.Conforms)
	require.Len(t, r.Violations, 1)
	assert.Equal(t, KindCombinator, r.Violations[0].Kind)

	not := NewBuilder("Neither", f.typeOf).Combine(CombNot, hasSSH).Compile()
	assert.True(t, NewValidator(f.st, not).Validate(carol)[0].Conforms)

	xone := NewBuilder("ExactlyOne", f.typeOf).Combine(CombExactlyOne, hasBadge, hasSSH).Compile()
	assert.True(t, NewValidator(f.st, xone).Validate(carol)[0].Conforms)

	// With both present, exactly-one fails.
	f.add(t, rdf.Triple{S: carol, P: f.hasSSH, O: f.in.MustIntern("key-9")})
	assert.False(t, NewValidator(f.st, xone).Validate(carol)[0].Conforms)
}

func TestBuilderReuseDoesNotAliasCompiledShape(t *testing.T) {
	f := newFixture(t)
	b := NewBuilder("S", f.typeOf).Require(f.hasBadge)
	first := b.Compile()
	b.Require(f.hasSSH)
	second := b.Compile()

	dave := f.in.MustIntern("dave")
	f.add(t, rdf.Triple{S: dave, P: f.hasBadge, O: f.in.MustIntern("badge-2")})

	assert.True(t, NewValidator(f.st, first).Validate(dave)[0].Conforms,
		"first compile must not see constraints added later")
	assert.False(t, NewValidator(f.st, second).Validate(dave)[0].Conforms)
}

func TestValidateAllMatchesSequential(t *testing.T) {
	f := newFixture(t)
	var subjects []rdf.ID
	for i := 0; i < 200; i++ {
		s := f.in.MustIntern(fmt.Sprintf("emp-%d", i))
		f.add(t, rdf.Triple{S: s, P: f.typeOf, O: f.employee})
		if i%3 != 0 {
			f.add(t, rdf.Triple{S: s, P: f.hasManager, O: f.in.MustIntern(fmt.Sprintf("mgr-%d", i%10))})
		}
		subjects = append(subjects, s)
	}
	sh := NewBuilder("EmployeeShape", f.typeOf).
		TargetClass(f.employee).
		Count(f.hasManager, 1, -1).
		Compile()
	v := NewValidator(f.st, sh)

	parallel, err := v.ValidateAll(context.Background(), subjects, 8)
	require.NoError(t, err)
	require.Len(t, parallel, len(subjects))
	for i, s := range subjects {
		want := v.Validate(s)
		assert.Equal(t, want, parallel[i], "subject %d", s)
	}
}

func TestAddValidated(t *testing.T) {
	f := newFixture(t)
	sh := NewBuilder("EmployeeShape", f.typeOf).
		TargetClass(f.employee).
		Count(f.hasManager, 1, -1).
		Compile()
	v := NewValidator(f.st, sh)

	eve := f.in.MustIntern("eve")
	boss := f.in.MustIntern("boss")

	// Typing eve as Employee before she has a manager violates on commit.
	err := AddValidated(f.st, v, rdf.Triple{S: eve, P: f.typeOf, O: f.employee})
	require.Error(t, err)

	// After the manager triple, the same commit path passes.
	require.NoError(t, AddValidated(f.st, v, rdf.Triple{S: eve, P: f.hasManager, O: boss}))
	require.NoError(t, AddValidated(f.st, v, rdf.Triple{S: eve, P: f.typeOf, O: f.employee}))
}

func TestReportMentionsShapeAndConstraint(t *testing.T) {
	f := newFixture(t)
	dilbert := f.in.MustIntern("dilbert")
	f.add(t, rdf.Triple{S: dilbert, P: f.typeOf, O: f.employee})
	sh := NewBuilder("EmployeeShape", f.typeOf).
		TargetClass(f.employee).
		Count(f.hasManager, 1, -1).
		Compile()

	out := Report(NewValidator(f.st, sh).Validate(dilbert))
	assert.Contains(t, out, "EmployeeShape")
	assert.Contains(t, out, "min-count")
}
