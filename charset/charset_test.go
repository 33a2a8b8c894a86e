package charset

import "testing"

func TestAddRangeContains(t *testing.T) {
	var s Set
	s.AddRange('a', 'f')
	for b := byte('a'); b <= 'f'; b++ {
		if !s.Contains(b) {
			t.Errorf("expected Contains(%q) to be true", b)
		}
	}
	if s.Contains('g') {
		t.Errorf("expected Contains('g') to be false")
	}
}

func TestUnionIntersectDifference(t *testing.T) {
	a := FromRange('a', 'm')
	b := FromRange('g', 'z')

	u := a.Union(b)
	if !u.Contains('a') || !u.Contains('z') || !u.Contains('h') {
		t.Fatalf("union missing expected members")
	}

	i := a.Intersect(b)
	for c := byte('g'); c <= 'm'; c++ {
		if !i.Contains(c) {
			t.Errorf("intersect missing %q", c)
		}
	}
	if i.Contains('a') || i.Contains('z') {
		t.Fatalf("intersect has unexpected members")
	}

	d := a.Difference(b)
	for c := byte('a'); c < 'g'; c++ {
		if !d.Contains(c) {
			t.Errorf("difference missing %q", c)
		}
	}
	if d.Contains('g') {
		t.Errorf("difference should not contain %q", byte('g'))
	}
}

func TestComplement(t *testing.T) {
	s := FromByte('a')
	c := s.Complement()
	if c.Contains('a') {
		t.Fatalf("complement should not contain 'a'")
	}
	if !c.Contains('b') {
		t.Fatalf("complement should contain 'b'")
	}
}

func TestMinMax(t *testing.T) {
	s := FromRange('c', 'f')
	if min, ok := s.Min(); !ok || min != 'c' {
		t.Fatalf("Min() = %v, %v; want 'c', true", min, ok)
	}
	if max, ok := s.Max(); !ok || max != 'f' {
		t.Fatalf("Max() = %v, %v; want 'f', true", max, ok)
	}
	var empty Set
	if _, ok := empty.Min(); ok {
		t.Fatalf("Min() on empty set should be !ok")
	}
}

func TestRanges(t *testing.T) {
	var s Set
	s.AddRange('a', 'c')
	s.AddRange('x', 'z')
	s.Add('e')
	got := s.Ranges()
	want := []Range{{'a', 'c'}, {'e', 'e'}, {'x', 'z'}}
	if len(got) != len(want) {
		t.Fatalf("Ranges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ranges()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMetaBits(t *testing.T) {
	var s Set
	s.AddMeta(MetaBOL)
	s.AddMeta(MetaEOB)
	if !s.ContainsMeta(MetaBOL) || !s.ContainsMeta(MetaEOB) {
		t.Fatalf("expected meta bits set")
	}
	if s.ContainsMeta(MetaIND) {
		t.Fatalf("expected MetaIND unset")
	}
	if !s.HasMeta() {
		t.Fatalf("expected HasMeta() true")
	}
}

func TestSingle(t *testing.T) {
	s := FromByte('q')
	b, ok := s.Single()
	if !ok || b != 'q' {
		t.Fatalf("Single() = %v, %v; want 'q', true", b, ok)
	}
	multi := FromRange('a', 'b')
	if _, ok := multi.Single(); ok {
		t.Fatalf("Single() on multi-byte range should be !ok")
	}
}
