package reg

import "testing"

func TestRegistryRejectsStaleLoads(t *testing.T) {
	t.Parallel()

	r := New[string]()
	if _, _, ok := r.Get(1); ok {
		t.Fatalf("empty registry should miss")
	}

	v := r.Version(1)
	r.Invalidate(1)
	if r.SetIfVersion(1, v, "stale") {
		t.Fatalf("load started before invalidation must not be stored")
	}

	v = r.Version(1)
	if !r.SetIfVersion(1, v, "fresh") {
		t.Fatalf("expected store to succeed")
	}
	got, _, ok := r.Get(1)
	if !ok || got != "fresh" {
		t.Fatalf("unexpected value %q ok=%v", got, ok)
	}

	r.Invalidate(1)
	if _, _, ok := r.Get(1); ok {
		t.Fatalf("invalidated key should miss")
	}
	if _, _, ok := r.Get(2); ok {
		t.Fatalf("other keys must stay untouched")
	}
}
