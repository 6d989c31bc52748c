package capacity

import "testing"

func TestCheckCanAdd(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		max     int
		want    bool
	}{
		{"empty tenant", 0, 10, true},
		{"one slot left", 9, 10, true},
		{"exactly full", 10, 10, false},
		{"over capacity", 11, 10, false},
		{"minimum capacity free", 0, 1, true},
		{"minimum capacity full", 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := Check{CurrentCount: tt.current, MaxUsers: tt.max}
			if got := check.CanAdd(); got != tt.want {
				t.Fatalf("Check{%d/%d}.CanAdd() = %v, want %v", tt.current, tt.max, got, tt.want)
			}
		})
	}
}

func TestCheckCanAddFlipsAtBoundary(t *testing.T) {
	// canAdd is monotonic in the count: true right up to max-1, false
	// from max onward.
	const max = 3
	for count := int64(0); count < max; count++ {
		if !(Check{CurrentCount: count, MaxUsers: max}).CanAdd() {
			t.Fatalf("count %d of %d should admit", count, max)
		}
	}
	for count := int64(max); count < max+3; count++ {
		if (Check{CurrentCount: count, MaxUsers: max}).CanAdd() {
			t.Fatalf("count %d of %d should refuse", count, max)
		}
	}
}

func TestCanAssignToTenant_NoOpReassignment(t *testing.T) {
	// Reassignment to the current tenant never consults the store, so a
	// nil DB handle proves the short-circuit.
	current := uint(4)
	if err := CanAssignToTenant(nil, &current, 4); err != nil {
		t.Fatalf("no-op reassignment must succeed, got %v", err)
	}
}
