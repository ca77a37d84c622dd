package param

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScope_Shadowing(t *testing.T) {
	var empty Scope

	outer := empty.PushMap("global", map[string]string{"speed": "10", "lane": "1"})
	inner := outer.PushMap("variant", map[string]string{"speed": "20"})

	tests := []struct {
		scope Scope
		name  string
		want  string
		found bool
	}{
		{inner, "speed", "20", true},
		{inner, "lane", "1", true},
		{outer, "speed", "10", true},
		{inner, "missing", "", false},
		{empty, "speed", "", false},
	}

	for _, tt := range tests {
		got, ok := tt.scope.Lookup(tt.name)
		if got != tt.want || ok != tt.found {
			t.Errorf("%v.Lookup(%q) = %q, %v; want %q, %v",
				tt.scope, tt.name, got, ok, tt.want, tt.found)
		}
	}
}

func TestScope_PushDoesNotMutate(t *testing.T) {
	base := Scope{}.PushMap("base", map[string]string{"a": "1"})

	_ = base.PushMap("x", map[string]string{"a": "2", "b": "3"})
	_ = base.PushAssignments("y", []Assignment{{"a", "4"}})

	if diff := cmp.Diff(map[string]string{"a": "1"}, base.Flatten()); diff != "" {
		t.Errorf("base scope changed (-want +got):\n%s", diff)
	}

	if base.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", base.Depth())
	}
}

func TestScope_FlattenAndLabels(t *testing.T) {
	s := Scope{}.
		PushMap("global", map[string]string{"a": "1", "b": "2"}).
		PushAssignments("catalog:VehicleCatalog/car", []Assignment{{"b", "3"}, {"c", "4"}})

	want := map[string]string{"a": "1", "b": "3", "c": "4"}
	if diff := cmp.Diff(want, s.Flatten()); diff != "" {
		t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"a", "b", "c"}, s.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"global", "catalog:VehicleCatalog/car"}, s.Labels()); diff != "" {
		t.Errorf("Labels() mismatch (-want +got):\n%s", diff)
	}
}

func TestScope_ConcurrentExtension(t *testing.T) {
	base := Scope{}.PushMap("global", map[string]string{"speed": "0"})

	var wg sync.WaitGroup

	results := make([]string, 32)
	for i := range results {
		wg.Go(func() {
			s := base.PushMap("variant", map[string]string{"speed": string(rune('a' + i%26))})
			results[i], _ = s.Lookup("speed")
		})
	}

	wg.Wait()

	for i, got := range results {
		if want := string(rune('a' + i%26)); got != want {
			t.Errorf("results[%d] = %q, want %q", i, got, want)
		}
	}

	if got, _ := base.Lookup("speed"); got != "0" {
		t.Errorf("base scope changed: speed = %q", got)
	}
}
