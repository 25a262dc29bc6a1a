package conversation

import "testing"

func TestHistoryIsEmpty(t *testing.T) {
	var h History
	if !h.IsEmpty() {
		t.Error("nil history should be empty")
	}
	if !(History{}).IsEmpty() {
		t.Error("zero-length history should be empty")
	}
	if (History{{Role: RoleUser, Content: "hi"}}).IsEmpty() {
		t.Error("non-empty history reported empty")
	}
}

func TestWithSystemPrepends(t *testing.T) {
	h := History{}.WithSystem("be brief")
	if len(h) != 1 || h[0].Role != RoleSystem || h[0].Content != "be brief" {
		t.Fatalf("unexpected history: %+v", h)
	}
	if h.SystemCount() != 1 {
		t.Errorf("SystemCount = %d, want 1", h.SystemCount())
	}
}

func TestAppendDoesNotMutateOriginal(t *testing.T) {
	base := History{{Role: RoleSystem, Content: "s"}}
	grown := base.Append(RoleUser, "hello")

	if len(base) != 1 {
		t.Fatalf("base mutated, len = %d", len(base))
	}
	if len(grown) != 2 || grown[1].Role != RoleUser || grown[1].Content != "hello" {
		t.Fatalf("unexpected grown history: %+v", grown)
	}
}

func TestDropLast(t *testing.T) {
	tests := []struct {
		name string
		in   History
		want int
	}{
		{"empty stays empty", History{}, 0},
		{"single turn dropped", History{{Role: RoleUser, Content: "x"}}, 0},
		{"last of three dropped", History{
			{Role: RoleSystem, Content: "s"},
			{Role: RoleUser, Content: "u"},
			{Role: RoleAssistant, Content: "a"},
		}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.DropLast()
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestOnlySystem(t *testing.T) {
	if !(History{{Role: RoleSystem, Content: "s"}}).OnlySystem() {
		t.Error("lone system message not detected")
	}
	if (History{{Role: RoleUser, Content: "u"}}).OnlySystem() {
		t.Error("lone user message misdetected as system")
	}
	if (History{
		{Role: RoleSystem, Content: "s"},
		{Role: RoleUser, Content: "u"},
	}).OnlySystem() {
		t.Error("system+user misdetected as only-system")
	}
}
