package assistant

import (
	"strings"
	"testing"
)

func TestBuildPreamble(t *testing.T) {
	tests := []struct {
		name         string
		instructions string
		kb           string
		want         func(t *testing.T, got string)
	}{
		{
			name: "both empty yields empty",
			want: func(t *testing.T, got string) {
				if got != "" {
					t.Errorf("got %q, want empty", got)
				}
			},
		},
		{
			name:         "instructions only pass through verbatim",
			instructions: "Be concise.",
			want: func(t *testing.T, got string) {
				if got != "Be concise." {
					t.Errorf("got %q", got)
				}
			},
		},
		{
			name: "kb only gets the delimiters",
			kb:   "The store opens at 9am.",
			want: func(t *testing.T, got string) {
				if !strings.Contains(got, "---BEGIN KNOWLEDGE BASE---") {
					t.Error("missing begin marker")
				}
				if !strings.Contains(got, "The store opens at 9am.") {
					t.Error("missing kb content")
				}
				if !strings.HasSuffix(got, "---END KNOWLEDGE BASE---") {
					t.Error("missing end marker")
				}
			},
		},
		{
			name:         "instructions come before the kb block",
			instructions: "Be concise.",
			kb:           "The store opens at 9am.",
			want: func(t *testing.T, got string) {
				if !strings.HasPrefix(got, "Be concise.\n\n") {
					t.Errorf("instructions not first: %q", got)
				}
				if strings.Index(got, "Be concise.") > strings.Index(got, "---BEGIN KNOWLEDGE BASE---") {
					t.Error("kb block before instructions")
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, BuildPreamble(tt.instructions, tt.kb))
		})
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindOK, "ok"},
		{KindConfigError, "config_error"},
		{KindMalformed, "malformed_response"},
		{KindTransient, "transient_error"},
		{KindStorage, "storage_error"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
