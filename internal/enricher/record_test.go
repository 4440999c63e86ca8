package enricher

import "testing"

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "golang", "golang"},
		{"at prefix", "@golang", "golang"},
		{"tme link", "t.me/golang", "golang"},
		{"https link", "https://t.me/GoLang", "golang"},
		{"http link", "http://t.me/golang", "golang"},
		{"mixed case", "GoLangNews", "golangnews"},
		{"whitespace", "  @golang  ", "golang"},
		{"empty", "", ""},
		{"bare at", "@", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeUsername(tt.input); got != tt.want {
				t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGroupRecordRef(t *testing.T) {
	rec := GroupRecord{ID: 42, Username: "@Some_Group"}
	ref := rec.Ref()
	if ref.ID != 42 {
		t.Errorf("expected id 42, got %d", ref.ID)
	}
	if ref.Username != "some_group" {
		t.Errorf("expected normalized username, got %q", ref.Username)
	}

	empty := GroupRecord{Title: "title only"}
	if !empty.Ref().IsZero() {
		t.Error("record without id or username should produce a zero ref")
	}
}
