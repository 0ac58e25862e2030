package cache

import (
	"regexp"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		basePath, key, want string
	}{
		{"/cache", "a/b", "/cache/a_b"},
		{"/cache", "plain", "/cache/plain"},
		{"/cache", "user:42@example.com", "/cache/user_42_example.com"},
		{"/cache", "with space", "/cache/with_space"},
		{"/cache", "a.b-c_d", "/cache/a.b_c_d"},
		{"/cache", "a-b", "/cache/a_b"},
		{"/my-app", "x", "/my_app/x"},
		{"/app/cache", "x", "/app/cache/x"},
		{"/my cache", "x", "/my_cache/x"},
		{"", "x", "/x"},
		{"/cache", "héllo", "/cache/h_llo"},
		{"/cache", "日本", "/cache/__"},
		{"/cache", "a\x00b", "/cache/a_b"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.basePath, tt.key); got != tt.want {
			t.Errorf("Sanitize(%q, %q) = %q, want %q", tt.basePath, tt.key, got, tt.want)
		}
	}
}

func TestSanitizeCharacterClass(t *testing.T) {
	legal := regexp.MustCompile(`^[A-Za-z0-9_./]+$`)
	keys := []string{
		"a/b/c", "\xff\xfe", "tab\there", "emoji 🚀", "../../etc/passwd",
		"q?x=1&y=2", "semi;colon", `back\slash`, "~tilde", "{json}",
	}
	for _, key := range keys {
		got := Sanitize("/cache", key)
		if !legal.MatchString(got) {
			t.Errorf("Sanitize(%q) = %q contains illegal characters", key, got)
		}
		if !ValidName(got) {
			t.Errorf("ValidName(Sanitize(%q)) = false", key)
		}
		if again := Sanitize("/cache", key); again != got {
			t.Errorf("Sanitize(%q) not deterministic: %q then %q", key, got, again)
		}
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"/cache/a_b", true},
		{"plain", true},
		{"", false},
		{"/cache/a b", false},
		{"/cache/ü", false},
		{"/cache/a-b", false},
	}
	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
