package markdown

import (
	"testing"
)

func TestTitle_Frontmatter(t *testing.T) {
	input := []byte("---\ntitle: 週次レポート\ntags:\n  - todo\n---\n# Heading\nBody.\n")
	if got := Title(input); got != "週次レポート" {
		t.Errorf("title = %q, want frontmatter title", got)
	}
}

func TestTitle_Heading(t *testing.T) {
	input := []byte("Intro line\n\n# Sticky notes\n- [ ] one\n")
	if got := Title(input); got != "Sticky notes" {
		t.Errorf("title = %q, want %q", got, "Sticky notes")
	}
}

func TestTitle_InvalidYAMLFallsBackToBody(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\n---\n# Fallback\n")
	if got := Title(input); got != "Fallback" {
		t.Errorf("title = %q, want %q", got, "Fallback")
	}
}

func TestTitle_None(t *testing.T) {
	if got := Title([]byte("just text")); got != "" {
		t.Errorf("title = %q, want empty", got)
	}
}

func TestSuggestFileName(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		want     string
	}{
		{name: "explicit name kept", filename: "report.md", content: "# Other", want: "report.md"},
		{name: "explicit name without ext kept", filename: "notes", content: "", want: "notes"},
		{name: "from heading", content: "# Title\n", want: "Title.md"},
		{name: "unsafe characters", content: "# a/b: c?\n", want: "a-b- c.md"},
		{name: "default", content: "no heading", want: "report.md"},
		{name: "title already has extension", content: "# notes.MD\n", want: "notes.MD"},
		{name: "blank filename", filename: "   ", content: "# Weekly\n", want: "Weekly.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestFileName(tt.filename, []byte(tt.content))
			if got != tt.want {
				t.Errorf("SuggestFileName = %q, want %q", got, tt.want)
			}
		})
	}
}
