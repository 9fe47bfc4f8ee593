package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoader_EmbeddedPrompts(t *testing.T) {
	l := NewLoader(t.TempDir())

	names := []string{
		"classify", "extract", "synthesize", "draft", "enrich",
		"review_business", "review_qa", "review_design",
	}
	for _, name := range names {
		if !l.Exists(name) {
			t.Errorf("embedded prompt %q missing", name)
			continue
		}
		content, err := l.Load(name)
		if err != nil {
			t.Errorf("Load(%q) error: %v", name, err)
		}
		if strings.TrimSpace(content) == "" {
			t.Errorf("prompt %q is empty", name)
		}
	}

	if l.Exists("no-such-prompt") {
		t.Error("unknown prompt reported as existing")
	}
}

func TestLoader_ProjectOverride(t *testing.T) {
	dir := t.TempDir()
	promptDir := filepath.Join(dir, ".ticketflow", "prompts")
	if err := os.MkdirAll(promptDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(promptDir, "classify.txt"), []byte("custom classify prompt"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir)
	content, err := l.Load("classify")
	if err != nil {
		t.Fatal(err)
	}
	if content != "custom classify prompt" {
		t.Errorf("Load() = %q, project prompts must shadow embedded ones", content)
	}

	// Other prompts still fall back to the embedded set.
	if !l.Exists("extract") {
		t.Error("fallback to embedded prompts broken")
	}
}

func TestLoader_TemplateVars(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "prompts"), 0o755); err != nil {
		t.Fatal(err)
	}
	tmpl := "Project {{.project | upper}}: {{.note | default \"none\"}}"
	if err := os.WriteFile(filepath.Join(dir, "prompts", "greeting.txt"), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir)
	got, err := l.LoadWithVars("greeting", map[string]any{"project": "eng", "note": ""})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Project ENG: none" {
		t.Errorf("LoadWithVars() = %q", got)
	}
}

func TestLoader_List(t *testing.T) {
	l := NewLoader(t.TempDir())
	names, err := l.List()
	if err != nil {
		t.Fatal(err)
	}

	found := make(map[string]bool, len(names))
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"classify", "draft", "review_qa"} {
		if !found[want] {
			t.Errorf("List() missing %q, got %v", want, names)
		}
	}
}

func TestBuilder(t *testing.T) {
	got := NewBuilder().
		Add("intro").
		AddSection("Input", "some text").
		AddList("Items", []string{"one", "two"}).
		Build()

	want := "intro\n\n## Input\n\nsome text\n\n## Items\n\n- one\n- two\n"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

func TestBuilder_AddFile(t *testing.T) {
	got := NewBuilder().AddFile("notes.md", "content").Build()
	if !strings.Contains(got, `<file path="notes.md">`) || !strings.Contains(got, "content") {
		t.Errorf("Build() = %q", got)
	}
}
