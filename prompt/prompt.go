package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// embeddedPrompts holds the default prompt set shipped in the binary.
//
//go:embed prompts/*.txt
var embeddedPrompts embed.FS

const promptExt = ".txt"

// Loader resolves prompt templates by name. Project files shadow the
// embedded defaults, so teams can tune a single prompt without forking
// the whole set. Parsed templates are cached per loader.
type Loader struct {
	dirs  []string
	cache map[string]*template.Template
	funcs template.FuncMap
}

// NewLoader creates a loader rooted at projectDir. Lookup order:
// .ticketflow/prompts/ in the project, then prompts/, then the
// embedded defaults.
func NewLoader(projectDir string) *Loader {
	return &Loader{
		dirs: []string{
			filepath.Join(projectDir, ".ticketflow", "prompts"),
			filepath.Join(projectDir, "prompts"),
		},
		cache: make(map[string]*template.Template),
		funcs: promptFuncs(),
	}
}

// Load renders the named prompt with no variables.
func (l *Loader) Load(name string) (string, error) {
	return l.LoadWithVars(name, nil)
}

// LoadWithVars renders the named prompt with vars as template data.
func (l *Loader) LoadWithVars(name string, vars map[string]any) (string, error) {
	tmpl, err := l.template(name)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}

// Exists reports whether a prompt resolves, in a project dir or embedded.
func (l *Loader) Exists(name string) bool {
	_, err := l.read(name)
	return err == nil
}

// List returns every resolvable prompt name, project and embedded merged.
func (l *Loader) List() ([]string, error) {
	seen := make(map[string]bool)

	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		collectPromptNames(seen, entries)
	}
	if entries, err := embeddedPrompts.ReadDir("prompts"); err == nil {
		collectPromptNames(seen, entries)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names, nil
}

func collectPromptNames(seen map[string]bool, entries []os.DirEntry) {
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), promptExt) {
			continue
		}
		seen[strings.TrimSuffix(entry.Name(), promptExt)] = true
	}
}

func (l *Loader) template(name string) (*template.Template, error) {
	if tmpl, ok := l.cache[name]; ok {
		return tmpl, nil
	}

	content, err := l.read(name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).Funcs(l.funcs).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}

	l.cache[name] = tmpl
	return tmpl, nil
}

func (l *Loader) read(name string) (string, error) {
	filename := name + promptExt
	for _, dir := range l.dirs {
		if data, err := os.ReadFile(filepath.Join(dir, filename)); err == nil {
			return string(data), nil
		}
	}
	data, err := embeddedPrompts.ReadFile("prompts/" + filename)
	if err != nil {
		return "", fmt.Errorf("prompt not found: %s", name)
	}
	return string(data), nil
}

// promptFuncs is the function set available inside prompt templates.
// Documented in the embedded prompts so override authors can rely on it.
func promptFuncs() template.FuncMap {
	return template.FuncMap{
		"join":    strings.Join,
		"trim":    strings.TrimSpace,
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"title":   cases.Title(language.English).String,
		"indent":  indent,
		"default": defaultValue,
		"quote":   func(s string) string { return fmt.Sprintf("%q", s) },
	}
}

func indent(n int, s string) string {
	if s == "" {
		return s
	}
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// defaultValue substitutes fallback for nil or empty-string values.
// Argument order suits pipelines: {{.x | default "none"}}.
func defaultValue(fallback, value any) any {
	if value == nil {
		return fallback
	}
	if s, ok := value.(string); ok && s == "" {
		return fallback
	}
	return value
}

// Builder assembles the user-input half of a prompt from state. Nodes
// chain sections and lists; empty lists still render their header so
// the model sees that the pipeline looked and found nothing.
type Builder struct {
	parts []string
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends freeform text.
func (b *Builder) Add(text string) *Builder {
	b.parts = append(b.parts, text)
	return b
}

// AddSection appends a markdown section under header.
func (b *Builder) AddSection(header, content string) *Builder {
	b.parts = append(b.parts, fmt.Sprintf("## %s\n\n%s", header, content))
	return b
}

// AddList appends a bulleted list under header.
func (b *Builder) AddList(header string, items []string) *Builder {
	var buf strings.Builder
	if header != "" {
		fmt.Fprintf(&buf, "## %s\n\n", header)
	}
	for _, item := range items {
		fmt.Fprintf(&buf, "- %s\n", item)
	}
	b.parts = append(b.parts, buf.String())
	return b
}

// AddFile appends file content wrapped in tags that survive markdown.
func (b *Builder) AddFile(path, content string) *Builder {
	b.parts = append(b.parts, fmt.Sprintf("<file path=%q>\n%s\n</file>", path, content))
	return b
}

// Build joins the accumulated parts with blank lines.
func (b *Builder) Build() string {
	return strings.Join(b.parts, "\n\n")
}
