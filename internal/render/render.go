// Package render substitutes a consolidated order's field map into a
// placeholder template.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrTemplateUnavailable means the collaborator holding the confirmation
// template could not supply it. Fatal for the current generation.
var ErrTemplateUnavailable = errors.New("template unavailable")

var placeholderRE = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Render replaces every {{ fieldName }} marker with the field's value,
// looked up on the normalized, case-folded key. Unknown placeholders render
// as the empty string; everything else passes through untouched. Pure and
// idempotent: no markers survive a pass, so re-rendering is a no-op.
func Render(template string, fields map[string]string) string {
	index := make(map[string]string, len(fields))
	for k, v := range fields {
		index[foldKey(k)] = v
	}
	return placeholderRE.ReplaceAllStringFunc(template, func(m string) string {
		name := placeholderRE.FindStringSubmatch(m)[1]
		return index[foldKey(name)]
	})
}

func foldKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// TemplateProvider supplies the confirmation document template.
type TemplateProvider interface {
	Template(ctx context.Context) (string, error)
}

// FileProvider reads the template from disk.
type FileProvider struct {
	Path string
}

func (p FileProvider) Template(_ context.Context) (string, error) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}
	return string(b), nil
}

// StaticProvider serves a fixed template string, mostly for tests and the
// built-in default document.
type StaticProvider struct {
	Text string
}

func (p StaticProvider) Template(_ context.Context) (string, error) {
	if p.Text == "" {
		return "", ErrTemplateUnavailable
	}
	return p.Text, nil
}

// Exporter pushes a rendered document to wherever confirmations are kept.
// Remote delivery is an external collaborator; the repo ships only the local
// directory implementation used by the CLI.
type Exporter interface {
	Export(ctx context.Context, name string, doc []byte) error
}

// DirExporter writes rendered documents into a local directory.
type DirExporter struct {
	Dir string
}

func (e DirExporter) Export(_ context.Context, name string, doc []byte) error {
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(e.Dir, name), doc, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	return nil
}
