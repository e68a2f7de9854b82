package llm

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"

	"github.com/sevigo/code-reviewer/internal/core"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

const (
	promptDir     = "prompts"
	promptExt     = ".prompt"
	defaultFamily = "default"
)

// instructionData is what every persona template can reference.
type instructionData struct {
	MaxCodeLength int
}

// PromptManager holds the reviewer persona for each provider family, read
// from prompts/<family>.prompt. default.prompt serves every family that
// has no file of its own.
type PromptManager struct {
	instructions map[string]string
}

// NewPromptManager renders the embedded persona templates.
func NewPromptManager() (*PromptManager, error) {
	return loadPrompts(promptFiles, promptDir)
}

func loadPrompts(fsys fs.FS, dir string) (*PromptManager, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts directory: %w", err)
	}

	pm := &PromptManager{instructions: make(map[string]string, len(entries))}
	data := instructionData{MaxCodeLength: core.MaxCodeLength}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != promptExt {
			continue
		}
		family := strings.TrimSuffix(name, promptExt)

		raw, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt %s: %w", name, err)
		}

		tmpl, err := template.New(family).Option("missingkey=error").Parse(string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %s: %w", name, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render prompt %s: %w", name, err)
		}
		pm.instructions[family] = strings.TrimSpace(buf.String())
	}

	if _, ok := pm.instructions[defaultFamily]; !ok {
		return nil, fmt.Errorf("prompts directory has no %s%s", defaultFamily, promptExt)
	}
	return pm, nil
}

// SystemInstruction returns the persona sent with every request to a
// provider of the given family.
func (pm *PromptManager) SystemInstruction(kind core.ProviderKind) string {
	if instruction, ok := pm.instructions[string(kind)]; ok {
		return instruction
	}
	return pm.instructions[defaultFamily]
}
