package profile

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/divyampandey/pixel-llm-server-go/internal/prompt"
)

//go:embed facts/*.yml prompts/*.yml
var profileFS embed.FS

// Section is one group of profile facts (education, projects, ...).
type Section struct {
	Name  string
	Facts []string
}

// Profile holds the embedded persona facts and the prebuilt system
// prompt that grounds every Gemini call.
type Profile struct {
	sections     []Section
	systemPrompt string
}

// Load reads the embedded facts and prompt files and renders the
// system prompt once. Missing or empty facts are an error: the persona
// is useless without grounding.
func Load() (*Profile, error) {
	sections, err := loadSections()
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("no profile facts loaded")
	}

	bundle, err := prompt.LoadBundle(profileFS, "prompts", "profile")
	if err != nil {
		return nil, err
	}
	chat, err := bundle.Prompt("chat")
	if err != nil {
		return nil, err
	}
	persona, err := prompt.Field(chat, "persona", "chat.persona")
	if err != nil {
		return nil, err
	}
	style, err := prompt.Field(chat, "style", "chat.style")
	if err != nil {
		return nil, err
	}

	return &Profile{
		sections:     sections,
		systemPrompt: renderSystemPrompt(persona, style, sections),
	}, nil
}

// SystemPrompt returns the rendered persona system prompt.
func (p *Profile) SystemPrompt() string {
	return p.systemPrompt
}

// Sections returns the loaded fact sections in stable order.
func (p *Profile) Sections() []Section {
	return p.sections
}

func loadSections() ([]Section, error) {
	paths, err := fs.Glob(profileFS, "facts/*.yml")
	if err != nil {
		return nil, fmt.Errorf("glob facts: %w", err)
	}

	merged := make(map[string][]string)
	for _, path := range paths {
		data, err := fs.ReadFile(profileFS, path)
		if err != nil {
			return nil, fmt.Errorf("read facts file: %w", err)
		}
		var raw map[string][]string
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse facts yaml %s: %w", path, err)
		}
		for name, facts := range raw {
			for _, fact := range facts {
				fact = strings.TrimSpace(fact)
				if fact == "" {
					continue
				}
				merged[name] = append(merged[name], fact)
			}
		}
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		sections = append(sections, Section{Name: name, Facts: merged[name]})
	}
	return sections, nil
}

func renderSystemPrompt(persona, style string, sections []Section) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(persona))
	builder.WriteString("\n\n<profile>\n")
	for _, section := range sections {
		builder.WriteString(prompt.WrapXML(section.Name, strings.Join(section.Facts, "; ")))
		builder.WriteString("\n")
	}
	builder.WriteString("</profile>\n\n")
	builder.WriteString(strings.TrimSpace(style))
	return builder.String()
}
