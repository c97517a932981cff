package mcpserver

import (
	"bytes"
	"context"
	"embed"
	"path"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	logging "gopkg.in/op/go-logging.v1"
	"gopkg.in/yaml.v3"
)

var log = logging.MustGetLogger("mcp")

//go:embed prompts/*.md
var promptFiles embed.FS

// promptArgument declares a {{name}} placeholder in a prompt body.
type promptArgument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
}

// promptFrontmatter is the YAML header of a prompt file.
type promptFrontmatter struct {
	Description string           `yaml:"description"`
	Arguments   []promptArgument `yaml:"arguments"`
}

// promptDefaults fill placeholders the caller left empty.
var promptDefaults = map[string]string{
	"fail_on": "high",
	"root":    "the repository root",
}

// reviewPrompt is a parsed prompt file.
type reviewPrompt struct {
	name string
	meta promptFrontmatter
	body string
}

// loadPrompts parses every embedded prompt, named after its file.
func loadPrompts() ([]reviewPrompt, error) {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil, err
	}

	var prompts []reviewPrompt
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFiles.ReadFile(path.Join("prompts", entry.Name()))
		if err != nil {
			return nil, err
		}
		meta, body := parseFrontmatter(content)
		prompts = append(prompts, reviewPrompt{
			name: strings.TrimSuffix(entry.Name(), ".md"),
			meta: meta,
			body: body,
		})
	}
	return prompts, nil
}

func (s *Server) registerPrompts() {
	prompts, err := loadPrompts()
	if err != nil {
		log.Errorf("loading prompts: %v", err)
		return
	}
	for _, p := range prompts {
		args := make([]*mcp.PromptArgument, len(p.meta.Arguments))
		for i, a := range p.meta.Arguments {
			args[i] = &mcp.PromptArgument{Name: a.Name, Description: a.Description, Required: a.Required}
		}
		s.server.AddPrompt(&mcp.Prompt{
			Name:        p.name,
			Description: p.meta.Description,
			Arguments:   args,
		}, p.handler())
	}
}

// parseFrontmatter splits a "---" delimited YAML header from the body.
// Content without a valid header is returned whole as the body.
func parseFrontmatter(content []byte) (promptFrontmatter, string) {
	var meta promptFrontmatter
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return meta, string(content)
	}

	rest := content[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end == -1 {
		return meta, string(content)
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return promptFrontmatter{}, string(content)
	}
	return meta, strings.TrimPrefix(string(rest[end+5:]), "\n")
}

// render substitutes {{name}} placeholders. Missing values fall back to
// promptDefaults, then to an empty string.
func (p reviewPrompt) render(values map[string]string) string {
	out := p.body
	for _, a := range p.meta.Arguments {
		v := strings.TrimSpace(values[a.Name])
		if v == "" {
			v = promptDefaults[a.Name]
		}
		out = strings.ReplaceAll(out, "{{"+a.Name+"}}", v)
	}
	return out
}

func (p reviewPrompt) handler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		var values map[string]string
		if req != nil && req.Params != nil {
			values = req.Params.Arguments
		}
		return &mcp.GetPromptResult{
			Description: p.meta.Description,
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: p.render(values)},
				},
			},
		}, nil
	}
}
