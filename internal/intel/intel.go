// Package intel is the asynchronous file-intelligence lookup. It fetches
// one enrichment report per encounter from Gemini; the report is
// display-only and a failed lookup never touches combat or story state.
package intel

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/filebane/internal/models"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/analyze_subject.txt
var analyzeSubjectPrompt string

type Engine struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewEngine(ctx context.Context, apiKey string) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel("gemini-2.5-flash")
	return &Engine{
		client: client,
		model:  model,
	}, nil
}

func (e *Engine) Close() {
	e.client.Close()
}

// Analyze asks the model for an intel report on one subject. The prompt
// requests fenced YAML, which we strip and parse the same way the world
// generator did in earlier prototypes.
func (e *Engine) Analyze(ctx context.Context, sub models.Subject) (*models.IntelReport, error) {
	tmpl, err := template.New("analyze_subject").Parse(analyzeSubjectPrompt)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	data := struct {
		ID         string
		Name       string
		SizeBytes  int64
		Categories []models.Category
		Lore       string
	}{
		ID:         sub.ID,
		Name:       sub.Name,
		SizeBytes:  sub.SizeBytes,
		Categories: sub.Categories,
		Lore:       sub.Lore,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	resp, err := e.model.GenerateContent(ctx, genai.Text(buf.String()))
	if err != nil {
		return nil, err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content returned from Gemini")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from Gemini")
	}

	cleanYAML := strings.TrimSpace(string(text))
	cleanYAML = strings.TrimPrefix(cleanYAML, "```yaml")
	cleanYAML = strings.TrimPrefix(cleanYAML, "```")
	cleanYAML = strings.TrimSuffix(cleanYAML, "```")

	var report models.IntelReport
	if err := yaml.Unmarshal([]byte(cleanYAML), &report); err != nil {
		return nil, fmt.Errorf("failed to parse intel YAML: %v\nOutput was: %s", err, cleanYAML)
	}

	return &report, nil
}
