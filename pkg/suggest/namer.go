package suggest

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/teilomillet/gollm"
	"github.com/teilomillet/gollm/llm"

	"github.com/b/tabsort/pkg/browser"
)

// Namer asks an LLM for friendlier cluster titles.
type Namer struct {
	client llm.LLM
}

// NewNamer creates the LLM client. The API key falls back to the provider's
// environment variable; ollama needs none.
func NewNamer(provider, model, apiKey string) (*Namer, error) {
	if provider == "" {
		provider = "anthropic"
	}
	if model == "" {
		// Cheapest option per provider
		switch provider {
		case "anthropic":
			model = "claude-3-haiku-20240307"
		case "openai":
			model = "gpt-3.5-turbo"
		case "ollama":
			model = "llama3"
		}
	}

	if apiKey == "" {
		switch provider {
		case "anthropic":
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			apiKey = os.Getenv("OPENAI_API_KEY")
		case "ollama":
			apiKey = "ollama"
		}
	}
	if apiKey == "" && provider != "ollama" {
		return nil, fmt.Errorf("no API key for provider %s", provider)
	}

	// GoLLM reads the key from the environment
	switch provider {
	case "anthropic":
		os.Setenv("ANTHROPIC_API_KEY", apiKey)
	case "openai":
		os.Setenv("OPENAI_API_KEY", apiKey)
	}

	client, err := gollm.NewLLM(
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(50),
		gollm.SetTemperature(0.2),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return &Namer{client: client}, nil
}

// Refine replaces heuristic titles with LLM-generated ones, in place. A
// failed generation keeps the heuristic title; refinement is best effort.
func (n *Namer) Refine(ctx context.Context, suggestions []Suggestion, tabs []browser.Tab) {
	titles := make(map[int]string, len(tabs))
	for _, t := range tabs {
		titles[t.ID] = t.Title
	}
	for i := range suggestions {
		name, err := n.nameCluster(ctx, suggestions[i], titles)
		if err == nil && name != "" {
			suggestions[i].Title = name
		}
	}
}

func (n *Namer) nameCluster(ctx context.Context, s Suggestion, titles map[int]string) (string, error) {
	var sb strings.Builder
	sb.WriteString("These browser tabs belong together. Reply with a short group name (max 3 words), nothing else.\n")
	fmt.Fprintf(&sb, "Site: %s\n", s.Bucket)
	for _, id := range s.TabIDs {
		if title := titles[id]; title != "" {
			fmt.Fprintf(&sb, "- %s\n", title)
		}
	}

	response, err := n.client.Generate(ctx, gollm.NewPrompt(sb.String()))
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}
	return cleanTitle(response), nil
}

// cleanTitle normalizes an LLM reply to a single short line.
func cleanTitle(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	if len(s) > 30 {
		s = strings.TrimSpace(s[:30])
	}
	return s
}
