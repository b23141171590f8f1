package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/curate-labs/topicforge/internal/llm"
	"gopkg.in/yaml.v3"
)

// ConvertResponseToList normalizes a raw model response into a list of strings.
// It asks the model to restate the response as a bare YAML list, parses that
// output, and verifies every parsed item appears verbatim in the source
// response so the conversion step cannot invent topics. Shape and parse
// failures are returned as *ConversionError; LLM call failures pass through.
func (g *Generator) ConvertResponseToList(ctx context.Context, req ConversionRequest) ([]string, error) {
	if req.Response == "" {
		return nil, fmt.Errorf("%w: response to convert is empty", ErrInvalidRequest)
	}

	template := req.PromptTemplate
	if template == "" {
		template = DefaultConversionPromptTemplate
	}

	prompt, err := renderTemplate(template, map[string]string{
		"llm_response": req.Response,
	})
	if err != nil {
		return nil, err
	}

	text, err := g.client.Complete(ctx, llm.Request{
		Model:   req.Model,
		Prompt:  prompt,
		Options: req.ModelOptions,
	})
	if err != nil {
		return nil, err
	}

	return parseYAMLList(text, req.Response)
}

// parseYAMLList parses text as a YAML list of strings and validates each item
// against the source response.
func parseYAMLList(text, source string) ([]string, error) {
	cleaned := stripCodeFence(text)

	var parsed []any
	if err := yaml.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, conversionErrorf("response is not valid YAML: %v", err)
	}
	if parsed == nil {
		return nil, conversionErrorf("response parsed to an empty document, expected a list of strings")
	}

	items := make([]string, 0, len(parsed))
	for i, elem := range parsed {
		s, ok := elem.(string)
		if !ok {
			return nil, conversionErrorf("list item %d is %T, expected a string", i, elem)
		}
		if !strings.Contains(source, strings.TrimSpace(s)) {
			return nil, conversionErrorf("converted item %q does not appear in the source response", s)
		}
		items = append(items, s)
	}

	return items, nil
}

// stripCodeFence removes a surrounding markdown code fence, if present.
// Models frequently wrap YAML output in ```yaml fences despite instructions.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return trimmed
	}

	// Drop the opening fence line (``` or ```yaml) and a trailing fence.
	lines = lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}
