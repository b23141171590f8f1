package synth

import (
	"fmt"
	"regexp"
	"strings"
)

// Default prompt templates. Placeholders use {name} syntax and are resolved
// by renderTemplate before the prompt is sent to the model.
const (
	// DefaultMacroTopicsPromptTemplate asks for broad top-level subjects.
	DefaultMacroTopicsPromptTemplate = "Can you generate {n_macro_topics} comprehensive topics that encompass various aspects of our daily life, the world, and science? Your answer should be a list of topics. Make the topics as diverse as possible. For example: 1. Food and drinks.\n2. Technology.\n"

	// DefaultSubtopicsPromptTemplate asks for narrower subjects under a macro topic.
	DefaultSubtopicsPromptTemplate = "Can you generate {n_subtopics} comprehensive topics that encompass various aspects of {macro_topic}? Your answer should be a list of topics. Make the topics as diverse as possible. For example: 1. Food and drinks.\n2. Technology.\n"

	// DefaultConversionPromptTemplate asks the model to reformat a free-form
	// list into a bare YAML list of strings.
	DefaultConversionPromptTemplate = "The following document contains a list of items. Parse the list of items into a yaml list of strings. Do not parse any other part of the document. There should be no additional formatting in your response, just the yaml list of strings.\n\n{llm_response}"
)

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// renderTemplate substitutes {name} placeholders with the provided values.
// Every placeholder in the template must have a value; a template referencing
// an unknown placeholder is rejected before any substitution happens, so a
// bad template fails on the first call rather than producing a garbled prompt.
// Substitution is a single pass over the template, so placeholder-like tokens
// inside substituted values are left alone.
func renderTemplate(template string, vars map[string]string) (string, error) {
	if template == "" {
		return "", fmt.Errorf("%w: empty prompt template", ErrInvalidRequest)
	}

	for _, placeholder := range placeholderPattern.FindAllString(template, -1) {
		name := strings.Trim(placeholder, "{}")
		if _, ok := vars[name]; !ok {
			return "", fmt.Errorf("%w: prompt template references unknown placeholder %q", ErrInvalidRequest, name)
		}
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(template, func(placeholder string) string {
		return vars[strings.Trim(placeholder, "{}")]
	})

	return rendered, nil
}
