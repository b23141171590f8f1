package synth

import (
	"errors"
	"strings"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    string
		vars    map[string]string
		want    string
		wantErr bool
	}{
		{
			name: "single placeholder",
			tmpl: "Generate {n_macro_topics} topics.",
			vars: map[string]string{"n_macro_topics": "5"},
			want: "Generate 5 topics.",
		},
		{
			name: "multiple placeholders",
			tmpl: "Generate {n_subtopics} subtopics of {macro_topic}.",
			vars: map[string]string{"n_subtopics": "3", "macro_topic": "Cooking"},
			want: "Generate 3 subtopics of Cooking.",
		},
		{
			name: "repeated placeholder",
			tmpl: "{macro_topic}: list aspects of {macro_topic}",
			vars: map[string]string{"macro_topic": "Sports"},
			want: "Sports: list aspects of Sports",
		},
		{
			name: "no placeholders",
			tmpl: "A fixed prompt.",
			vars: map[string]string{"n_macro_topics": "5"},
			want: "A fixed prompt.",
		},
		{
			name:    "unknown placeholder",
			tmpl:    "Generate {n_topics} topics.",
			vars:    map[string]string{"n_macro_topics": "5"},
			wantErr: true,
		},
		{
			name:    "empty template",
			tmpl:    "",
			vars:    map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderTemplate(tt.tmpl, tt.vars)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Fatalf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("renderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTemplate_SubstitutedContentNotValidated(t *testing.T) {
	// Placeholder-like tokens inside substituted values must not trip the
	// unknown-placeholder check; only the template itself is validated.
	got, err := renderTemplate("Reformat: {llm_response}", map[string]string{
		"llm_response": "contains a literal {weird_token} inside",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "{weird_token}") {
		t.Errorf("substituted content was altered: %q", got)
	}
}

func TestRenderTemplate_ValueContainingPlaceholderToken(t *testing.T) {
	// A substituted value that happens to contain another placeholder's token
	// must come through literally, regardless of map iteration order.
	got, err := renderTemplate("List {n_subtopics} aspects of {macro_topic}.", map[string]string{
		"n_subtopics": "3",
		"macro_topic": "the {n_subtopics} rule",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "List 3 aspects of the {n_subtopics} rule."
	if got != want {
		t.Errorf("renderTemplate() = %q, want %q", got, want)
	}
}

func TestDefaultTemplatesRender(t *testing.T) {
	if _, err := renderTemplate(DefaultMacroTopicsPromptTemplate, map[string]string{"n_macro_topics": "10"}); err != nil {
		t.Errorf("macro template: %v", err)
	}
	if _, err := renderTemplate(DefaultSubtopicsPromptTemplate, map[string]string{"n_subtopics": "5", "macro_topic": "Science"}); err != nil {
		t.Errorf("subtopics template: %v", err)
	}
	if _, err := renderTemplate(DefaultConversionPromptTemplate, map[string]string{"llm_response": "1. A"}); err != nil {
		t.Errorf("conversion template: %v", err)
	}
}
