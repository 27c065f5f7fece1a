package domain

import (
	"errors"
	"time"
)

// Default model used when a settings row is lazily created.
const DefaultModelName = "gemini-2.0-flash"

// Default prompt templates. {{novel}}, {{chapter}} and {{glossary}} are
// substituted by the pipelines before the generation call.
const (
	DefaultTranslationPrompt = `أنت مترجم روايات محترف. ترجم الفصل التالي من رواية "{{novel}}" إلى اللغة العربية الفصحى بأسلوب أدبي سلس.
التزم بمصطلحات القاموس التالية إن وُجدت:
{{glossary}}
ابدأ الترجمة بسطر عنوان بصيغة "الفصل {{chapter}}: <عنوان الفصل>".`

	DefaultTitleGenerationPrompt = `اقرأ مقتطف الفصل التالي من رواية "{{novel}}" واقترح عنواناً قصيراً وجذاباً له باللغة العربية.
أجب بالعنوان فقط دون أي شرح إضافي وبصيغة "الفصل {{chapter}}: <العنوان>".`
)

// ErrInvalidSettingsKind is returned when settings are requested for an
// unknown job kind.
var ErrInvalidSettingsKind = errors.New("invalid job settings kind")

// JobSettings is the stored per-kind configuration for a pipeline:
// which model to call, the prompt template to compose, and the shared
// credential list used when a job carries no override. One row per kind,
// lazily created with defaults on first read.
type JobSettings struct {
	Kind           JobKind   `json:"kind"`
	ModelName      string    `json:"model_name"`
	PromptTemplate string    `json:"prompt_template"`
	APIKeys        []string  `json:"api_keys"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultJobSettings returns the settings a kind starts with before an
// operator customizes them. seedKeys may be nil.
func DefaultJobSettings(kind JobKind, seedKeys []string) (*JobSettings, error) {
	var prompt string
	switch kind {
	case JobKindTranslation:
		prompt = DefaultTranslationPrompt
	case JobKindTitleGeneration:
		prompt = DefaultTitleGenerationPrompt
	default:
		return nil, ErrInvalidSettingsKind
	}

	return &JobSettings{
		Kind:           kind,
		ModelName:      DefaultModelName,
		PromptTemplate: prompt,
		APIKeys:        seedKeys,
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

// Validate checks if the JobSettings has valid data.
func (s *JobSettings) Validate() error {
	if s.Kind != JobKindTranslation && s.Kind != JobKindTitleGeneration {
		return ErrInvalidSettingsKind
	}
	if s.ModelName == "" {
		return errors.New("model name cannot be empty")
	}
	if s.PromptTemplate == "" {
		return errors.New("prompt template cannot be empty")
	}
	return nil
}
