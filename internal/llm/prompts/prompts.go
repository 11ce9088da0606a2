package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	submissionTagRegex = regexp.MustCompile(`(?i)</?\s*submitted-code\b[^>]*>`)
	systemTagRegex     = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)
)

// maxCodeRunes caps the submitted code included in a prompt.
const maxCodeRunes = 20000

// Variant represents an evaluation prompt variant.
type Variant string

const (
	// VariantStrict holds submissions to interview-bar correctness.
	VariantStrict Variant = "strict"
	// VariantStandard is the default evaluation variant.
	VariantStandard Variant = "standard"
	// VariantLenient gives partial credit generously, for beginners.
	VariantLenient Variant = "lenient"
)

var validVariants = map[Variant]bool{
	VariantStrict:   true,
	VariantStandard: true,
	VariantLenient:  true,
}

// IsValidVariant checks if a prompt variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

// GenerateData holds template data for problem-generation prompts.
type GenerateData struct {
	Topic      string
	Difficulty string
	SkillLevel string
}

// EvalData holds template data for evaluation prompts.
type EvalData struct {
	ProblemContent string
	Language       string
	Code           string
}

var (
	loadOnce      sync.Once
	loadErr       error
	generateTmpl  *template.Template
	evalTemplates map[Variant]*template.Template
)

func load() {
	loadOnce.Do(func() {
		content, err := templateFS.ReadFile("templates/generate.txt")
		if err != nil {
			loadErr = fmt.Errorf("read generate template: %w", err)
			return
		}
		generateTmpl, err = template.New("generate").Parse(string(content))
		if err != nil {
			loadErr = fmt.Errorf("parse generate template: %w", err)
			return
		}

		evalTemplates = make(map[Variant]*template.Template)
		for v := range validVariants {
			name := "templates/eval_" + string(v) + ".txt"
			content, err := templateFS.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt file %s: %w", name, err)
				return
			}
			tmpl, err := template.New("eval").Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			evalTemplates[v] = tmpl
		}
	})
}

// BuildGeneratePrompt builds a problem-generation prompt.
func BuildGeneratePrompt(data GenerateData) (string, error) {
	load()
	if loadErr != nil {
		return "", loadErr
	}
	var buf bytes.Buffer
	if err := generateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BuildEvalPrompt builds a solution-evaluation prompt using the specified
// variant. The submitted code is sanitized before templating.
func BuildEvalPrompt(variant Variant, data EvalData) (string, error) {
	load()
	if loadErr != nil {
		return "", loadErr
	}
	tmpl, ok := evalTemplates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	data.Code = sanitizeCode(data.Code)

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func sanitizeCode(code string) string {
	code = submissionTagRegex.ReplaceAllString(code, "")
	code = systemTagRegex.ReplaceAllString(code, "")
	code = strings.TrimSpace(code)

	if code == "" {
		return "[No code submitted]"
	}

	if utf8.RuneCountInString(code) > maxCodeRunes {
		runes := []rune(code)
		runes = runes[:maxCodeRunes]
		code = string(runes) + "\n\n[Submission truncated due to length]"
	}

	return code
}
