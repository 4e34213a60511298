package services

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"
)

var (
	//go:embed schemas/candidate_analysis.json
	candidateAnalysisSchemaJSON string

	//go:embed schemas/interview_questions.json
	interviewQuestionsSchemaJSON string

	candidateAnalysisSchema  = gojsonschema.NewStringLoader(candidateAnalysisSchemaJSON)
	interviewQuestionsSchema = gojsonschema.NewStringLoader(interviewQuestionsSchemaJSON)
)

var ErrSchemaMismatch = errors.New("response does not match schema")

// validateJSON checks document against schema and folds all violations into one error.
func validateJSON(schema gojsonschema.JSONLoader, document string) error {
	result, err := gojsonschema.Validate(schema, gojsonschema.NewStringLoader(document))
	if err != nil {
		return fmt.Errorf("failed to validate response: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(violations, "; "))
}

func stringArraySchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

// candidateResponseSchema mirrors schemas/candidate_analysis.json for Gemini structured output.
func candidateResponseSchema() *genai.Schema {
	rating := func(description string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: description}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"candidate_name":     {Type: genai.TypeString},
			"email":              {Type: genai.TypeString},
			"matched_skills":     stringArraySchema(),
			"missing_skills":     stringArraySchema(),
			"qualifications":     stringArraySchema(),
			"achievements":       stringArraySchema(),
			"summary":            {Type: genai.TypeString},
			"experience_summary": {Type: genai.TypeString},
			"strengths":          stringArraySchema(),
			"weaknesses":         stringArraySchema(),
			"ratings": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"skills_match":         rating("0-100"),
					"experience_relevance": rating("0-100"),
					"qualifications":       rating("0-100"),
					"seniority":            rating("0-100"),
					"clarity":              rating("0-100"),
				},
				Required: []string{"skills_match", "experience_relevance", "qualifications", "seniority", "clarity"},
			},
			"reasoning": {Type: genai.TypeString},
		},
		Required: []string{"candidate_name", "ratings"},
	}
}
