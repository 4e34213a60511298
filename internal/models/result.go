package models

type UploadResponse struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int    `json:"size"`
}

type WeightsRequest struct {
	SkillsMatch         *float64 `json:"skills_match" validate:"required,gte=0,lte=1000000"`
	ExperienceRelevance *float64 `json:"experience_relevance" validate:"required,gte=0,lte=1000000"`
	Qualifications      *float64 `json:"qualifications" validate:"required,gte=0,lte=1000000"`
	Seniority           *float64 `json:"seniority" validate:"required,gte=0,lte=1000000"`
	Clarity             *float64 `json:"clarity" validate:"required,gte=0,lte=1000000"`
}

func (r WeightsRequest) ToWeights() ScoringWeights {
	return ScoringWeights{
		SkillsMatch:         *r.SkillsMatch,
		ExperienceRelevance: *r.ExperienceRelevance,
		Qualifications:      *r.Qualifications,
		Seniority:           *r.Seniority,
		Clarity:             *r.Clarity,
	}
}

type WeightsResponse struct {
	Weights  ScoringWeights `json:"weights"`
	Sum      float64        `json:"sum"`
	Warning  string         `json:"warning,omitempty"`
	Rescored bool           `json:"rescored,omitempty"`
}

type EmailRequest struct {
	Type string `json:"type" validate:"required,oneof=invite reject"`
}

type EmailResponse struct {
	CandidateID string `json:"candidate_id"`
	Type        string `json:"type"`
	Body        string `json:"body"`
}

type InterviewQuestionsResponse struct {
	CandidateID string   `json:"candidate_id"`
	Questions   []string `json:"questions"`
}

type AnalyzeResponse struct {
	Status  string `json:"status"`
	Pending int    `json:"pending"`
}

type AnalysisStatusResponse struct {
	Running bool               `json:"running"`
	Counts  map[FileStatus]int `json:"counts"`
}

type FileStatusResponse struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	MimeType string     `json:"mime_type"`
	Status   FileStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
}

type RankedCandidate struct {
	Rank int `json:"rank"`
	CandidateAnalysis
}
