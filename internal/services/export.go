package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"alfredoptarigan/talent-screener/internal/models"
)

const listSeparator = "; "

var csvHeader = []string{
	"Rank", "Name", "Total Score", "Fit Label",
	"Skills Match", "Experience", "Qualifications",
	"Strengths", "Weaknesses",
}

// Rank sorts a copy of candidates by descending score and numbers them from 1.
func Rank(candidates []models.CandidateAnalysis) []models.RankedCandidate {
	sorted := make([]models.CandidateAnalysis, len(candidates))
	copy(sorted, candidates)
	SortByScore(sorted)

	ranked := make([]models.RankedCandidate, len(sorted))
	for i, c := range sorted {
		ranked[i] = models.RankedCandidate{Rank: i + 1, CandidateAnalysis: c}
	}
	return ranked
}

// WriteCSV writes the ranking report. Fields are quoted per RFC 4180 where needed.
func WriteCSV(w io.Writer, candidates []models.CandidateAnalysis) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rc := range Rank(candidates) {
		record := []string{
			strconv.Itoa(rc.Rank),
			rc.Name,
			formatScore(rc.FinalScore),
			string(rc.FitLabel),
			formatScore(rc.Ratings.SkillsMatch),
			formatScore(rc.Ratings.ExperienceRelevance),
			formatScore(rc.Ratings.Qualifications),
			strings.Join(rc.Strengths, listSeparator),
			strings.Join(rc.Weaknesses, listSeparator),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// WriteTextReport writes a plain-text block per ranked candidate.
func WriteTextReport(w io.Writer, candidates []models.CandidateAnalysis) error {
	var b strings.Builder

	ranked := Rank(candidates)
	fmt.Fprintf(&b, "CANDIDATE RANKING (%d candidates)\n", len(ranked))

	for _, rc := range ranked {
		b.WriteString("\n")
		fmt.Fprintf(&b, "#%d %s (%s)\n", rc.Rank, reportName(rc.Name), rc.FileName)
		fmt.Fprintf(&b, "Score: %s  Fit: %s\n", formatScore(rc.FinalScore), rc.FitLabel)
		if rc.Email != "" {
			fmt.Fprintf(&b, "Email: %s\n", rc.Email)
		}
		if rc.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", rc.Summary)
		}
		writeReportList(&b, "Strengths", rc.Strengths)
		writeReportList(&b, "Weaknesses", rc.Weaknesses)
		writeReportList(&b, "Missing skills", rc.MissingSkills)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeReportList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func reportName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "(unnamed)"
	}
	return name
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
