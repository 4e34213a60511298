package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"alfredoptarigan/talent-screener/internal/bootstrap"
	"alfredoptarigan/talent-screener/internal/models"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Inspect or update the scoring weights",
}

var weightsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored scoring weights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		session, err := bootstrap.OpenSession(cfg, log)
		if err != nil {
			return err
		}
		printWeights(cmd.OutOrStdout(), session.Weights())
		return nil
	},
}

var weightsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update scoring weights and rescore stored candidates",
	Args:  cobra.NoArgs,
	RunE:  runWeightsSet,
}

// weightFlags maps flag names to the weight they update.
var weightFlags = []struct {
	name  string
	usage string
	field func(*models.ScoringWeights) *float64
}{
	{"skills", "skills match weight", func(w *models.ScoringWeights) *float64 { return &w.SkillsMatch }},
	{"experience", "experience relevance weight", func(w *models.ScoringWeights) *float64 { return &w.ExperienceRelevance }},
	{"qualifications", "qualifications weight", func(w *models.ScoringWeights) *float64 { return &w.Qualifications }},
	{"seniority", "seniority weight", func(w *models.ScoringWeights) *float64 { return &w.Seniority }},
	{"clarity", "CV clarity weight", func(w *models.ScoringWeights) *float64 { return &w.Clarity }},
}

func init() {
	for _, f := range weightFlags {
		weightsSetCmd.Flags().Float64(f.name, 0, f.usage)
	}
	weightsSetCmd.Flags().Bool("defaults", false, "restore the default weights")

	weightsCmd.AddCommand(weightsShowCmd, weightsSetCmd)
	rootCmd.AddCommand(weightsCmd)
}

func runWeightsSet(cmd *cobra.Command, _ []string) error {
	session, err := bootstrap.OpenSession(cfg, log)
	if err != nil {
		return err
	}

	weights := session.Weights()
	if useDefaults, _ := cmd.Flags().GetBool("defaults"); useDefaults {
		weights = models.DefaultWeights()
	}

	for _, f := range weightFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(f.name)
		if err != nil {
			return err
		}
		*f.field(&weights) = v
	}

	rescored, err := session.SetWeights(weights)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printWeights(out, weights)
	if rescored {
		fmt.Fprintln(out, "Stored candidates were rescored.")
	}
	return nil
}

func printWeights(w io.Writer, weights models.ScoringWeights) {
	fmt.Fprintf(w, "skills:         %g\n", weights.SkillsMatch)
	fmt.Fprintf(w, "experience:     %g\n", weights.ExperienceRelevance)
	fmt.Fprintf(w, "qualifications: %g\n", weights.Qualifications)
	fmt.Fprintf(w, "seniority:      %g\n", weights.Seniority)
	fmt.Fprintf(w, "clarity:        %g\n", weights.Clarity)
	fmt.Fprintf(w, "sum:            %g\n", weights.Sum())
	if warning := weights.SumWarning(); warning != "" {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
}
