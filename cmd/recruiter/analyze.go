package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/bootstrap"
	"alfredoptarigan/talent-screener/internal/models"
	"alfredoptarigan/talent-screener/internal/services"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze --jd FILE CV...",
	Short: "Analyze CV files against a job description and print the ranking",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("jd", "", "job description file (.pdf, .docx, .txt, .md)")
	analyzeCmd.Flags().String("csv", "", "also write the ranking as CSV to this file")
	analyzeCmd.Flags().Bool("fresh", false, "discard stored results before analyzing")
	cobra.CheckErr(analyzeCmd.MarkFlagRequired("jd"))

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	jdPath, _ := cmd.Flags().GetString("jd")
	csvPath, _ := cmd.Flags().GetString("csv")
	fresh, _ := cmd.Flags().GetBool("fresh")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := bootstrap.OpenSession(cfg, log)
	if err != nil {
		return err
	}
	if fresh {
		if err := session.Reset(); err != nil {
			return err
		}
	}

	ai, err := bootstrap.NewAI(ctx, cfg, log)
	if err != nil {
		return err
	}

	uploads := services.NewUploadService(cfg.Storage.MaxFileSize)

	jd, err := uploads.ReadPath(jdPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	session.SetJobDescription(jd)

	for _, path := range args {
		doc, err := uploads.ReadPath(path)
		if err != nil {
			session.AddRejectedFile(path, err)
			log.Warn("candidate file rejected", zap.String("file", path), zap.Error(err))
			continue
		}
		session.AddFiles(doc)
	}

	summary, err := runBatch(ctx, session, ai.Analyzer)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printFileErrors(out, session.Files())
	fmt.Fprintf(out, "Analyzed %d file(s): %d completed, %d failed, %d skipped\n\n", summary.Processed, summary.Completed, summary.Failed, summary.Skipped)
	printRanking(out, session.Candidates())

	if csvPath != "" {
		if err := writeFile(csvPath, func(w io.Writer) error {
			return services.WriteCSV(w, session.Candidates())
		}); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nCSV written to %s\n", csvPath)
	}
	return nil
}

func runBatch(ctx context.Context, session *services.Session, analyzer services.Analyzer) (services.BatchSummary, error) {
	tracker := services.NewBatchTracker(session, analyzer, log)
	defer tracker.Stop()

	return tracker.Run(ctx)
}

func printFileErrors(w io.Writer, files []models.ProcessingFile) {
	for _, f := range files {
		if f.Status != models.FileStatusError {
			continue
		}
		name := ""
		if f.Document != nil {
			name = f.Document.Name
		}
		fmt.Fprintf(w, "! %s: %s\n", name, f.Error)
	}
}

func printRanking(w io.Writer, candidates []models.CandidateAnalysis) {
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No candidates analyzed yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tNAME\tSCORE\tFIT\tFILE")
	for _, rc := range services.Rank(candidates) {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%s\t%s\n", rc.Rank, rc.Name, rc.FinalScore, rc.FitLabel, rc.FileName)
	}
	_ = tw.Flush()
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
