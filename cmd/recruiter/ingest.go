package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/bootstrap"
	"alfredoptarigan/talent-screener/internal/services"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest --jd FILE",
	Short: "Index job description requirements into Qdrant",
	Args:  cobra.NoArgs,
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().String("jd", "", "job description file (.pdf, .docx, .txt, .md)")
	cobra.CheckErr(ingestCmd.MarkFlagRequired("jd"))

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if !cfg.Qdrant.Enabled() {
		return errors.New("QDRANT_URL is not set")
	}

	jdPath, _ := cmd.Flags().GetString("jd")
	ctx := cmd.Context()

	jd, err := services.NewUploadService(cfg.Storage.MaxFileSize).ReadPath(jdPath)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	if err := services.NewTextExtractor().Prepare(jd); err != nil {
		return err
	}
	if !jd.HasText() {
		return fmt.Errorf("no text could be extracted from %s", jdPath)
	}

	gemini, err := bootstrap.NewGemini(ctx, cfg, log)
	if err != nil {
		return err
	}
	retriever, err := bootstrap.NewRetriever(ctx, cfg, gemini, log)
	if err != nil {
		return err
	}

	stored, err := retriever.IndexJobDescription(ctx, jd)
	if err != nil {
		return err
	}

	log.Info("ingestion finished", zap.String("file", jd.Name), zap.Int("chunks", stored))
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d requirement chunk(s) from %s\n", stored, jd.Name)
	return nil
}
