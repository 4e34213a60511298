package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"alfredoptarigan/talent-screener/internal/bootstrap"
	"alfredoptarigan/talent-screener/internal/services"
)

const (
	formatCSV  = "csv"
	formatText = "txt"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored ranking as CSV or a text report",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", formatCSV, "output format: csv or txt")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var write func(io.Writer) error
	session, err := bootstrap.OpenSession(cfg, log)
	if err != nil {
		return err
	}
	candidates := session.Candidates()

	switch format {
	case formatCSV:
		write = func(w io.Writer) error { return services.WriteCSV(w, candidates) }
	case formatText:
		write = func(w io.Writer) error { return services.WriteTextReport(w, candidates) }
	default:
		return fmt.Errorf("unknown format %q, expected csv or txt", format)
	}

	if output == "" {
		return write(cmd.OutOrStdout())
	}
	return writeFile(output, write)
}
