package main

import (
	"fmt"
	"io"
	"os"

	"github.com/oneirolab/dreamweave/pkg/export"

	"github.com/spf13/cobra"
)

var (
	exportOutFlag  string
	exportFromFlag string
	exportToFlag   string
)

var exportFormats = []string{"json", "csv", "html", "stats"}

var exportCmd = &cobra.Command{
	Use:   "export json|csv|html|stats",
	Short: "Export the dream journal",
	Long: `Export the dream journal in the requested format. Local file paths are
redacted from every export; recordings themselves never leave the device.

Formats:
  json  - complete journal as a JSON document, suitable for re-import
  csv   - flat spreadsheet of entries with analysis summaries
  html  - self-contained printable journal
  stats - self-contained statistics page

The export is written to stdout unless --out is given. --from and --to bound
the export by entry date (inclusive); the stats format always covers the whole
journal.`,
	ValidArgs: exportFormats,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		var out io.Writer = os.Stdout
		if exportOutFlag != "" {
			f, err := os.Create(exportOutFlag)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		rng := export.DateRange{From: exportFromFlag, To: exportToFlag}
		switch args[0] {
		case "json":
			err = export.WriteJSON(cmd.Context(), dbConn, userID(), rng, out)
		case "csv":
			err = export.WriteCSV(cmd.Context(), dbConn, userID(), rng, out)
		case "html":
			err = export.WriteHTML(cmd.Context(), dbConn, userID(), rng, out)
		case "stats":
			err = export.WriteStatisticsHTML(cmd.Context(), dbConn, userID(), out)
		default:
			return fmt.Errorf("unsupported export format: %s", args[0])
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutFlag != "" {
			fmt.Printf("Journal exported to %s\n", exportOutFlag)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a JSON journal export",
	Long: `Import dream entries from a JSON export produced by 'dreamweave export json'.
Recordings are not restored: exported audio paths are redacted placeholders.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()

		dbConn, err := openDB()
		if err != nil {
			return err
		}
		defer dbConn.Close()

		count, err := export.ImportJSON(cmd.Context(), dbConn, userID(), f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		fmt.Printf("Imported %d dream entries from %s.\n", count, args[0])
		return nil
	},
}

func initExportCmd() {
	exportCmd.Flags().StringVar(&exportOutFlag, "out", "", "Write the export to this file instead of stdout")
	exportCmd.Flags().StringVar(&exportFromFlag, "from", "", "Only export entries on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportToFlag, "to", "", "Only export entries on or before this date (YYYY-MM-DD)")
}
