package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kevwatch/kevwatch/model"
)

var (
	exportCve    string
	exportVendor string
	exportYear   string
	exportLimit  string
	exportOutput string
	exportFormat string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered KEVs to a file",
	Long:  `Exports KEV entries matching the given filters to a CSV or JSON file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportFormat != "csv" && exportFormat != "json" {
			return fmt.Errorf("unsupported export format: %s", exportFormat)
		}

		filter, err := buildFilter(exportCve, exportVendor, exportYear, exportLimit)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		records, err := st.Query(ctx, filter)
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No data to export based on the provided filters")
			return nil
		}

		if err := writeExport(exportOutput, exportFormat, records); err != nil {
			return err
		}

		fmt.Printf("Successfully exported %d KEV(s) to %s in %s format\n", len(records), exportOutput, exportFormat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportCve, "cve", "", "Filter by CVE ID (substring)")
	exportCmd.Flags().StringVar(&exportVendor, "vendor", "", "Filter by vendor/project name (substring)")
	exportCmd.Flags().StringVar(&exportYear, "year", "", "Filter by year range (2024, 2023-, 2022+, 2021-2022)")
	exportCmd.Flags().StringVar(&exportLimit, "limit", "50", "Max number of results, or 'all'")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (required)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Output format (csv or json)")
	exportCmd.MarkFlagRequired("output")
}

func writeExport(path, format string, records []model.Vulnerability) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if format == "json" {
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	w := csv.NewWriter(file)
	header := []string{
		"cveID", "vendorProject", "product", "vulnerabilityName", "dateAdded",
		"shortDescription", "requiredAction", "dueDate",
		"knownRansomwareCampaignUse", "notes", "cwes",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.CveID, r.VendorProject, r.Product, r.VulnerabilityName, r.DateAdded,
			r.ShortDescription, r.RequiredAction, r.DueDate,
			r.KnownRansomwareCampaignUse, r.Notes, r.CweList(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
