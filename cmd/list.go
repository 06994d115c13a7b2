package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kevwatch/kevwatch/store"
	"github.com/kevwatch/kevwatch/util"
)

var (
	listCve    string
	listVendor string
	listYear   string
	listLimit  string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List filtered KEVs from the local database",
	Long: `Lists KEV entries from the local database, newest first.
Filters: --cve (substring, e.g. CVE-2023 or 2024-30088), --vendor
(substring), --year (2024, 2023-, 2022+ or 2021-2022).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := buildFilter(listCve, listVendor, listYear, listLimit)
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
			fmt.Println("No KEVs match the given filters")
			return nil
		}

		fmt.Printf("Found %d KEV(s):\n\n", len(records))
		fmt.Printf("%-18s %-24s %-12s %s\n", "CVE ID", "VENDOR", "DATE ADDED", "VULNERABILITY NAME")
		fmt.Println(strings.Repeat("─", 100))
		for _, r := range records {
			fmt.Printf("%-18s %-24s %-12s %s\n", r.CveID, r.VendorProject, r.DateAdded, r.VulnerabilityName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listCve, "cve", "", "Filter by CVE ID (substring)")
	listCmd.Flags().StringVar(&listVendor, "vendor", "", "Filter by vendor/project name (substring)")
	listCmd.Flags().StringVar(&listYear, "year", "", "Filter by year range (2024, 2023-, 2022+, 2021-2022)")
	listCmd.Flags().StringVar(&listLimit, "limit", "10", "Max number of results, or 'all'")
}

// buildFilter converts the shared CLI filter flags into a store.Filter.
func buildFilter(cve, vendor, year, limit string) (store.Filter, error) {
	filter := store.Filter{
		CveID:  cve,
		Vendor: vendor,
	}

	since, until, err := util.YearRange(year)
	if err != nil {
		return store.Filter{}, err
	}
	filter.SinceDate = since
	filter.UntilDate = until

	if limit != "" && limit != "all" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return store.Filter{}, fmt.Errorf("invalid limit %q: must be an integer or 'all'", limit)
		}
		filter.Limit = n
	}

	return filter, nil
}
