package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// catalogCmd represents the catalog command group
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local KEV database",
}

// catalogDownloadCmd downloads the catalog and builds the database
var catalogDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the KEV catalog and build the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		if _, err := newEngine(st).SyncOnce(ctx); err != nil {
			return err
		}

		info, ok, err := st.LoadCatalogInfo(ctx)
		if err != nil {
			return err
		}
		if ok {
			fmt.Printf("KEV catalog version %s (%d entries)\n", info.CatalogVersion, info.Count)
		}
		return nil
	},
}

// catalogUpdateCmd refreshes the database and prints newly added entries
var catalogUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the local KEV database and display newly added KEVs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		newRecords, err := newEngine(st).SyncOnce(ctx)
		if err != nil {
			return err
		}

		if len(newRecords) == 0 {
			fmt.Println("Database is already up-to-date")
			return nil
		}

		fmt.Printf("Found %d new KEV(s):\n\n", len(newRecords))
		for _, r := range newRecords {
			fmt.Printf("%-18s %-24s %s\n", r.CveID, r.VendorProject, r.VulnerabilityName)
		}
		return nil
	},
}

// catalogInfoCmd prints the stored catalog metadata
var catalogInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the stored catalog version, release date and entry count",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		info, ok, err := st.LoadCatalogInfo(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no catalog metadata found, run 'kevwatch catalog download' first")
		}

		fmt.Printf("Title:           %s\n", info.Title)
		fmt.Printf("Catalog Version: %s\n", info.CatalogVersion)
		fmt.Printf("Date Released:   %s\n", info.DateReleased)
		fmt.Printf("Total KEVs:      %d\n", info.Count)
		fmt.Printf("Catalog Hash:    %s\n", info.CatalogHash)
		fmt.Printf("DB Hash:         %s\n", info.DBHash)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogDownloadCmd)
	catalogCmd.AddCommand(catalogUpdateCmd)
	catalogCmd.AddCommand(catalogInfoCmd)
}
