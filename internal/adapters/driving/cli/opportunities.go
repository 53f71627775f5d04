package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	opportunitiesLimit int
	opportunitiesJSON  bool
)

var opportunitiesCmd = &cobra.Command{
	Use:   "opportunities",
	Short: "Show extracted opportunities",
	Long:  `Lists grant, scholarship and policy opportunities, newest first.`,
	RunE:  runOpportunities,
}

func init() {
	opportunitiesCmd.Flags().IntVarP(&opportunitiesLimit, "limit", "n", 20, "maximum number of opportunities")
	opportunitiesCmd.Flags().BoolVar(&opportunitiesJSON, "json", false, "output opportunities as JSON")
	rootCmd.AddCommand(opportunitiesCmd)
}

func runOpportunities(cmd *cobra.Command, _ []string) error {
	if opportunityStore == nil {
		return errors.New("opportunity store not configured")
	}

	opps, err := opportunityStore.List(context.Background(), opportunitiesLimit)
	if err != nil {
		return fmt.Errorf("failed to list opportunities: %w", err)
	}

	if opportunitiesJSON {
		data, err := json.MarshalIndent(opps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal opportunities: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(opps) == 0 {
		cmd.Println("No opportunities found yet.")
		return nil
	}

	cmd.Println("Opportunities:")
	cmd.Println()
	for i := range opps {
		cmd.Printf("  [%d] %s\n", i+1, opps[i].Title)
		cmd.Printf("      Agency: %s\n", opps[i].Agency)
		if opps[i].Deadline != nil {
			cmd.Printf("      Deadline: %s\n", opps[i].Deadline.Format("2006-01-02"))
		}
		if opps[i].Amount != "" {
			cmd.Printf("      Amount: %s\n", opps[i].Amount)
		}
		if opps[i].Eligibility != "" {
			cmd.Printf("      Eligibility: %s\n", opps[i].Eligibility)
		}
		cmd.Printf("      %s\n", opps[i].Action)
		cmd.Printf("      %s\n", opps[i].URL)
		cmd.Println()
	}
	cmd.Printf("Total: %d opportunities\n", len(opps))
	return nil
}
