package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

var (
	changesLimit int
	changesJSON  bool
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Show recent document changes",
	Long: `Lists recorded changes, newest first. Only meaningful deltas are
recorded: first sightings and trivial edits never appear here.`,
	RunE: runChanges,
}

func init() {
	changesCmd.Flags().IntVarP(&changesLimit, "limit", "n", 20, "maximum number of changes")
	changesCmd.Flags().BoolVar(&changesJSON, "json", false, "output changes as JSON")
	rootCmd.AddCommand(changesCmd)
}

func runChanges(cmd *cobra.Command, _ []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	changes, err := documentStore.ListChanges(context.Background(), changesLimit)
	if err != nil {
		return fmt.Errorf("failed to list changes: %w", err)
	}

	if changesJSON {
		data, err := json.MarshalIndent(changes, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(changes) == 0 {
		cmd.Println("No changes recorded yet.")
		return nil
	}

	for i := range changes {
		printChange(cmd, changes[i])
	}
	cmd.Printf("Total: %d changes\n", len(changes))
	return nil
}

func printChange(cmd *cobra.Command, change domain.Change) {
	cmd.Printf("%s  document %s  v%d -> v%d\n",
		change.CreatedAt.Format("2006-01-02 15:04"),
		change.DocumentID, change.OldVersion, change.NewVersion)

	for _, what := range change.Summary.WhatChanged {
		cmd.Printf("  - %s\n", what)
	}
	for _, date := range change.Summary.KeyDates {
		cmd.Printf("  %s: %s\n", date.Label, date.Date)
	}
	for _, action := range change.Summary.RequiredActions {
		cmd.Printf("  action: %s\n", action)
	}
	cmd.Println()
}
