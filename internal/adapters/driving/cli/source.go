package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage monitored sources",
	Long:  `Add, list, or remove the sites being monitored.`,
}

var (
	sourceAddName     string
	sourceAddEvery    time.Duration
	sourceAddInactive bool
)

var sourceAddCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Add a source to monitor",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceAdd,
}

var sourceListJSON bool

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

func init() {
	sourceAddCmd.Flags().StringVarP(&sourceAddName, "name", "n", "", "human-readable source name (defaults to the URL)")
	sourceAddCmd.Flags().DurationVar(&sourceAddEvery, "every", 24*time.Hour, "crawl interval")
	sourceAddCmd.Flags().BoolVar(&sourceAddInactive, "inactive", false, "add without enabling scheduled crawls")
	sourceListCmd.Flags().BoolVar(&sourceListJSON, "json", false, "output sources as JSON")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	name := sourceAddName
	if name == "" {
		name = args[0]
	}

	now := time.Now().UTC()
	source := domain.Source{
		ID:        uuid.NewString(),
		Name:      name,
		URL:       args[0],
		Schedule:  sourceAddEvery,
		Active:    !sourceAddInactive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := sourceStore.Save(context.Background(), source); err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}

	cmd.Printf("Added source %s\n", source.ID)
	cmd.Printf("  Name:     %s\n", source.Name)
	cmd.Printf("  URL:      %s\n", source.URL)
	cmd.Printf("  Schedule: every %s\n", source.Schedule)
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	sources, err := sourceStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if sourceListJSON {
		data, err := json.MarshalIndent(sources, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(sources) == 0 {
		cmd.Println("No sources configured. Add one with: grantwatch source add [url]")
		return nil
	}

	cmd.Println("Sources:")
	cmd.Println()
	for i := range sources {
		state := "active"
		if !sources[i].Active {
			state = "inactive"
		}
		cmd.Printf("  %s (%s)\n", sources[i].Name, state)
		cmd.Printf("    ID:       %s\n", sources[i].ID)
		cmd.Printf("    URL:      %s\n", sources[i].URL)
		cmd.Printf("    Schedule: every %s\n", sources[i].Schedule)
		cmd.Println()
	}
	cmd.Printf("Total: %d sources\n", len(sources))
	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	if err := sourceStore.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}

	cmd.Printf("Removed source %s\n", args[0])
	return nil
}
