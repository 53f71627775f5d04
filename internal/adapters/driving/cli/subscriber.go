package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/core/domain"
)

var subscriberCmd = &cobra.Command{
	Use:   "subscriber",
	Short: "Manage digest subscribers",
	Long: `Add or list the recipients of change digests. Delivery itself is
handled by an external channel; grantwatch only keeps the roster.`,
}

var (
	subscriberChannel string
	subscriberLocale  string
)

var subscriberAddCmd = &cobra.Command{
	Use:   "add [handle]",
	Short: "Add a subscriber",
	Args:  cobra.ExactArgs(1),
	RunE:  runSubscriberAdd,
}

var subscriberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active subscribers for a channel",
	RunE:  runSubscriberList,
}

func init() {
	subscriberAddCmd.Flags().StringVar(&subscriberChannel, "channel", "whatsapp", "delivery channel")
	subscriberAddCmd.Flags().StringVar(&subscriberLocale, "locale", "en", "preferred locale")
	subscriberListCmd.Flags().StringVar(&subscriberChannel, "channel", "whatsapp", "delivery channel")

	subscriberCmd.AddCommand(subscriberAddCmd)
	subscriberCmd.AddCommand(subscriberListCmd)
	rootCmd.AddCommand(subscriberCmd)
}

func runSubscriberAdd(cmd *cobra.Command, args []string) error {
	if subscriberStore == nil {
		return errors.New("subscriber store not configured")
	}

	sub := &domain.Subscriber{
		ID:        uuid.NewString(),
		Channel:   subscriberChannel,
		Handle:    args[0],
		Locale:    subscriberLocale,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	if err := subscriberStore.Save(context.Background(), sub); err != nil {
		return fmt.Errorf("failed to add subscriber: %w", err)
	}

	cmd.Printf("Added subscriber %s on %s\n", sub.Handle, sub.Channel)
	return nil
}

func runSubscriberList(cmd *cobra.Command, _ []string) error {
	if subscriberStore == nil {
		return errors.New("subscriber store not configured")
	}

	subs, err := subscriberStore.ListActive(context.Background(), subscriberChannel)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}

	if len(subs) == 0 {
		cmd.Printf("No active subscribers on %s.\n", subscriberChannel)
		return nil
	}

	cmd.Printf("Subscribers on %s:\n\n", subscriberChannel)
	for i := range subs {
		cmd.Printf("  %s (%s)\n", subs[i].Handle, subs[i].Locale)
	}
	cmd.Printf("\nTotal: %d subscribers\n", len(subs))
	return nil
}
