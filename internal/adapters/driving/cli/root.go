// Package cli implements the command-line interface. Commands are thin
// shells over the core services: they parse flags, call a driving port,
// and render the result. Services are injected once at startup via
// SetServices.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driven"
	"github.com/grantwatch/grantwatch-cli/internal/core/ports/driving"
	"github.com/grantwatch/grantwatch-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. Commands nil-check these so that a partially wired
// binary fails with a clear message instead of a panic.
var (
	sourceStore      driven.SourceStore
	documentStore    driven.DocumentStore
	opportunityStore driven.OpportunityStore
	subscriberStore  driven.SubscriberStore
	configStore      driven.ConfigStore
	crawlerService   driven.Crawler
	ingestService    driving.Ingestor
	retrievalService driving.Retriever
	schedulerService driving.Scheduler
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "grantwatch",
	Short: "Monitor regulator and funding sites for changes and opportunities",
	Long: `Grantwatch crawls regulator and funding-agency pages on a schedule,
keeps a version history of every page, summarises meaningful changes,
extracts grant opportunities, and answers semantic queries over the
collected content.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

// Services bundles everything the commands need.
type Services struct {
	Sources       driven.SourceStore
	Documents     driven.DocumentStore
	Opportunities driven.OpportunityStore
	Subscribers   driven.SubscriberStore
	Config        driven.ConfigStore
	Crawler       driven.Crawler
	Ingestor      driving.Ingestor
	Retriever     driving.Retriever
	Scheduler     driving.Scheduler
}

// SetServices injects the service implementations used by the commands.
func SetServices(s Services) {
	sourceStore = s.Sources
	documentStore = s.Documents
	opportunityStore = s.Opportunities
	subscriberStore = s.Subscribers
	configStore = s.Config
	crawlerService = s.Crawler
	ingestService = s.Ingestor
	retrievalService = s.Retriever
	schedulerService = s.Scheduler
}

// SetVersion overrides the reported version string.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
