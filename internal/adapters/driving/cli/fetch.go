package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/harvest/internal/adapters/driven/archive"
	"github.com/custodia-labs/harvest/internal/adapters/driven/sink"
	"github.com/custodia-labs/harvest/internal/adapters/driven/transport/httpclient"
	"github.com/custodia-labs/harvest/internal/connectors"
	"github.com/custodia-labs/harvest/internal/connectors/confluence"
	"github.com/custodia-labs/harvest/internal/connectors/discourse"
	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
	"github.com/custodia-labs/harvest/internal/core/ports/driving"
	"github.com/custodia-labs/harvest/internal/logger"
	"github.com/custodia-labs/harvest/internal/metrics"
)

// Environment variables read when the credential flags are not given.
const (
	envToken    = "HARVEST_TOKEN"
	envUsername = "HARVEST_API_USERNAME"
)

var (
	fetchFromDate    string
	fetchTag         string
	fetchOutput      string
	fetchNoResume    bool
	fetchMetricsFile string
	fetchToken       string
	fetchUsername    string
	fetchArchive     bool
	fetchFromArchive string

	// Confluence
	fetchAddAncestors bool
	fetchMaxContents  int
	fetchStart        int
	fetchWorkers      int

	// Discourse
	fetchMaxTopics int
)

// progressInterval is the period of the progress messages of a verbose run.
var progressInterval = 10 * time.Second

// harvesterFactory builds a harvester for a source over a transport.
type harvesterFactory func(source domain.Source, transport driven.Transport) (driven.Harvester, error)

var harvesterFactories = map[string]harvesterFactory{
	confluence.BackendName: func(source domain.Source, transport driven.Transport) (driven.Harvester, error) {
		cfg, err := confluence.ParseConfig(source)
		if err != nil {
			return nil, err
		}
		return confluence.New(cfg, transport), nil
	},
	discourse.BackendName: func(source domain.Source, transport driven.Transport) (driven.Harvester, error) {
		cfg, err := discourse.ParseConfig(source)
		if err != nil {
			return nil, err
		}
		return discourse.New(cfg, transport), nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Harvest a remote platform",
	Long: `Harvest the items updated since a checkpoint and write one JSON
envelope per line to stdout or --output.

Without --from-date the checkpoint stored by the last successful run of
the same backend and server is used. --no-resume forces a full harvest.`,
}

var fetchConfluenceCmd = &cobra.Command{
	Use:   "confluence <url>",
	Short: "Harvest every historical version of the changed Confluence contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, confluence.BackendName, args[0])
	},
}

var fetchDiscourseCmd = &cobra.Command{
	Use:   "discourse <url>",
	Short: "Harvest the posts of the changed Discourse topics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, discourse.BackendName, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{fetchConfluenceCmd, fetchDiscourseCmd} {
		c.Flags().StringVar(&fetchFromDate, "from-date", "", "harvest items updated at or after this date (RFC 3339 or YYYY-MM-DD)")
		c.Flags().StringVar(&fetchTag, "tag", "", "label stamped on every envelope (default: the server URL)")
		c.Flags().StringVarP(&fetchOutput, "output", "o", "", "write envelopes to this file instead of stdout")
		c.Flags().BoolVar(&fetchNoResume, "no-resume", false, "ignore the stored checkpoint")
		c.Flags().StringVar(&fetchMetricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")
		c.Flags().StringVar(&fetchToken, "api-token", "", "API token (env "+envToken+")")
		c.Flags().StringVar(&fetchUsername, "api-username", "", "API username (env "+envUsername+")")
		c.Flags().BoolVar(&fetchArchive, "archive", false, "record raw responses into a new archive")
		c.Flags().StringVar(&fetchFromArchive, "from-archive", "", "replay the responses of an archive instead of the network")
		c.MarkFlagsMutuallyExclusive("archive", "from-archive")
	}

	fetchConfluenceCmd.Flags().BoolVar(&fetchAddAncestors, "add-ancestors", false, "resolve the URLs of ancestor pages")
	fetchConfluenceCmd.Flags().IntVar(&fetchMaxContents, "max-contents", 0, "maximum contents per summary page")
	fetchConfluenceCmd.Flags().IntVar(&fetchStart, "start", 0, "skip this many results of the first summary page")
	fetchConfluenceCmd.Flags().IntVar(&fetchWorkers, "workers", 0, "contents walked concurrently")

	fetchDiscourseCmd.Flags().IntVar(&fetchMaxTopics, "max-topics", 0, "topics requested per page")

	fetchCmd.AddCommand(fetchConfluenceCmd)
	fetchCmd.AddCommand(fetchDiscourseCmd)
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, backend, rawURL string) error {
	if harvestService == nil {
		return errors.New("harvest service not configured")
	}
	ctx := cmd.Context()

	factory, ok := harvesterFactories[backend]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, backend)
	}

	req := driving.HarvestRequest{Resume: !fetchNoResume}
	if fetchFromDate != "" {
		from, err := parseFromDate(fetchFromDate)
		if err != nil {
			return err
		}
		req.From = &from
	}

	source := domain.Source{
		ID:     backend,
		Type:   backend,
		Name:   rawURL,
		Config: sourceConfig(cmd, backend, rawURL),
	}

	base := httpclient.NewClient(transportConfig(backend))
	harvester, err := factory(source, base)
	if err != nil {
		return fmt.Errorf("configure %s: %w", backend, err)
	}
	if err := checkCapabilities(backend, harvester.Capabilities(), source.Config); err != nil {
		_ = harvester.Close()
		return err
	}

	archiving := fetchArchive || fetchFromArchive != ""
	if archiving {
		if !harvester.Capabilities().SupportsArchive {
			_ = harvester.Close()
			return fmt.Errorf("%w: %s", domain.ErrArchiveUnsupported, backend)
		}
		if archiveStore == nil {
			_ = harvester.Close()
			return errors.New("archive store not configured")
		}

		transport, replay, err := archiveTransport(cmd, harvester, base)
		_ = harvester.Close()
		if err != nil {
			return err
		}
		req.Replay = replay

		// Rebuilt over the archive transport.
		harvester, err = factory(source, transport)
		if err != nil {
			return fmt.Errorf("configure %s: %w", backend, err)
		}
	}
	defer func() { _ = harvester.Close() }()

	out, err := openSink(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	stopProgress := reportProgress(ctx, domain.SourceKey(harvester.Name(), harvester.Origin()))
	result, runErr := harvestService.Run(ctx, harvester, out, req)
	stopProgress()
	if closeErr := out.Close(); closeErr != nil && runErr == nil {
		runErr = closeErr
	}

	if fetchMetricsFile != "" {
		if err := metrics.WriteTextfile(fetchMetricsFile); err != nil {
			logger.Warn("Failed to write metrics to %s: %v", fetchMetricsFile, err)
		}
	}

	if result != nil {
		cmd.PrintErrf("Harvested %d envelopes from %s\n", result.Emitted, harvester.Origin())
		if runErr == nil && harvester.Capabilities().SupportsResume && !req.Replay {
			cmd.PrintErrf("Checkpoint: %s\n", result.NewCheckpoint.UTC().Format(time.RFC3339))
		}
	}

	printHint(cmd, runErr)
	return runErr
}

// checkCapabilities rejects options the backend cannot honour.
func checkCapabilities(backend string, caps driven.HarvesterCapabilities, cfg map[string]string) error {
	if n, _ := strconv.Atoi(cfg["workers"]); n > 1 && !caps.SupportsConcurrency {
		return fmt.Errorf("%w: %s does not walk items concurrently", domain.ErrInvalidInput, backend)
	}
	if cfg["add_ancestors"] == "true" && !caps.SupportsAncestors {
		return fmt.Errorf("%w: %s cannot resolve ancestors", domain.ErrInvalidInput, backend)
	}
	return nil
}

// reportProgress logs the envelope count of a running harvest every
// progressInterval until the returned function is called. Only verbose runs
// report progress.
func reportProgress(ctx context.Context, sourceID string) func() {
	if !logger.IsVerbose() || progressInterval <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				status, err := harvestService.Status(ctx, sourceID)
				if err != nil || !status.Running {
					continue
				}
				logger.Info("Harvest of %s running: %d envelopes so far", sourceID, status.Emitted)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// printHint suggests a remedy for failures the user can act on.
func printHint(cmd *cobra.Command, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthRequired), errors.Is(err, domain.ErrAuthInvalid):
		cmd.PrintErrf("Hint: check the credentials given with --api-token and --api-username (env %s, %s)\n",
			envToken, envUsername)
	case errors.Is(err, domain.ErrRateLimited):
		cmd.PrintErrln("Hint: the server kept rate limiting the harvest, lower transport.rate and retry later")
	}
}

// archiveTransport wraps base for recording, or replaces it with a replayer.
// The returned flag reports a replay.
func archiveTransport(cmd *cobra.Command, harvester driven.Harvester, base driven.Transport) (driven.Transport, bool, error) {
	ctx := cmd.Context()

	if fetchFromArchive != "" {
		a, err := archiveStore.Open(ctx, fetchFromArchive)
		if err != nil {
			return nil, false, fmt.Errorf("open archive %s: %w", fetchFromArchive, err)
		}
		info := a.Info()
		if info.BackendName != harvester.Name() || info.Origin != harvester.Origin() {
			return nil, false, fmt.Errorf("%w: archive %s was recorded from %s %s",
				domain.ErrInvalidInput, info.ID, info.BackendName, info.Origin)
		}
		logger.Info("Replaying archive %s", info.ID)
		return archive.NewReplayer(a), true, nil
	}

	a, err := archiveStore.Create(ctx, domain.ArchiveInfo{
		BackendName:    harvester.Name(),
		BackendVersion: harvester.Version(),
		Category:       harvester.Categories()[0],
		Origin:         harvester.Origin(),
	})
	if err != nil {
		return nil, false, fmt.Errorf("create archive: %w", err)
	}
	cmd.PrintErrf("Recording archive %s\n", a.Info().ID)
	return archive.NewRecorder(base, a), false, nil
}

func openSink(stdout io.Writer) (*sink.JSONLines, error) {
	if fetchOutput == "" {
		return sink.NewJSONLines(stdout), nil
	}
	return sink.OpenFile(fetchOutput)
}

// sourceConfig merges flags over the stored configuration of the backend.
func sourceConfig(cmd *cobra.Command, backend, rawURL string) map[string]string {
	cfg := map[string]string{
		"url": rawURL,
		"tag": fetchTag,
	}

	if cmd.Flags().Changed("add-ancestors") {
		cfg["add_ancestors"] = strconv.FormatBool(fetchAddAncestors)
	} else if configBool(backend + ".add_ancestors") {
		cfg["add_ancestors"] = "true"
	}
	if n := firstPositive(fetchWorkers, configInt(backend+".workers")); n > 0 {
		cfg["workers"] = strconv.Itoa(n)
	}

	switch backend {
	case confluence.BackendName:
		if n := firstPositive(fetchMaxContents, configInt("confluence.max_contents")); n > 0 {
			cfg["max_contents"] = strconv.Itoa(n)
		}
		if fetchStart > 0 {
			cfg["start"] = strconv.Itoa(fetchStart)
		}
		// harvest.workers is the default of the concurrent backends only.
		if _, ok := cfg["workers"]; !ok {
			if n := configInt("harvest.workers"); n > 0 {
				cfg["workers"] = strconv.Itoa(n)
			}
		}
	case discourse.BackendName:
		if n := firstPositive(fetchMaxTopics, configInt("discourse.max_topics")); n > 0 {
			cfg["max_topics"] = strconv.Itoa(n)
		}
	}
	return cfg
}

// transportConfig builds the HTTP client configuration.
// Discourse authenticates with Api-Key headers, every other backend with
// a bearer token or basic auth.
func transportConfig(backend string) httpclient.Config {
	cfg := httpclient.DefaultConfig()

	if v, ok := configValue("transport.rate"); ok && v != nil {
		cfg.Rate = configFloat("transport.rate")
	}
	if n := configInt("transport.burst"); n > 0 {
		cfg.Burst = n
	}
	if n := configInt("transport.max_in_flight"); n > 0 {
		cfg.MaxInFlight = int64(n)
	}
	if s := configString("transport.timeout"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.Timeout = d
		} else {
			logger.Warn("Ignoring invalid transport.timeout %q: %v", s, err)
		}
	}
	if s := configString("transport.user_agent"); s != "" {
		cfg.UserAgent = s
	}

	token := firstNonEmpty(fetchToken, os.Getenv(envToken))
	username := firstNonEmpty(fetchUsername, os.Getenv(envUsername))

	if backend == discourse.BackendName {
		if token != "" {
			cfg.Headers = map[string]string{"Api-Key": token}
			if username != "" {
				cfg.Headers["Api-Username"] = username
			}
		}
		return cfg
	}

	cfg.Token = token
	if token != "" {
		cfg.Username = username
	}
	return cfg
}

// parseFromDate accepts a bare date or any server timestamp format.
func parseFromDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := connectors.ParseTime(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: from-date %q", domain.ErrInvalidInput, s)
	}
	return t, nil
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
