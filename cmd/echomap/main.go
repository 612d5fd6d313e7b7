package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"echomap/cmd/echomap/app"
	"echomap/internal/api"
	"echomap/internal/config"
	"echomap/internal/geo"
	"echomap/internal/identity"
	"echomap/internal/logging"
	"echomap/internal/record"
)

var (
	// Global flags
	configPath string
	serverURL  string
	verbose    bool
	lat        float64
	lng        float64

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd launches the interactive map client.
var rootCmd = &cobra.Command{
	Use:   "echomap",
	Short: "echomap - a sound memory atlas in your terminal",
	Long: `echomap is a terminal client for the Sound Memory service: a map of
geo-tagged audio stories annotated with emotions and AI-generated prose.

Run without arguments to start the interactive map. Subcommands offer
one-shot access to the same backend for scripts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if serverURL != "" {
			cfg.Server.URL = serverURL
		}
		if lat != 0 || lng != 0 {
			cfg.Latitude = lat
			cfg.Longitude = lng
		}
		level := logging.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = zap.DebugLevel
		}

		// Interactive mode owns the terminal; log to a file there.
		if cmd.Name() == cmd.Root().Name() {
			logger, err = logging.NewFileLogger(cfg.LogFile(), level)
		} else {
			logger, err = logging.NewStderrLogger(level)
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		m := app.New(cfg, logger)
		p := tea.NewProgram(m, tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

// recordsCmd prints the current map page.
var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List the most recent map records",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		ctx, cancel := timeoutCtx()
		defer cancel()

		recs, err := client.MapRecords(ctx, cfg.PageLimit)
		if err != nil {
			return err
		}
		printRecords("Map records", recs)
		return nil
	},
}

// feedsCmd fetches the three recommendation feeds for a city concurrently.
var feedsCmd = &cobra.Command{
	Use:   "feeds [city]",
	Short: "Show the resonance, culture and roaming feeds for a city",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		city := cfg.DefaultCity
		if len(args) > 0 {
			city = args[0]
		}
		client := newClient()
		ctx, cancel := timeoutCtx()
		defer cancel()

		pos := geo.Position{Lat: cfg.Latitude, Lng: cfg.Longitude}
		feeds, err := client.AllFeeds(ctx, city, time.Now().Hour(), pos)
		if err != nil {
			return err
		}
		for _, kind := range record.FeedKinds {
			printRecords(kind.Title()+" — "+city, feeds[kind])
		}
		return nil
	},
}

// uploadCmd sends one audio file to the map.
var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an audio recording at the configured position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos := geo.Position{Lat: cfg.Latitude, Lng: cfg.Longitude}
		if !pos.Valid() || pos.IsZero() {
			return fmt.Errorf("a position is required: pass --lat and --lng")
		}

		client := newClient()
		ctx, cancel := timeoutCtx()
		defer cancel()

		userID, err := bootstrapIdentity(ctx, client)
		if err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rec, err := client.Upload(ctx, args[0], f, pos, userID)
		if err != nil {
			return err
		}
		fmt.Printf("uploaded %s at %s\n", rec.ID, rec.Position)
		return nil
	},
}

// whoamiCmd runs the guest bootstrap and prints the resulting identity.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show (or provision) the persisted guest identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		ctx, cancel := timeoutCtx()
		defer cancel()

		id, err := bootstrapIdentity(ctx, client)
		if err != nil {
			return err
		}
		if id == "" {
			fmt.Println("no identity (backend unreachable); browsing only")
			return nil
		}
		fmt.Println(id)
		return nil
	},
}

func newClient() *api.Client {
	return api.NewClient(cfg.Server.URL,
		logging.For(logger, logging.CategoryAPI),
		api.WithAssetPrefix(cfg.Server.AssetPrefix))
}

func timeoutCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cfg.Server.Timeout)
}

func bootstrapIdentity(ctx context.Context, client *api.Client) (string, error) {
	boot := identity.NewBootstrapper(
		identity.NewFileStore(cfg.IdentityFile()),
		client,
		logging.For(logger, logging.CategoryIdentity))
	return boot.Bootstrap(ctx)
}

func printRecords(title string, recs []record.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"ID", "Emotion", "City", "District", "Position", "Likes", "Created"})
	for _, r := range recs {
		created := ""
		if !r.CreatedAt.IsZero() {
			created = r.CreatedAt.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{r.ID, r.Emotion, r.City, r.District, r.Position.String(), r.LikeCount, created})
	}
	if len(recs) == 0 {
		t.AppendRow(table.Row{"(empty)"})
	}
	t.Render()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().Float64Var(&lat, "lat", 0, "Latitude of the current position")
	rootCmd.PersistentFlags().Float64Var(&lng, "lng", 0, "Longitude of the current position")

	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(feedsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
