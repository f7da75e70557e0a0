package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/zatekoja/akutvagt/backend/internal/app"
	"github.com/zatekoja/akutvagt/backend/internal/domain/entities"
	"github.com/zatekoja/akutvagt/backend/internal/infrastructure/observability"
	"github.com/zatekoja/akutvagt/backend/pkg/config"
	"github.com/zatekoja/akutvagt/backend/pkg/geo"
)

var (
	statsWindow string
	statsOut    string
)

// openContainer is replaced in tests
var openContainer = func(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	observability.InitLogger("akutctl", cfg.Server.Env, cfg.Server.LogLevel)
	return app.New(ctx, cfg, nil)
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "akutctl",
	Short:         "Administer the akutvagt emergency tradesperson directory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// seedCmd loads the sample providers into an empty store
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed an empty store with the sample providers",
	Long: `Seed an empty store with the sample providers.

The store is selected with STORE_BACKEND. Seeding a store that already
holds providers fails without changing anything.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

// statsCmd exports click statistics as CSV
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Export provider click statistics as CSV",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

// distanceCmd prints the great-circle distance between two points
var distanceCmd = &cobra.Command{
	Use:   "distance <lat1> <lon1> <lat2> <lon2>",
	Short: "Print the distance in kilometres between two coordinates",
	Args:  cobra.ExactArgs(4),
	RunE:  runDistance,
}

func init() {
	statsCmd.Flags().StringVar(&statsWindow, "window", string(entities.WindowAll), "Time window: all, today, week or month")
	statsCmd.Flags().StringVarP(&statsOut, "out", "o", "", "Output file (default: stdout)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(distanceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runSeed(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := openContainer(ctx)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, c.Close()) }()

	n, err := c.ProviderService.Initialize(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d providers\n", n)
	return nil
}

func runStats(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	window, err := entities.ParseTimeWindow(statsWindow)
	if err != nil {
		return err
	}

	c, err := openContainer(ctx)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, c.Close()) }()

	var out io.Writer = cmd.OutOrStdout()
	if statsOut != "" {
		f, err := os.Create(statsOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", statsOut, err)
		}
		defer func() { err = multierr.Append(err, f.Close()) }()
		out = f
	}

	return c.StatsService.ExportCSV(ctx, window, out)
}

func runDistance(cmd *cobra.Command, args []string) error {
	coords := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q", arg)
		}
		coords[i] = v
	}

	from := entities.Location{Latitude: coords[0], Longitude: coords[1]}
	to := entities.Location{Latitude: coords[2], Longitude: coords[3]}
	if !from.Valid() || !to.Valid() {
		return fmt.Errorf("coordinates out of range")
	}

	km := geo.Distance(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	fmt.Fprintf(cmd.OutOrStdout(), "%.1f km\n", km)
	return nil
}
