package cli

import (
	"errors"
	"fmt"

	"github.com/bbernstein/tidetimes/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var errNoStation = errors.New("no station given: use --station or --lat and --lon, or save one with --save")

type showOptions struct {
	station string
	lat     float64
	lon     float64
	mode    string
	save    bool
	width   int
}

func newShowCmd(v *viper.Viper, factory RuntimeFactory) *cobra.Command {
	opts := &showOptions{}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the tide at a station",
		Long: `Shows the tide at the given station, at the station nearest to --lat and
--lon, or at the saved station when neither is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShow(cmd, v, factory, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.station, "station", "s", "", "NOAA station ID")
	flags.Float64Var(&opts.lat, "lat", 0, "latitude to find the nearest station")
	flags.Float64Var(&opts.lon, "lon", 0, "longitude to find the nearest station")
	flags.StringVarP(&opts.mode, "mode", "m", "", "chart mode: compact or day (default from config)")
	flags.BoolVar(&opts.save, "save", false, "remember the station for later runs")
	flags.IntVar(&opts.width, "width", 60, "chart width in columns")
	cmd.MarkFlagsRequiredTogether("lat", "lon")

	return cmd
}

func runShow(cmd *cobra.Command, v *viper.Viper, factory RuntimeFactory, opts *showOptions) error {
	modeName := opts.mode
	if modeName == "" {
		modeName = v.GetString(keyMode)
	}
	mode, err := models.ParseChartMode(modeName)
	if err != nil {
		return err
	}

	saved := v.GetString(keyStation)
	if opts.station == "" && !cmd.Flags().Changed("lat") && saved == "" {
		return errNoStation
	}

	ctx := cmd.Context()
	rt, err := factory(ctx, v)
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}

	var summary *models.TideSummary
	switch {
	case opts.station != "":
		summary, err = rt.Tides.GetSummaryForStation(ctx, opts.station, mode)
	case cmd.Flags().Changed("lat"):
		summary, err = rt.Tides.GetSummary(ctx, opts.lat, opts.lon, mode)
	default:
		summary, err = rt.Tides.GetSummaryForStation(ctx, saved, mode)
	}
	if err != nil {
		return fmt.Errorf("getting tide summary: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), RenderSummary(summary, opts.width))

	if opts.save {
		path, err := saveStation(v, summary.StationID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved station %s to %s\n", summary.StationID, path)
	}

	return nil
}

func saveStation(v *viper.Viper, stationID string) (string, error) {
	path, err := configPath(v)
	if err != nil {
		return "", err
	}

	v.Set(keyStation, stationID)
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("saving config: %w", err)
	}
	return path, nil
}
