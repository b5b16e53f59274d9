package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newStationsCmd(v *viper.Viper, factory RuntimeFactory) *cobra.Command {
	var (
		lat, lon float64
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List the stations nearest to a point",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := factory(cmd.Context(), v)
			if err != nil {
				return fmt.Errorf("starting: %w", err)
			}

			stations, err := rt.Stations.FindNearestStations(cmd.Context(), lat, lon, limit)
			if err != nil {
				return fmt.Errorf("finding stations: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), RenderStations(stations))
			return nil
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of stations to list")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}
