package main

import (
	"fmt"
	"io"

	"backend-bandoxanh/internal/location"
	"backend-bandoxanh/internal/mapview"
	"backend-bandoxanh/internal/shared/geo"

	"github.com/spf13/cobra"
)

func newMapCmd(a *app) *cobra.Command {
	var (
		category string
		search   string
		radius   int
		lat, lng float64
	)

	cmd := &cobra.Command{
		Use:   "map",
		Short: "List points of interest, nearest first when a location is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			var loc location.Locator = location.Unavailable{}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				loc = location.Static(geo.Point{Latitude: lat, Longitude: lng})
			}
			session := location.NewSession(a.logger().Named("location"))
			session.Acquire(cmd.Context(), loc)

			q := mapview.NewQuery()
			q.Category = mapview.Category(category)
			q.Search = search
			q.RadiusKm = radius
			q.User = session.Current()
			if err := q.Validate(); err != nil {
				return err
			}

			lists, err := c.Sources(cmd.Context())
			if err != nil {
				return err
			}
			printItems(cmd.OutOrStdout(), mapview.Filter(q, lists))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", string(mapview.CategoryAll), "all, stations, events, bikes, food or donation")
	cmd.Flags().StringVar(&search, "q", "", "match name or address")
	cmd.Flags().IntVar(&radius, "radius", mapview.DefaultRadiusKm, "radius in km (1-50), applied when a location is given")
	cmd.Flags().Float64Var(&lat, "lat", 0, "your latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "your longitude")
	return cmd
}

func printItems(w io.Writer, items []mapview.ItemWithDistance) {
	if len(items) == 0 {
		fmt.Fprintln(w, "no results")
		return
	}
	for _, item := range items {
		dist := "-"
		if item.DistanceKm != nil {
			dist = fmt.Sprintf("%.2f km", *item.DistanceKm)
		}
		fmt.Fprintf(w, "%-10s %9s  %s  (%s)\n", item.Kind.Label(), dist, item.Name, item.Address)
		if summary := item.Summary(); summary != "" {
			fmt.Fprintf(w, "  %s\n", summary)
		}
	}
}
