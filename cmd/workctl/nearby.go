package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/work-near-me/client/internal/domain"
	"github.com/work-near-me/client/internal/feed"
	"github.com/work-near-me/client/internal/location"
)

func newNearbyCmd(a *app) *cobra.Command {
	var (
		radius   float64
		lat, lng float64
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List open jobs near your location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(); err != nil {
				return err
			}
			ctx := cmd.Context()

			resolver := location.NewResolver(a.buildProvider(cmd.Flags().Changed("lat"), lat, lng), a.log)
			search := feed.NewService(a.client, a.log)
			ctrl := feed.NewController(search, resolver, a.log)

			done := make(chan feed.Snapshot, 16)
			unsub := ctrl.Subscribe(func(s feed.Snapshot) {
				if !s.Loading {
					done <- s
				}
			})
			defer unsub()

			if cmd.Flags().Changed("radius") {
				// Snap/clamp happens inside the controller; seed before Start
				// so only one search goes out.
				ctrl.SetRadius(ctx, radius)
			}
			ctrl.Start(ctx)

			if !watch {
				printSnapshot(<-done)
				return nil
			}

			watcher := feed.NewWatcher(ctrl, a.cfg.WatchInterval, a.log)
			if err := watcher.Start(ctx); err != nil {
				return err
			}
			defer watcher.Stop()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
			for {
				select {
				case snap := <-done:
					printSnapshot(snap)
				case <-quit:
					fmt.Println("watch stopped")
					return nil
				case <-ctx.Done():
					return nil
				}
			}
		},
	}

	cmd.Flags().Float64VarP(&radius, "radius", "r", feed.DefaultRadiusKm, "search radius in km (0.5–5)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "override latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "override longitude")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing the feed")
	return cmd
}

// buildProvider picks the position source: an explicit flag beats the
// configured fixed position beats IP geolocation. A nil provider means the
// resolver goes straight to the fallback.
func (a *app) buildProvider(flagSet bool, lat, lng float64) location.Provider {
	if flagSet {
		return location.Static{Pos: domain.Position{Lat: lat, Lng: lng}}
	}
	if a.cfg.HasFixedPosition {
		return location.Static{Pos: domain.Position{Lat: a.cfg.FixedLat, Lng: a.cfg.FixedLng}}
	}
	if a.cfg.GeoEndpoint != "" {
		return location.NewIPGeo(a.cfg.GeoEndpoint, a.cfg.LocationTimeout, a.cfg.LocationMaxAge)
	}
	return nil
}

func printSnapshot(s feed.Snapshot) {
	if s.Err != nil {
		fmt.Printf("search failed: %v\n", s.Err)
		return
	}
	fmt.Printf("%d job(s) within %.1f km of (%.6f, %.6f)\n",
		len(s.Jobs), s.RadiusKm, s.Position.Lat, s.Position.Lng)
	for _, job := range s.Jobs {
		fmt.Printf("  %-8s %-36s %9.0f đ/h  %s\n",
			formatDistance(job.Distance), job.Title, job.HourlyRate, job.ID)
	}
}

func formatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%.0fm", km*1000)
	}
	return fmt.Sprintf("%.1fkm", km)
}
