package main

import (
	"context"
	"fmt"
	"log/slog"
	"satstream/internal/configuration/properties"
	"satstream/internal/coordinator"
	"satstream/internal/graph"
	"satstream/internal/ingest"
	"satstream/internal/metrics"
	"satstream/internal/processing"

	"golang.org/x/sync/errgroup"
)

type Services struct {
	Coordinator *coordinator.Coordinator
	Model       *graph.Model
	Ingest      *ingest.Server
	Metrics     *metrics.Server

	playback *properties.CoordinatorConfigProperties
}

func NewServices(cfg properties.ConfigProvider) (*Services, error) {
	proc := cfg.GetProcessing()

	heatmap, err := processing.NewHeatmap(proc.HeatmapSize)
	if err != nil {
		return nil, err
	}
	interaction, err := processing.NewInteractionGraph(proc.WeightFactor)
	if err != nil {
		return nil, err
	}

	model := graph.NewModel()
	coord, err := coordinator.New(
		coordinator.NewConfigFromProperties(cfg.GetCoordinator()),
		model,
		heatmap,
		interaction,
	)
	if err != nil {
		return nil, fmt.Errorf("create coordinator: %w", err)
	}

	coord.RegisterChangeListener(func(current int64) {
		slog.Debug("visualization changed",
			"update", current,
			"nodes", model.NodeCount(),
			"edges", model.EdgeCount(),
		)
	})

	var opts []ingest.Option
	if path := cfg.GetInstance().Path; path != "" {
		hash, err := ingest.HashInstanceFile(path)
		if err != nil {
			_ = coord.Close()
			return nil, err
		}
		slog.Info("validating producers against instance", "path", path, "hash", fmt.Sprintf("%016x", hash))
		opts = append(opts, ingest.WithInstanceHash(hash))
	}

	s := &Services{
		Coordinator: coord,
		Model:       model,
		Ingest:      ingest.NewServer(cfg.GetTransport(), ingest.NewDispatcher(coord, opts...)),
		playback:    cfg.GetCoordinator(),
	}

	if m := cfg.GetMetrics(); m.Enabled {
		s.Metrics = metrics.NewServer(m.Address, func() error {
			if coord.Closed() {
				return coordinator.ErrClosed
			}
			return nil
		})
	}
	return s, nil
}

// Run serves ingest, metrics and playback until ctx is done or one of them
// fails, then closes the coordinator.
func (s *Services) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Ingest.Run(ctx)
	})

	if s.Metrics != nil {
		g.Go(func() error {
			return s.Metrics.Run(ctx)
		})
	}

	g.Go(func() error {
		return s.Coordinator.RunPlayback(ctx, s.playback.PlaybackDuration(), s.playback.PlaybackBatch)
	})

	err := g.Wait()
	if cerr := s.Coordinator.Close(); cerr != nil {
		slog.Error("failed to close coordinator", "error", cerr)
	}
	return err
}
