// Command feed streams a DRAT text proof from stdin to a running satstream
// ingest server, using the server's configuration for the address.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"satstream/internal/configuration"
	"satstream/internal/ingest"
	"satstream/internal/logging"
	"satstream/internal/network"
	"satstream/internal/sat"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	config, err := configuration.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Init(config.Application.LogLevel)

	if err := run(ctx, config.Transport.ListenAddr(), config.Instance.Path); err != nil {
		slog.Error("feed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, target, instancePath string) error {
	offer := network.Offer{Kind: network.OfferProof, SolverName: "feed"}
	if instancePath != "" {
		hash, err := ingest.HashInstanceFile(instancePath)
		if err != nil {
			return err
		}
		offer.InstanceHash = hash
	}

	client, err := ingest.Dial(target)
	if err != nil {
		return err
	}
	defer client.Close()

	stream, err := client.OpenStream(ctx, ingest.DefaultChunkSize)
	if err != nil {
		return err
	}
	if err := stream.SendOffer(offer); err != nil {
		return err
	}

	sent := 0
	err = ingest.ReadTextProof(os.Stdin, func(u sat.ClauseUpdate) error {
		sent++
		return stream.SendClauseUpdate(u)
	})
	if err != nil {
		return fmt.Errorf("read proof: %w", err)
	}

	accepted, err := stream.CloseAndRecv()
	if err != nil {
		return err
	}
	slog.Info("feed complete", "sent", sent, "accepted", accepted)
	return nil
}
