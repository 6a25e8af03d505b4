package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/stowage/stowage/cmd/flags"
	"github.com/stowage/stowage/common"
	"github.com/stowage/stowage/httpserver"
	"github.com/stowage/stowage/interfaces"
	"github.com/stowage/stowage/storage"
)

var cliFlags = append([]cli.Flag{
	flags.ListenAddrFlag,
	flags.StorageURIFlag,
	flags.LogServiceFlagFn("stowage-server"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:    "stowage-server",
		Usage:   "Serve the storage file API over a configured backend",
		Version: common.Version,
		Flags:   cliFlags,
		Action: func(cCtx *cli.Context) error {
			listenAddr := cCtx.String(flags.ListenAddrFlag.Name)
			storageURI := cCtx.String(flags.StorageURIFlag.Name)

			// Setup logger
			logger := flags.SetupLogger(cCtx)

			// Resolve the backend from its location URI
			factory := storage.NewStorageBackendFactory(logger)
			store, err := factory.NewStorageFor(interfaces.StorageBackendLocation(storageURI))
			if err != nil {
				logger.Error("Failed to set up storage backend", "err", err, "uri", storageURI)
				return err
			}
			logger.Info("Storage backend ready", "backend", store.Backend().Name())

			handler := httpserver.NewHandler(store, logger)
			server, err := httpserver.New(flags.ConfigureServer(cCtx, logger, listenAddr), handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			logger.Info("Starting server")
			server.RunInBackground()

			// Wait for termination signal
			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			// Shutdown server gracefully
			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
