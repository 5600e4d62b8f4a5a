package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cbodonnell/codenames/pkg/api"
	"github.com/cbodonnell/codenames/pkg/clients"
	"github.com/cbodonnell/codenames/pkg/game"
	"github.com/cbodonnell/codenames/pkg/log"
	"github.com/cbodonnell/codenames/pkg/network"
	"github.com/cbodonnell/codenames/pkg/version"
	"github.com/cbodonnell/codenames/pkg/words"
	"github.com/joho/godotenv"
)

func main() {
	port := flag.Int("port", 8000, "Port to listen on")
	logLevel := flag.String("log-level", "info", "Log level")
	tlsCertFile := flag.String("tls-cert", "", "TLS certificate file")
	tlsKeyFile := flag.String("tls-key", "", "TLS key file")
	flag.Parse()

	// Optional .env for local development
	_ = godotenv.Load()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wordSupply, err := words.NewSupply(words.NewSupplyOptions{
		DBPath:   os.Getenv("WORDS_DB"),
		FilePath: os.Getenv("WORDS_FILE"),
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to load word supply: %v", err))
	}
	log.Info("Word supply loaded with %d words", wordSupply.Len())

	gameService := game.NewService(game.NewServiceOptions{
		Words: wordSupply,
	})
	clientManager := clients.NewClientManager()

	wsHandler := network.NewWSHandler(network.NewWSHandlerOptions{
		GameService:   gameService,
		ClientManager: clientManager,
	})

	var tlsConfig *api.TLSConfig
	if *tlsCertFile != "" && *tlsKeyFile != "" {
		tlsConfig = &api.TLSConfig{
			CertFile: *tlsCertFile,
			KeyFile:  *tlsKeyFile,
		}
	}

	apiServer := api.NewAPIServer(api.NewAPIServerOptions{
		Port:        *port,
		TLS:         tlsConfig,
		GameService: gameService,
		WSHandler:   wsHandler,
	})
	go apiServer.Start()

	<-ctx.Done()
	log.Info("Shutting down")
	if err := apiServer.Stop(context.Background()); err != nil {
		log.Error("Failed to stop API server: %v", err)
	}
}
