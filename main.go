package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"feedboard/app/config"
	"feedboard/app/gql"
	"feedboard/app/realtime"
	"feedboard/app/repositories"
	"feedboard/app/routes"
	"feedboard/app/services"
	"feedboard/app/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

const cliVersion = "1.0.0"

var exit = os.Exit

func main() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("feedboard version %s\n", cliVersion)
	case "serve":
		serve()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: feedboard <command>
Commands:
  help         Display this help message.
  version      Show version information.
  serve        Run the feed API server (REST + GraphQL + websocket).
`
	fmt.Println(helpText)
}

// serve opens the store, wires every component, and runs the HTTP server.
func serve() {
	cfg := config.FromEnv()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	opts := badger.DefaultOptions(cfg.DataDir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open Badger DB")
	}
	defer db.Close()

	postRepo := repositories.NewBadgerPostRepository(db)
	userRepo := repositories.NewBadgerUserRepository(db)

	blobs, err := storage.NewDiskStore(cfg.ImagesDir, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open blob store")
	}

	// The hub must exist before the first mutation or socket connect.
	hub := realtime.Init(logger)

	feedService := services.NewFeedService(postRepo, userRepo, blobs, hub, cfg.PerPage, logger)
	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecret), time.Hour, logger)

	graphqlHandler, err := gql.NewHandler(feedService, authService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build GraphQL schema")
	}

	router := routes.Setup(routes.Deps{
		Feed:      feedService,
		Auth:      authService,
		Blobs:     blobs,
		Hub:       hub,
		ImagesDir: cfg.ImagesDir,
		GraphQL:   graphqlHandler,
		Log:       logger,
	})

	logger.Info().Str("addr", cfg.ListenAddr).Msg("starting feed API server")
	if err := routes.StartServer(cfg.ListenAddr, router); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
