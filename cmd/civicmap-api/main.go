// Command civicmap-api is the civic-map service entrypoint: a cobra root
// command exposing "serve" (the HTTP API) and "fix-event-address-location"
// (a best-effort batch geocode pass, spec.md §6), mirroring the teacher's
// single main.go that builds one config, one store, and one server, then
// wires them together without package-level globals.
package main

import (
	"context"
	"encoding/hex"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"civicmap/internal/authsvc"
	"civicmap/internal/config"
	"civicmap/internal/flows"
	"civicmap/internal/geo"
	"civicmap/internal/geocode"
	"civicmap/internal/httpapi"
	"civicmap/internal/notify"
	"civicmap/internal/repo"
	"civicmap/internal/searchindex"
	"civicmap/internal/sqlitestore"
	"civicmap/internal/usecases"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	root := &cobra.Command{
		Use:   "civicmap-api",
		Short: "civic-map backend: places, events, ratings, and moderation",
	}
	root.PersistentFlags().SortFlags = false
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(serveCmd(logger))
	root.AddCommand(fixEventAddressLocationCmd(logger))

	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func serveCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			deps, err := build(cfg, logger)
			if err != nil {
				return err
			}
			defer deps.store.Close()

			httpSrv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           deps.server.Router(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				logger.Info("listening", zap.String("addr", cfg.Addr))
				if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("server", zap.Error(err))
				}
			}()

			stop := make(chan os.Signal, 2)
			signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
			<-stop
			logger.Info("shutting down")
			return httpSrv.Close()
		},
	}
}

// fixEventAddressLocationCmd re-geocodes every event whose address lacks
// coordinates, best-effort: failures are logged and skipped rather than
// aborting the batch (spec.md §6/§7).
func fixEventAddressLocationCmd(logger *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "fix-event-address-location",
		Short: "re-geocode events missing coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			deps, err := build(cfg, logger)
			if err != nil {
				return err
			}
			defer deps.store.Close()

			ctx := context.Background()
			events, err := deps.eventRepo.AllEvents(ctx)
			if err != nil {
				return err
			}

			fixed := 0
			for _, event := range events {
				if !event.Live() || event.Location == nil || event.Location.Address == nil {
					continue
				}
				if event.Location.Pos != (geo.Point{}) {
					continue // already geocoded
				}
				addr := event.Location.Address
				pos, err := deps.geocode.Resolve(ctx, addr.Street, addr.Zip, addr.City, addr.Country)
				if err != nil {
					logger.Warn("geocode failed, skipping event",
						zap.String("event_id", event.ID.String()), zap.Error(err))
					continue
				}
				event.Location.Pos = pos
				if err := deps.eventRepo.UpdateEvent(ctx, event); err != nil {
					logger.Warn("saving geocoded event failed",
						zap.String("event_id", event.ID.String()), zap.Error(err))
					continue
				}
				fixed++
			}
			logger.Info("fix-event-address-location complete", zap.Int("fixed", fixed))
			return nil
		},
	}
}

type dependencies struct {
	store     *sqlitestore.Store
	eventRepo repo.EventRepo
	geocode   geocode.Gateway
	server    *httpapi.Server
}

// build wires every repository, use-case bundle, flow, and transport
// dependency the way the teacher's main wires api.New(cfg, app, st, logger):
// one construction site, everything passed down by value or interface.
func build(cfg config.Config, logger *zap.Logger) (dependencies, error) {
	store, err := sqlitestore.Open(cfg.DBURL)
	if err != nil {
		return dependencies{}, err
	}

	placeRepo := sqlitestore.NewPlaceRepo(store)
	eventRepo := sqlitestore.NewEventRepo(store)
	userRepo, tokenRepo := sqlitestore.NewUserRepo(store), sqlitestore.NewUserTokenRepo(store)
	ratingRepo, commentRepo := sqlitestore.NewRatingRepo(store), sqlitestore.NewCommentRepo(store)
	tagRepo := sqlitestore.NewTagRepo(store)
	categoryRepo := sqlitestore.NewCategoryRepo(store)
	orgRepo := sqlitestore.NewOrganizationRepo(store)
	subsRepo := sqlitestore.NewBboxSubscriptionRepo(store)

	index := searchindex.NewMemory()
	geocodeGateway := geocode.Stub{}
	notifyGateway := notify.NoopGateway{}

	hashKey, err := sessionKey(cfg.SessionHashKey, 32)
	if err != nil {
		return dependencies{}, err
	}
	blockKey, err := sessionKey(cfg.SessionBlockKey, 32)
	if err != nil {
		return dependencies{}, err
	}
	sessionCodec := authsvc.NewSessionCodec(hashKey, blockKey)

	placesFlow := flows.Places{
		Repos:   usecases.Places{Place: placeRepo, Tag: tagRepo, Org: orgRepo, Category: categoryRepo},
		Ratings: ratingRepo,
		Subs:    subsRepo,
		Index:   index,
		Gateway: notifyGateway,
		Log:     logger,
	}
	eventsFlow := flows.Events{
		Repos:   usecases.Events{Event: eventRepo, Tag: tagRepo, Org: orgRepo, Category: categoryRepo, User: userRepo},
		Subs:    subsRepo,
		Gateway: notifyGateway,
		Log:     logger,
	}

	srv := httpapi.New(httpapi.Server{
		Places:     placesFlow,
		Events:     eventsFlow,
		Users:      usecases.Users{User: userRepo, Token: tokenRepo},
		Ratings:    usecases.Ratings{Rating: ratingRepo, Comment: commentRepo, Place: placeRepo},
		PlaceRepo:  placeRepo,
		TagRepo:    tagRepo,
		Category:   categoryRepo,
		Org:        orgRepo,
		Subs:       subsRepo,
		Index:      index,
		Geocode:    geocodeGateway,
		Session:    sessionCodec,
		EnableCORS: cfg.EnableCORS,
		Log:        logger,
	})

	return dependencies{store: store, eventRepo: eventRepo, geocode: geocodeGateway, server: srv}, nil
}

// sessionKey decodes a hex-encoded key from config, or generates a random
// one when unset (development convenience; production deployments should
// pin a stable key so sessions survive restarts).
func sessionKey(hexKey string, size int) ([]byte, error) {
	if hexKey == "" {
		return securecookie.GenerateRandomKey(size), nil
	}
	return hex.DecodeString(hexKey)
}
