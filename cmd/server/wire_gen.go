// Injector implementations for wire.go. Running go generate in this directory
// regenerates this file with the wire tool; keep it in step with the provider sets.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package main

import (
	"property_connect_backend/internal/app"
	"property_connect_backend/internal/auth"
	"property_connect_backend/internal/config"
	"property_connect_backend/internal/favorite"
	"property_connect_backend/internal/filestorage"
	"property_connect_backend/internal/jobs"
	"property_connect_backend/internal/middleware"
	"property_connect_backend/internal/platform/cache"
	"property_connect_backend/internal/platform/elasticsearch"
	"property_connect_backend/internal/platform/logger"
	"property_connect_backend/internal/profile"
	"property_connect_backend/internal/property"
	"property_connect_backend/internal/propertyview"
	"property_connect_backend/internal/search"
	"property_connect_backend/internal/settings"
	"property_connect_backend/internal/upload"
	"property_connect_backend/internal/user"
)

// Injectors from wire.go:

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	zapLogger, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	db, cleanup, err := app.NewDatabase(cfg, zapLogger)
	if err != nil {
		return nil, nil, err
	}
	repository := user.NewGORMRepository(db)
	serviceImplementation := user.NewService(repository, zapLogger)
	jwtService := auth.NewJWTService(cfg, zapLogger)
	inMemoryBlocklistService := auth.NewSessionBlocklist(cfg)
	oAuthService := auth.NewOAuthService(cfg, serviceImplementation, zapLogger)
	handler := auth.NewHandler(oAuthService, jwtService, inMemoryBlocklistService, serviceImplementation, cfg, zapLogger)
	userHandler := user.NewHandler(serviceImplementation, zapLogger)
	profileRepository := profile.NewGORMRepository(db)
	profileServiceImplementation := profile.NewService(profileRepository, serviceImplementation, zapLogger)
	profileHandler := profile.NewHandler(profileServiceImplementation, zapLogger)
	propertyRepository := property.NewGORMRepository(db)
	propertyviewRepository := propertyview.NewGORMRepository(db)
	tracker := propertyview.NewTracker(propertyviewRepository, cfg, zapLogger)
	esClientWrapper, err := elasticsearch.NewClient(cfg, zapLogger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	indexer := search.NewIndexer(esClientWrapper, zapLogger)
	cacheCache, cleanup2, err := cache.New(cfg, zapLogger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	propertyServiceImplementation := property.NewService(propertyRepository, tracker, profileServiceImplementation, indexer, cacheCache, cfg, zapLogger)
	propertyHandler := property.NewHandler(propertyServiceImplementation, zapLogger)
	favoriteRepository := favorite.NewGORMRepository(db)
	service := favorite.NewService(favoriteRepository, propertyRepository, zapLogger)
	favoriteHandler := favorite.NewHandler(service, zapLogger)
	settingsRepository := settings.NewGORMRepository(db)
	settingsServiceImplementation := settings.NewService(settingsRepository, cacheCache, zapLogger)
	settingsHandler := settings.NewHandler(settingsServiceImplementation, zapLogger)
	storage, err := filestorage.NewStorage(cfg, zapLogger)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	uploadHandler := upload.NewHandler(storage, cfg, zapLogger)
	handlers := app.Handlers{
		Auth:     handler,
		User:     userHandler,
		Profile:  profileHandler,
		Property: propertyHandler,
		Favorite: favoriteHandler,
		Settings: settingsHandler,
		Upload:   uploadHandler,
	}
	authenticator := middleware.NewAuthenticator(jwtService, inMemoryBlocklistService, serviceImplementation, cfg, zapLogger)
	searchReindexJob := jobs.NewSearchReindexJob(propertyServiceImplementation, indexer, cfg, zapLogger)
	server, err := app.NewServer(cfg, zapLogger, handlers, authenticator, profileServiceImplementation, searchReindexJob, esClientWrapper)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	return server, func() {
		cleanup2()
		cleanup()
	}, nil
}
