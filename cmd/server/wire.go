// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

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
	platformElasticsearch "property_connect_backend/internal/platform/elasticsearch"
	"property_connect_backend/internal/platform/logger"
	"property_connect_backend/internal/profile"
	"property_connect_backend/internal/property"
	"property_connect_backend/internal/propertyview"
	"property_connect_backend/internal/search"
	"property_connect_backend/internal/settings"
	"property_connect_backend/internal/upload"
	"property_connect_backend/internal/user"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	logger.New,
	app.NewDatabase,
	cache.New,
	platformElasticsearch.NewClient,
	search.NewIndexer,
	wire.Bind(new(property.SearchIndexer), new(*search.Indexer)),
	wire.Bind(new(jobs.SearchStatus), new(*search.Indexer)),
)

var accountSet = wire.NewSet(
	user.NewGORMRepository,
	user.NewService,
	wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
	wire.Bind(new(middleware.DevUserProvider), new(*user.ServiceImplementation)),
	user.NewHandler,

	profile.NewGORMRepository,
	profile.NewService,
	wire.Bind(new(profile.Service), new(*profile.ServiceImplementation)),
	wire.Bind(new(middleware.AdminChecker), new(*profile.ServiceImplementation)),
	wire.Bind(new(property.AdminChecker), new(*profile.ServiceImplementation)),
	profile.NewHandler,

	auth.NewJWTService,
	wire.Bind(new(auth.TokenService), new(*auth.JWTService)),
	auth.NewSessionBlocklist,
	wire.Bind(new(auth.TokenBlocklistService), new(*auth.InMemoryBlocklistService)),
	auth.NewOAuthService,
	auth.NewHandler,
	middleware.NewAuthenticator,
)

var listingSet = wire.NewSet(
	propertyview.NewGORMRepository,
	propertyview.NewTracker,
	wire.Bind(new(property.ViewTracker), new(*propertyview.Tracker)),

	property.NewGORMRepository,
	property.NewService,
	wire.Bind(new(property.Service), new(*property.ServiceImplementation)),
	wire.Bind(new(jobs.Reindexer), new(*property.ServiceImplementation)),
	property.NewHandler,

	wire.Bind(new(favorite.PropertyLookup), new(property.Repository)),
	favorite.NewGORMRepository,
	favorite.NewService,
	favorite.NewHandler,

	settings.NewGORMRepository,
	settings.NewService,
	wire.Bind(new(settings.Service), new(*settings.ServiceImplementation)),
	settings.NewHandler,

	filestorage.NewStorage,
	upload.NewHandler,

	jobs.NewSearchReindexJob,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		platformSet,
		accountSet,
		listingSet,
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}
