//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/medtrack/medtrack-service/internal/bootstrap"
	"github.com/medtrack/medtrack-service/internal/domain/auth"
	"github.com/medtrack/medtrack-service/internal/domain/caregiver"
	"github.com/medtrack/medtrack-service/internal/domain/medication"
	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
	"github.com/medtrack/medtrack-service/internal/infra/config"
	"github.com/medtrack/medtrack-service/internal/infra/overpass"
	httpiface "github.com/medtrack/medtrack-service/internal/interface/http"
	"github.com/medtrack/medtrack-service/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		providePharmacyConfig,
		providePgxPool,
		provideUserRepository,
		provideMedicationRepository,
		provideCaregiverRepository,
		providePharmacyRepository,
		providePlacesCache,
		providePlacesClient,
		auth.NewService,
		medication.NewService,
		pharmacy.NewService,
		caregiver.NewService,
		wire.Bind(new(pharmacy.PlacesClient), new(*overpass.Client)),
		httpiface.NewHandler,
		httpiface.NewAuthHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
