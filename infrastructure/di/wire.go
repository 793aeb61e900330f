//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"knowflow-backend/infrastructure/config"
	"knowflow-backend/interfaces/http/rest"
	"knowflow-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector
	Router  *rest.Router
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideProcessRepository,
	ProvideCandidateValidator,
	ProvideMetrics,
	ProvideRiskEngine,
	ProvideErrorHandler,
	ProvideProcessService,
	ProvideGraphService,
	ProvideRiskService,
	ProvideProcessHandler,
	ProvideGraphHandler,
	ProvideRiskHandler,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
