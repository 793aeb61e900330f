// Package di wires the application together with google/wire. Providers are
// kept small and explicit; regenerate wire_gen.go with `wire ./...` after
// changing the provider set.
package di

import (
	"go.uber.org/zap"

	"knowflow-backend/application/ports"
	"knowflow-backend/application/services"
	"knowflow-backend/domain/core/validators"
	"knowflow-backend/domain/risk"
	"knowflow-backend/infrastructure/config"
	"knowflow-backend/infrastructure/persistence/memory"
	"knowflow-backend/interfaces/http/rest"
	"knowflow-backend/interfaces/http/rest/handlers"
	"knowflow-backend/pkg/errors"
	"knowflow-backend/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideProcessRepository creates the in-memory process repository
func ProvideProcessRepository() ports.ProcessRepository {
	return memory.NewInMemoryProcessStore()
}

// ProvideCandidateValidator creates the extraction candidate validator
func ProvideCandidateValidator() *validators.CandidateValidator {
	return validators.NewCandidateValidator()
}

// ProvideMetrics creates the Prometheus collector
func ProvideMetrics() *observability.Collector {
	return observability.NewCollector("knowflow")
}

// ProvideRiskEngine creates the risk engine with the full rule registry
func ProvideRiskEngine(logger *zap.Logger) *risk.Engine {
	return risk.NewEngine(logger)
}

// ProvideErrorHandler creates the shared HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *errors.ErrorHandler {
	return errors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideProcessService creates the process registry service
func ProvideProcessService(repo ports.ProcessRepository, logger *zap.Logger) *services.ProcessService {
	return services.NewProcessService(repo, logger)
}

// ProvideGraphService creates the graph service
func ProvideGraphService(
	repo ports.ProcessRepository,
	validator *validators.CandidateValidator,
	metrics *observability.Collector,
	cfg *config.Config,
	logger *zap.Logger,
) *services.GraphService {
	return services.NewGraphService(repo, validator, metrics, cfg.MaxMergeBatch, logger)
}

// ProvideRiskService creates the risk service
func ProvideRiskService(
	repo ports.ProcessRepository,
	engine *risk.Engine,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.RiskService {
	return services.NewRiskService(repo, engine, metrics, logger)
}

// ProvideProcessHandler creates the process handler
func ProvideProcessHandler(service *services.ProcessService, errorOut *errors.ErrorHandler, logger *zap.Logger) *handlers.ProcessHandler {
	return handlers.NewProcessHandler(service, errorOut, logger)
}

// ProvideGraphHandler creates the graph handler
func ProvideGraphHandler(service *services.GraphService, errorOut *errors.ErrorHandler, logger *zap.Logger) *handlers.GraphHandler {
	return handlers.NewGraphHandler(service, errorOut, logger)
}

// ProvideRiskHandler creates the risk handler
func ProvideRiskHandler(service *services.RiskService, errorOut *errors.ErrorHandler, logger *zap.Logger) *handlers.RiskHandler {
	return handlers.NewRiskHandler(service, errorOut, logger)
}

// ProvideRouter creates the configured HTTP router
func ProvideRouter(
	cfg *config.Config,
	processHandler *handlers.ProcessHandler,
	graphHandler *handlers.GraphHandler,
	riskHandler *handlers.RiskHandler,
	metrics *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(cfg, processHandler, graphHandler, riskHandler, metrics, logger)
}
