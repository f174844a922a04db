package app

import (
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	auditdomain "github.com/collegiumai/governance-backend/internal/domain/audit"
	governancedomain "github.com/collegiumai/governance-backend/internal/domain/governance"
	policydomain "github.com/collegiumai/governance-backend/internal/domain/policy"
	reportingdomain "github.com/collegiumai/governance-backend/internal/domain/reporting"
	"github.com/collegiumai/governance-backend/internal/infrastructure/config"
	"github.com/collegiumai/governance-backend/internal/infrastructure/storage"
	"github.com/collegiumai/governance-backend/internal/metrics"
	auditsvc "github.com/collegiumai/governance-backend/internal/service/audit"
	compliancesvc "github.com/collegiumai/governance-backend/internal/service/compliance"
	governancesvc "github.com/collegiumai/governance-backend/internal/service/governance"
	policysvc "github.com/collegiumai/governance-backend/internal/service/policy"
	reportingsvc "github.com/collegiumai/governance-backend/internal/service/reporting"
)

// App is the process-wide context object. It is constructed once at
// startup and passed by reference to every consumer; engines never
// reach for module-level state.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Prometheus *prometheus.Registry
	Metrics    *metrics.Registry

	Compliance  *compliancesvc.Engine
	Audits      *auditsvc.Manager
	Policies    *policysvc.Engine
	Reporting   *reportingsvc.Engine
	Integration *governancesvc.Integration
}

// New wires configuration, stores, and engines together.
func New(cfg *config.Config, logger *zap.Logger) *App {
	promRegistry := prometheus.NewRegistry()
	registry := metrics.NewRegistry(promRegistry)

	complianceEngine := compliancesvc.NewEngine(logger)
	complianceEngine.Register(compliancesvc.NewAACSBAssessor(cfg.Scoring, logger))
	complianceEngine.Register(compliancesvc.NewWASCAssessor(cfg.Scoring, logger))

	auditStore := storage.NewCollection[*auditdomain.Audit](
		filepath.Join(cfg.DataDir, "audits"), "audits.json", logger)
	auditManager := auditsvc.NewManager(auditStore, registry, cfg.Governance.FollowUpDays, logger)

	policyStore := storage.NewCollection[*policydomain.Policy](
		filepath.Join(cfg.DataDir, "policies"), "policies.json", logger)
	policyEngine := policysvc.NewEngine(policyStore, cfg.Policy.DefaultReviewFrequencyDays, logger)

	reportStore := storage.NewCollection[*reportingdomain.Report](
		filepath.Join(cfg.DataDir, "reports"), "reports.json", logger)
	reportingEngine := reportingsvc.NewEngine(complianceEngine, auditManager, policyEngine, reportStore, registry, logger)

	alertStore := storage.NewCollection[*governancedomain.Alert](
		filepath.Join(cfg.DataDir, "governance"), "alerts.json", logger)
	gaugeStore := storage.NewCollection[*governancedomain.Metric](
		filepath.Join(cfg.DataDir, "governance"), "metrics.json", logger)
	integration := governancesvc.NewIntegration(
		complianceEngine,
		auditManager,
		policyEngine,
		alertStore,
		gaugeStore,
		registry,
		cfg.Governance.AlertScoreThreshold,
		logger,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Prometheus:  promRegistry,
		Metrics:     registry,
		Compliance:  complianceEngine,
		Audits:      auditManager,
		Policies:    policyEngine,
		Reporting:   reportingEngine,
		Integration: integration,
	}
}

// Close flushes the logger. Engine state is already persisted on every
// mutation, so there is nothing else to tear down.
func (a *App) Close() {
	_ = a.Logger.Sync()
}
