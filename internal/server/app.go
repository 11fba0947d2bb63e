// -----------------------------------------------------------------------
// Application wiring - constructs and owns all services
// -----------------------------------------------------------------------

package server

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestio/internal/common"
	"github.com/ternarybob/quaestio/internal/interfaces"
	"github.com/ternarybob/quaestio/internal/jobs"
	"github.com/ternarybob/quaestio/internal/services/authoring"
	"github.com/ternarybob/quaestio/internal/services/export"
	"github.com/ternarybob/quaestio/internal/services/extraction"
	"github.com/ternarybob/quaestio/internal/services/llm"
	"github.com/ternarybob/quaestio/internal/services/pdfextract"
	"github.com/ternarybob/quaestio/internal/services/scheduler"
	badgerstore "github.com/ternarybob/quaestio/internal/storage/badger"
)

// App owns the wired service graph for one process
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Storage interfaces.StorageManager

	LLM       *llm.Service
	Pipeline  *jobs.MaterialPipeline
	Batch     *jobs.BatchOrchestrator
	Export    *export.Service
	Scheduler *scheduler.Scheduler
}

// NewApp constructs the full application from configuration
func NewApp(config *common.Config, logger arbor.ILogger) (*App, error) {
	storage, err := badgerstore.NewManager(&config.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	llmService := llm.NewService(config, storage.KeyValueStorage(), logger)
	extractionService := extraction.NewService(llmService, &config.Pipeline, logger)
	authoringService := authoring.NewService(llmService, &config.Pipeline, logger)
	pdfService := pdfextract.NewService(logger)

	pipeline := jobs.NewMaterialPipeline(storage, extractionService, authoringService, pdfService, &config.Pipeline, logger)
	batch := jobs.NewBatchOrchestrator(storage, llmService, &config.Batch, logger)

	sched, err := scheduler.New(storage, batch, &config.Scheduler, logger)
	if err != nil {
		storage.Close()
		return nil, err
	}

	return &App{
		Config:    config,
		Logger:    logger,
		Storage:   storage,
		LLM:       llmService,
		Pipeline:  pipeline,
		Batch:     batch,
		Export:    export.NewService(logger),
		Scheduler: sched,
	}, nil
}

// Close releases application resources
func (a *App) Close() error {
	a.Scheduler.Stop()
	a.LLM.Close()
	return a.Storage.Close()
}
