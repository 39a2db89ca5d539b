package bootstrap

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	battleinadapter "focusforge/internal/modules/battle/adapter/in"
	battleoutadapter "focusforge/internal/modules/battle/adapter/out"
	battledto "focusforge/internal/modules/battle/dto"
	battleout "focusforge/internal/modules/battle/port/out"
	battleservice "focusforge/internal/modules/battle/service"
	battleusecase "focusforge/internal/modules/battle/usecase"
	bestiaryinadapter "focusforge/internal/modules/bestiary/adapter/in"
	bestiaryoutadapter "focusforge/internal/modules/bestiary/adapter/out"
	bestiaryservice "focusforge/internal/modules/bestiary/service"
	bestiaryusecase "focusforge/internal/modules/bestiary/usecase"
	progressinadapter "focusforge/internal/modules/progress/adapter/in"
	progressoutadapter "focusforge/internal/modules/progress/adapter/out"
	progressservice "focusforge/internal/modules/progress/service"
	progressusecase "focusforge/internal/modules/progress/usecase"
	"focusforge/internal/platform/clock"
	"focusforge/internal/platform/config"
	"focusforge/internal/platform/id"
	uiapp "focusforge/internal/ui/app"
)

// App wires every module together. Close must be called to stop the engine
// and release the observer plugin.
type App struct {
	BestiaryCLI bestiaryinadapter.CLIHandler
	BattleCLI   battleinadapter.CLIHandler
	ProgressCLI progressinadapter.CLIHandler

	Events <-chan battledto.Event

	engine *battleservice.Engine
	closer []func() error
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	catalogStore := bestiaryoutadapter.NewYAMLCatalogStore(cfg.MonstersPath, cfg.XPConfigPath)
	bestiarySvc := bestiaryservice.NewBestiaryService(catalogStore)
	bestiaryUC := bestiaryusecase.NewInteractor(bestiarySvc)

	statsStore, err := progressoutadapter.NewSQLiteStatsStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new stats store: %w", err)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	progressSvc := progressservice.NewProgressService(clk, statsStore, bestiarySvc, rng, logger)
	progressUC := progressusecase.NewInteractor(progressSvc)

	stateStore, err := battleoutadapter.NewSQLiteStateStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new state store: %w", err)
	}

	var observer battleout.ActivityObserver
	if cfg.ObserverBin != "" {
		observer = battleoutadapter.NewPluginObserver(cfg.ObserverBin)
	} else {
		observer = battleoutadapter.NewFileObserver(cfg.ForegroundPath)
	}

	notifier := battleoutadapter.NewChannelNotifier(16)
	engine := battleservice.NewEngine(battleservice.EngineParams{
		Clock:     clk,
		IDs:       ids,
		Catalog:   bestiarySvc,
		Sessions:  stateStore,
		Outcomes:  stateStore,
		Observer:  observer,
		Notifier:  notifier,
		Chronicle: battleoutadapter.NewChronicleStore(cfg.ChronicleDir),
		Rewards:   progressSvc,
		Logger:    logger,
	})
	battleUC := battleusecase.NewInteractor(engine)

	return &App{
		BestiaryCLI: bestiaryinadapter.NewCLIHandler(bestiaryUC),
		BattleCLI:   battleinadapter.NewCLIHandler(battleUC),
		ProgressCLI: progressinadapter.NewCLIHandler(progressUC),
		Events:      notifier.Events(),
		engine:      engine,
		closer:      []func() error{engine.Close, statsStore.Close, stateStore.Close},
	}, nil
}

func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closer {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.BestiaryCLI, app.BattleCLI, app.ProgressCLI, app.Events)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
