package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/F3kilo/hex-war/engine/assets"
	"github.com/F3kilo/hex-war/engine/core"
	"github.com/F3kilo/hex-war/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// frames between two metrics log lines
const metricsLogInterval = 300

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *core.Config
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
}

// New boots the engine: logging, the asset index, the task worker and the
// resource managers. The backend is built by newBackend.
func New(g *Game, newBackend systems.BackendFactory) (*Engine, error) {
	if g.FnUpdate == nil || g.FnRender == nil {
		return nil, errors.New("game must provide FnUpdate and FnRender")
	}
	if g.Config == nil {
		g.Config = core.DefaultConfig()
	}

	e := &Engine{
		currentStage: EngineStageBooting,
		gameInstance: g,
		config:       g.Config,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
	}

	if g.FnBoot != nil {
		if err := g.FnBoot(e.config); err != nil {
			return nil, fmt.Errorf("game boot: %w", err)
		}
	}
	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if err := core.InitLogging(e.config.Log); err != nil {
		return nil, err
	}

	am, err := assets.NewAssetManager(e.config.Assets)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	sm, err := systems.NewSystemManager(e.config, am, newBackend)
	if err != nil {
		core.LogError(err.Error())
		am.Close()
		return nil, err
	}
	e.assetManager = am
	e.systemManager = sm
	e.currentStage = EngineStageBootComplete
	return e, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine can't initialize in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageInitializing

	if err := e.systemManager.Initialize(); err != nil {
		return err
	}
	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e.systemManager); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized", e.config.Application.Name)
	return nil
}

// Run drives frames until ctx is done, the configured frame count is reached or
// the game fails.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine can't run in stage %d", e.currentStage)
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var tick <-chan time.Time
	if fps := e.config.Engine.FramesPerSecond; fps > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(fps))
		defer ticker.Stop()
		tick = ticker.C
	}

	maxFrames := e.config.Engine.MaxFrames
	for maxFrames == 0 || e.metrics.TotalFrames() < maxFrames {
		if ctx.Err() != nil {
			return nil
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}

		if err := e.frame(); err != nil {
			core.LogError("frame %d failed, stopping: %s", e.metrics.TotalFrames(), err)
			return err
		}
	}
	core.LogInfo("stopping after %d frames", e.metrics.TotalFrames())
	return nil
}

func (e *Engine) frame() error {
	// Update clock and get delta time.
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime
	frameStart := time.Now()

	if err := e.gameInstance.FnUpdate(delta); err != nil {
		return fmt.Errorf("game update: %w", err)
	}

	scene, renderCtx, err := e.gameInstance.FnRender(delta)
	if err != nil {
		return fmt.Errorf("game render: %w", err)
	}
	if scene != nil {
		frame := scene.Render(renderCtx)
		e.systemManager.Renderer().Present(frame.ID())
		frame.Release()
	}

	e.metrics.Update(time.Since(frameStart).Seconds())
	if n := e.metrics.TotalFrames(); n%metricsLogInterval == 0 {
		core.LogDebug("frame %d: %.0f fps, %.3f ms avg", n, e.metrics.FPS(), e.metrics.FrameTime())
	}

	// Update last time
	e.lastTime = currentTime
	return nil
}

// Shutdown tears everything down in reverse boot order. Calling it again is a no-op.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageUninitialized || e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.clock.Stop()

	var errs []error
	if e.gameInstance.FnShutdown != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, fmt.Errorf("game shutdown: %w", err))
		}
	}
	if err := e.systemManager.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := e.assetManager.Close(); err != nil {
		errs = append(errs, err)
	}

	core.LogInfo("%s shut down after %d frames", e.config.Application.Name, e.metrics.TotalFrames())
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) Systems() *systems.SystemManager {
	return e.systemManager
}

func (e *Engine) Assets() *assets.AssetManager {
	return e.assetManager
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}
