package context

import (
	"log/slog"
	"sync"
	"time"

	"github.com/melvorminer/melvorminer/internal/config"
	"github.com/melvorminer/melvorminer/internal/game"
	"github.com/melvorminer/melvorminer/internal/utils"
)

// Context carries everything the mining routine needs for one game session.
type Context struct {
	Name       string
	Cfg        *config.Config
	Logger     *slog.Logger
	GameReader *game.GameReader
	Actuator   *game.Actuator
	Sleep      utils.SleepFunc

	debugMu sync.Mutex
	debug   Debug
}

type Debug struct {
	LastAction string    `json:"lastAction"`
	LastStep   string    `json:"lastStep"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewContext(name string, cfg *config.Config, host game.Host, logger *slog.Logger) *Context {
	retry := utils.RetryPolicy{
		Attempts: cfg.RetryAttempts,
		Delay:    cfg.RetryDelay.Std(),
	}

	return &Context{
		Name:       name,
		Cfg:        cfg,
		Logger:     logger,
		GameReader: game.NewGameReader(host, retry, logger),
		Actuator:   game.NewActuator(host, retry, logger),
		Sleep:      utils.Sleep,
	}
}

// WithSleep replaces the sleep used by the context and its reader/actuator retries.
func (ctx *Context) WithSleep(sleep utils.SleepFunc, host game.Host) *Context {
	retry := utils.RetryPolicy{
		Attempts: ctx.Cfg.RetryAttempts,
		Delay:    ctx.Cfg.RetryDelay.Std(),
		Sleep:    sleep,
	}
	ctx.Sleep = sleep
	ctx.GameReader = game.NewGameReader(host, retry, ctx.Logger)
	ctx.Actuator = game.NewActuator(host, retry, ctx.Logger)

	return ctx
}

func (ctx *Context) SetLastAction(actionName string) {
	ctx.debugMu.Lock()
	defer ctx.debugMu.Unlock()
	ctx.debug.LastAction = actionName
	ctx.debug.UpdatedAt = time.Now()
}

func (ctx *Context) SetLastStep(stepName string) {
	ctx.debugMu.Lock()
	defer ctx.debugMu.Unlock()
	ctx.debug.LastStep = stepName
	ctx.debug.UpdatedAt = time.Now()
}

func (ctx *Context) Debug() Debug {
	ctx.debugMu.Lock()
	defer ctx.debugMu.Unlock()
	return ctx.debug
}
