package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"earnings-ledger/internal/config"
	"earnings-ledger/internal/database"
	"earnings-ledger/internal/earnings"
	"earnings-ledger/internal/kvstore"
	"earnings-ledger/internal/logger"
	"earnings-ledger/internal/util"
)

// app is everything a command needs once config is loaded.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	db      *gorm.DB
	cipher  *util.Cipher
	engine  *earnings.Engine
	closers []io.Closer
}

func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	log, logCloser, err := logger.FromConfig(cfg.Log)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "init logger", err)
	}
	a := &app{cfg: cfg, log: log, closers: []io.Closer{logCloser}}

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "load timezone", err)
	}
	goal, err := decimal.NewFromString(cfg.Earnings.DailyGoal)
	if err != nil || !goal.IsPositive() {
		a.Close()
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("earnings.daily_goal must be a positive number, got %q", cfg.Earnings.DailyGoal))
	}
	policy, err := earnings.ParseLeftoverPolicy(cfg.Earnings.LeftoverPolicy)
	if err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	a.db, err = database.Open(cfg.Database)
	if err != nil {
		a.Close()
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	if cfg.Security.EncryptionKey != "" {
		if a.cipher, err = util.NewCipher(cfg.Security.EncryptionKey); err != nil {
			a.Close()
			return nil, WrapExitError(ExitCommandError, "init encryption", err)
		}
	}

	a.engine = earnings.New(kvstore.NewGormStore(a.db, a.cipher), earnings.Options{
		DefaultGoal: goal,
		Leftover:    policy,
		Location:    loc,
		Log:         log,
	})
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.log.Warn().Err(err).Msg("close database")
		}
	}
	for _, c := range a.closers {
		_ = c.Close()
	}
}
