package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"earnings-ledger/internal/router"
	"earnings-ledger/internal/util"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the JSON API on server.address:server.port.

When security.passcode_hash is set, every /api route except
/api/auth/unlock requires the token returned by unlocking.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, opts *RootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	// without a configured secret, tokens live as long as the process
	if a.cfg.JWT.Secret == "" {
		if a.cfg.JWT.Secret, err = util.RandomString(48); err != nil {
			return WrapExitError(ExitCommandError, "generate jwt secret", err)
		}
		if a.cfg.Security.PasscodeHash != "" {
			a.log.Warn().Msg("jwt.secret is empty, tokens will not survive a restart")
		}
	}

	r := router.SetupRouter(a.cfg, a.db, a.engine, a.cipher, a.log)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.cfg.Server.Address, a.cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return WrapExitError(ExitCommandError, "run server", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitCommandError, "shutdown server", err)
	}
	return nil
}
