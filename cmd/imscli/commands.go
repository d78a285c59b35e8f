package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/api"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/importer"
)

func runShell(c *cli.Context) error {
	return runtimeFrom(c).Shell(os.Stdin, os.Stdout).Run(c.Context)
}

func runMigrate(c *cli.Context) error {
	if err := runtimeFrom(c).Migrate(c.Context); err != nil {
		return err
	}
	fmt.Println("Schema is up to date.")
	return nil
}

func runImport(c *cli.Context) error {
	rt := runtimeFrom(c)
	owner, err := rt.Login(c.Context, c.String("username"), c.String("password"))
	if err != nil {
		return err
	}
	if c.String("suppliers") == "" && c.String("stock") == "" {
		return errors.New("nothing to import: pass --suppliers and/or --stock")
	}

	steps := []struct {
		flag string
		run  func(ctx context.Context, ownerID int64, r io.Reader) (importer.Result, error)
	}{
		{"suppliers", rt.Importer.ImportSuppliers},
		{"stock", rt.Importer.ImportStock},
	}
	for _, step := range steps {
		path := c.String(step.flag)
		if path == "" {
			continue
		}
		r, err := importer.Open(path)
		if err != nil {
			return err
		}
		res, err := step.run(c.Context, owner.ID, r)
		r.Close()
		if err != nil {
			return fmt.Errorf("%s import failed: %w", step.flag, err)
		}
		fmt.Printf("%s: %d created, %d merged, %d skipped\n", step.flag, res.Created, res.Merged, len(res.Skipped))
		for _, skip := range res.Skipped {
			fmt.Printf("  line %d: %s\n", skip.Line, skip.Reason)
		}
	}
	return nil
}

func runExport(c *cli.Context) error {
	rt := runtimeFrom(c)
	owner, err := rt.Login(c.Context, c.String("username"), c.String("password"))
	if err != nil {
		return err
	}

	out := c.String("out")
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := rt.ExportHistory(c.Context, owner, f); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("Sales history written to %s\n", out)
	return nil
}

func runServe(c *cli.Context) error {
	rt := runtimeFrom(c)
	cfg := rt.Config.Server
	if cfg.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewRouter(rt.APIServices(), cfg.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
