package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/app"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/config"
	"github.com/MrVishwakarma09/I-M-S-CLI/pkg/logger"
)

type runtimeKey struct{}

func authFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Usage:   "Account to act as",
			EnvVars: []string{"IMS_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Password of the account",
			EnvVars: []string{"IMS_PASSWORD"},
		},
	}
}

func initRuntime(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)

	rt, err := app.Bootstrap(c.Context, cfg)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, runtimeKey{}, rt)
	return nil
}

func closeRuntime(c *cli.Context) error {
	if rt, ok := c.Context.Value(runtimeKey{}).(*app.Runtime); ok && rt != nil {
		return rt.Close()
	}
	return nil
}

func runtimeFrom(c *cli.Context) *app.Runtime {
	return c.Context.Value(runtimeKey{}).(*app.Runtime)
}

func main() {
	cliApp := &cli.App{
		Name:   "imscli",
		Usage:  "Inventory, billing and sales history for small shops",
		Before: initRuntime,
		After:  closeRuntime,
		Action: runShell,
		Commands: []*cli.Command{
			{
				Name:   "shell",
				Usage:  "Start the interactive menu (default)",
				Action: runShell,
			},
			{
				Name:   "migrate",
				Usage:  "Create database tables and indexes",
				Action: runMigrate,
			},
			{
				Name:   "serve",
				Usage:  "Serve the read-only reporting API",
				Action: runServe,
			},
			{
				Name:  "import",
				Usage: "Bulk import suppliers and stock from CSV files",
				Flags: append(authFlags(),
					&cli.StringFlag{Name: "suppliers", Usage: "CSV with name,phone,address columns"},
					&cli.StringFlag{Name: "stock", Usage: "CSV with name,quantity,price,gst_percent,supplier,supplier_price columns"},
				),
				Action: runImport,
			},
			{
				Name:  "export",
				Usage: "Export the sales history as an xlsx workbook",
				Flags: append(authFlags(),
					&cli.StringFlag{Name: "out", Usage: "Output file", Value: "sales_history.xlsx"},
				),
				Action: runExport,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
