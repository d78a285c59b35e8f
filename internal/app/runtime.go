// Package app wires configuration into stores, services and adapters.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/api"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/billid"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/cache"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/cli"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/config"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/importer"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/ledger"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/receipt"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository/memory"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/repository/postgres"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/storage"
)

// Runtime holds every long-lived dependency of one process.
type Runtime struct {
	Config *config.Config
	Store  repository.Store
	DB     *postgres.DB
	Lock   cache.SessionLock

	Book     *ledger.Book
	Receipts *receipt.Store

	Accounts  *service.AccountService
	Suppliers *service.SupplierService
	Stock     *service.StockService
	Billing   *service.BillingService
	History   *service.HistoryService
	Importer  *importer.Importer
}

// Bootstrap opens the configured store and builds the services on top of it.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Config: cfg}

	switch cfg.Database.Driver {
	case "memory":
		log.Warn().Msg("using in-memory store, data is lost on exit")
		rt.Store = memory.NewStore()
	default:
		db, err := postgres.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		rt.DB = db
		rt.Store = postgres.NewStore(db)
	}

	formats, err := receipt.ParseFormats(cfg.App.ReceiptFormats)
	if err != nil {
		rt.Close()
		return nil, err
	}
	archive, err := storage.New(cfg.Storage)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize archive storage: %w", err)
	}
	rt.Lock, err = cache.NewSessionLock(ctx, cfg.Cache)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize session lock: %w", err)
	}

	rt.Book = ledger.NewBook(cfg.App.DataDir)
	rt.Receipts = receipt.NewStore(cfg.App.DataDir, formats)
	rt.Accounts = service.NewAccountService(rt.Store)
	rt.Suppliers = service.NewSupplierService(rt.Store)
	rt.Stock = service.NewStockService(rt.Store)
	rt.Billing = service.NewBillingService(rt.Store, rt.Book, rt.Receipts, archive, billid.NewGenerator(nil))
	rt.History = service.NewHistoryService(rt.Book)
	rt.Importer = importer.New(rt.Suppliers, rt.Stock)

	log.Debug().
		Str("driver", cfg.Database.Driver).
		Str("data_dir", cfg.App.DataDir).
		Bool("cache", cfg.Cache.Enabled).
		Bool("archive", cfg.Storage.Enabled).
		Msg("runtime ready")
	return rt, nil
}

// Migrate applies the schema. The memory store needs none.
func (rt *Runtime) Migrate(ctx context.Context) error {
	if rt.DB == nil {
		return nil
	}
	return postgres.Migrate(ctx, rt.DB)
}

// Login authenticates a non-interactive command.
func (rt *Runtime) Login(ctx context.Context, username, password string) (domain.Account, error) {
	if username == "" {
		return domain.Account{}, domain.Invalid("--username is required")
	}
	return rt.Accounts.Authenticate(ctx, service.Credentials{Username: username, Password: password})
}

func (rt *Runtime) Shell(in io.Reader, out io.Writer) *cli.Shell {
	return cli.NewShell(cli.Services{
		Accounts:  rt.Accounts,
		Suppliers: rt.Suppliers,
		Stock:     rt.Stock,
		Billing:   rt.Billing,
		History:   rt.History,
		Receipts:  rt.Receipts,
		Lock:      rt.Lock,
	}, in, out)
}

func (rt *Runtime) APIServices() *api.Services {
	return &api.Services{
		Accounts:  rt.Accounts,
		Suppliers: rt.Suppliers,
		Stock:     rt.Stock,
		History:   rt.History,
		Receipts:  rt.Receipts,
	}
}

// ExportHistory writes the owner's history workbook.
func (rt *Runtime) ExportHistory(ctx context.Context, owner domain.Account, w io.Writer) error {
	rows, err := rt.History.Rows(ctx, owner)
	if err != nil {
		return err
	}
	report, err := rt.History.Report(ctx, owner)
	if err != nil {
		return err
	}
	return ledger.ExportXLSX(w, rows, report)
}

func (rt *Runtime) Close() error {
	var errs []error
	if rt.Lock != nil {
		errs = append(errs, rt.Lock.Close())
	}
	if rt.Store != nil {
		errs = append(errs, rt.Store.Close())
	}
	return errors.Join(errs...)
}
