// Package cli implements the interactive numbered-menu shell.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/cache"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/receipt"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

// errExit ends the shell from any menu.
var errExit = errors.New("exit requested")

type Services struct {
	Accounts  *service.AccountService
	Suppliers *service.SupplierService
	Stock     *service.StockService
	Billing   *service.BillingService
	History   *service.HistoryService
	Receipts  *receipt.Store
	Lock      cache.SessionLock
}

type Shell struct {
	svc Services
	in  *bufio.Reader
	out io.Writer

	account domain.Account
	release cache.ReleaseFunc
}

func NewShell(svc Services, in io.Reader, out io.Writer) *Shell {
	return &Shell{svc: svc, in: bufio.NewReader(in), out: out}
}

// Run shows the auth menu until the user exits or input ends.
func (s *Shell) Run(ctx context.Context) error {
	defer s.logout(ctx)

	for {
		s.println("\n=== INVENTORY MANAGER ===")
		s.println("1. Login")
		s.println("2. Sign Up")
		s.println("3. Exit")
		choice, err := s.prompt("Choose an option: ")
		if err != nil {
			return s.finish(err)
		}

		switch choice {
		case "1":
			err = s.login(ctx)
			if err == nil && s.release != nil {
				err = s.dashboard(ctx)
			}
		case "2":
			err = s.signup(ctx)
		case "3":
			err = errExit
		default:
			s.println("Invalid choice.")
		}
		if err != nil {
			return s.finish(err)
		}
	}
}

func (s *Shell) finish(err error) error {
	if errors.Is(err, errExit) || errors.Is(err, io.EOF) {
		s.println("Exiting program...")
		return nil
	}
	return err
}

func (s *Shell) login(ctx context.Context) error {
	s.println("\n=== LOGIN ===")
	username, err := s.prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Password: ")
	if err != nil {
		return err
	}

	account, err := s.svc.Accounts.Authenticate(ctx, service.Credentials{Username: username, Password: password})
	if err != nil {
		if errors.Is(err, domain.ErrStore) {
			return err
		}
		s.println("Invalid username or password.")
		return nil
	}

	release, err := s.svc.Lock.Acquire(ctx, account.ID)
	if errors.Is(err, cache.ErrSessionActive) {
		s.println("This account is already logged in elsewhere.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	s.account = account
	s.release = release
	log.Info().Str("username", account.Username).Msg("session started")
	s.println("Login successful.")
	return nil
}

func (s *Shell) logout(ctx context.Context) {
	if s.release == nil {
		return
	}
	if err := s.release(ctx); err != nil {
		log.Warn().Err(err).Str("username", s.account.Username).Msg("failed to release session")
	}
	log.Info().Str("username", s.account.Username).Msg("session ended")
	s.release = nil
	s.account = domain.Account{}
}

func (s *Shell) signup(ctx context.Context) error {
	s.println("\n=== SIGN UP ===")
	username, err := s.prompt("Choose username: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Choose password: ")
	if err != nil {
		return err
	}

	_, err = s.svc.Accounts.Signup(ctx, service.Credentials{Username: username, Password: password})
	switch {
	case err == nil:
		s.println("Account created. You can now log in.")
	case errors.Is(err, domain.ErrDuplicate):
		s.println("Username already exists. Try another.")
	case errors.Is(err, domain.ErrValidation):
		s.printf("%s\n", err)
	default:
		return err
	}
	return nil
}

type action func(ctx context.Context) error

func (s *Shell) dashboard(ctx context.Context) error {
	actions := map[string]action{
		"1": s.addSupplier,
		"2": s.addStock,
		"3": s.viewStock,
		"4": s.viewSuppliers,
		"5": s.editItems,
		"6": s.deleteItem,
		"7": s.generateBill,
		"8": s.searchBills,
		"9": s.salesHistory,
	}

	for {
		s.println("\n=== DASHBOARD ===")
		s.println("1. Add Supplier")
		s.println("2. Add Stock")
		s.println("3. View Stock")
		s.println("4. View Suppliers")
		s.println("5. Edit Items")
		s.println("6. Delete Item")
		s.println("7. Generate Bill")
		s.println("8. Search Bills")
		s.println("9. Sales History")
		s.println("10. Logout")
		s.println("11. Exit")
		choice, err := s.prompt("Choose an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "10":
			s.println("Logging out...")
			s.logout(ctx)
			return nil
		case "11":
			return errExit
		}

		run, ok := actions[choice]
		if !ok {
			s.println("Invalid choice.")
			continue
		}
		if err := s.svc.Lock.Refresh(ctx, s.account.ID); err != nil {
			if errors.Is(err, cache.ErrSessionLost) {
				s.println("Your session has expired. Please log in again.")
				s.logout(ctx)
				return nil
			}
			log.Warn().Err(err).Str("username", s.account.Username).Msg("failed to refresh session")
		}
		if err := run(ctx); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, errExit) {
				return err
			}
			log.Error().Err(err).Str("choice", choice).Msg("menu action failed")
			s.printf("Error: %s\n", err)
		}
	}
}

// prompt prints label and returns the trimmed next line. io.EOF is returned
// only when no more input is available.
func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) confirm(label string) (bool, error) {
	answer, err := s.prompt(label + " (y/n): ")
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, domain.Invalid("%q is not a valid id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.Invalid("%s must be numeric", field)
	}
	return d, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
