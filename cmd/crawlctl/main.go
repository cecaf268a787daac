// Command crawlctl runs one-off maintenance tasks against the crawl database.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gdg-garage/crawl-registration-api/internal/catalog"
	"github.com/gdg-garage/crawl-registration-api/internal/config"
	"github.com/gdg-garage/crawl-registration-api/internal/database"
	"github.com/gdg-garage/crawl-registration-api/internal/mailer"
	"github.com/gdg-garage/crawl-registration-api/internal/notifier"
	"github.com/spf13/pflag"
)

const usage = `Usage: crawlctl <command> [flags]

Commands:
  seed           replace locations and events with the fall crawl seed data
  set-capacity   set maxCapacity on a location
  test-email     send the confirmation template to an address
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "crawlctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, usage)
		return errors.New("missing command")
	}
	cfg := config.LoadConfig()

	switch args[0] {
	case "seed":
		return seed(ctx, cfg, args[1:], out)
	case "set-capacity":
		return setCapacity(ctx, cfg, args[1:], out)
	case "test-email":
		return testEmail(ctx, cfg, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprint(out, usage)
		return nil
	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func openCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, func(), error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return catalog.New(db, cfg.Schedule()), func() { db.Close(context.Background()) }, nil
}

func seed(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	force := fs.Bool("force", false, "reseed even when production already has events")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c, closeDB, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	result, err := c.Seed(ctx, catalog.SeedOptions{
		Production:  cfg.IsProduction(),
		Force:       *force,
		EventTime:   cfg.EventTime,
		Description: cfg.EventDescription,
	})
	if errors.Is(err, catalog.ErrSeedRefused) {
		return fmt.Errorf("%w (use --force)", err)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d locations and %d events\n", len(result.Locations), len(result.Events))
	return nil
}

func setCapacity(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("set-capacity", pflag.ContinueOnError)
	location := fs.String("location", "", "location name")
	limit := fs.Int("max", 0, "maximum number of registrations")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*location) == "" || *limit <= 0 {
		return errors.New("--location and a positive --max are required")
	}

	c, closeDB, err := openCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	registered, err := c.SetMaxCapacity(ctx, *location, *limit)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated %s: maxCapacity=%d, registrations=%d, available=%d\n",
		*location, *limit, registered, max(*limit-registered, 0))
	return nil
}

func testEmail(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("test-email", pflag.ContinueOnError)
	to := fs.String("to", "", "recipient address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *to == "" {
		return errors.New("--to is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m, err := mailer.New(cfg, logger)
	if err != nil {
		return err
	}

	schedule := cfg.Schedule()
	labels := schedule.Labels()
	display := ""
	if len(labels) > 0 {
		display = schedule.Display(labels[0])
	}
	msg, err := notifier.Confirmation(*to, notifier.ConfirmationData{
		FirstName:       "Test",
		LastName:        "Recipient",
		DateDisplay:     display,
		Time:            cfg.EventTime,
		Description:     cfg.EventDescription,
		LocationName:    "Manhattan Referral Center",
		LocationAddress: "269 West 15th Street, Manhattan, NY 10011",
	})
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	receipt, err := m.Send(sendCtx, msg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sent test email to %s (message id %s)\n", *to, receipt.MessageID)
	return nil
}
