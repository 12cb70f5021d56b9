package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/amirasaad/tem/infra/initializer"
	"github.com/amirasaad/tem/pkg/app"
	"github.com/amirasaad/tem/pkg/config"
	"github.com/amirasaad/tem/pkg/conversion"
	conversionSvc "github.com/amirasaad/tem/pkg/service/conversion"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  resolve <date> <currency>                     resolve the INR rate for a transaction date
  quote <date> <currency> <amount> [manual-rate] convert an amount into INR`

var (
	errUsage = errors.New("invalid usage")

	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
	dimColor  = color.New(color.Faint)
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}

	cfg, err := config.Load(".env")
	if err != nil {
		failColor.Println("Failed to load configuration:", err)
		os.Exit(1)
	}
	// keep the terminal output readable
	cfg.Log.Level = 12

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		failColor.Println("Failed to initialize:", err)
		os.Exit(1)
	}
	svc := app.New(deps, cfg).ConversionService

	err = execute(context.Background(), svc, os.Args[1:], os.Stdout)
	_ = deps.Close()
	if errors.Is(err, errUsage) {
		fmt.Println(usage)
		os.Exit(2)
	}
	if err != nil {
		os.Exit(1)
	}
}

func execute(ctx context.Context, svc *conversionSvc.Service, args []string, w io.Writer) error {
	switch args[0] {
	case "resolve":
		if len(args) < 3 {
			return errUsage
		}
		return resolve(ctx, svc, args[1], args[2], w)
	case "quote":
		if len(args) < 4 {
			return errUsage
		}
		req := conversionSvc.QuoteRequest{Date: args[1], Currency: args[2], Amount: args[3]}
		if len(args) > 4 {
			req.ManualRate = args[4]
		}
		return quote(ctx, svc, req, w)
	default:
		failColor.Fprintln(w, "Unknown command:", args[0])
		return errUsage
	}
}

func resolve(ctx context.Context, svc *conversionSvc.Service, date, currency string, w io.Writer) error {
	res, err := svc.ResolveRate(ctx, date, currency)
	if err != nil {
		var rerr *conversion.ResolveError
		if errors.As(err, &rerr) {
			warnColor.Fprintln(w, rerr.Message())
		} else {
			failColor.Fprintln(w, "Error resolving rate:", err)
		}
		return err
	}
	okColor.Fprintf(w, "1 %s = %s %s\n", res.Currency, res.Rate.String(), svc.BaseCurrency())
	if res.IsFallback() {
		warnColor.Fprintln(w, res.Message())
	}
	dimColor.Fprintf(w, "searched %d day(s)\n", res.Attempts)
	return nil
}

func quote(ctx context.Context, svc *conversionSvc.Service, req conversionSvc.QuoteRequest, w io.Writer) error {
	q, err := svc.Quote(ctx, req)
	if err != nil {
		failColor.Fprintln(w, "Error quoting:", err)
		return err
	}
	if q.ExchangeRate != "" {
		fmt.Fprintf(w, "Rate: %s\n", q.ExchangeRate)
	}
	if q.ConversionData != nil {
		okColor.Fprintf(w, "%s %s = %s\n",
			strings.ToUpper(req.Currency), req.Amount, conversion.FormatINR(q.ConversionData.ConvertedAmount))
	}
	if q.ConversionResult != nil {
		c := dimColor
		if q.State.IsTerminal() && q.ConversionData == nil {
			c = warnColor
		}
		c.Fprintln(w, *q.ConversionResult)
	}
	dimColor.Fprintf(w, "state: %s\n", q.State)
	return nil
}
