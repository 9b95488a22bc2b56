package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/guarzo/solewatch/internal/arbitrage"
	"github.com/guarzo/solewatch/internal/display"
	"github.com/guarzo/solewatch/internal/marketplace"
	"github.com/guarzo/solewatch/internal/model"
	"github.com/guarzo/solewatch/internal/progress"
	"github.com/guarzo/solewatch/internal/report"
	"github.com/guarzo/solewatch/internal/server"
	"github.com/guarzo/solewatch/internal/watcher"
)

// scanFlags are shared by search, lookup, and watch.
type scanFlags struct {
	size      float64
	minSpread float64
	minProfit float64
	csvOut    string
	listAll   bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.size, "size", 0, "US shoe size (0 = all sizes)")
	cmd.Flags().Float64Var(&f.minSpread, "min-spread", arbitrage.DefaultOptions().MinGrossSpread,
		"Minimum gross spread in dollars")
	cmd.Flags().Float64Var(&f.minProfit, "min-profit", arbitrage.DefaultOptions().MinNetProfit,
		"Minimum fee-adjusted net profit in dollars")
	cmd.Flags().StringVar(&f.csvOut, "csv", "", "Write opportunities to a CSV file")
	cmd.Flags().BoolVar(&f.listAll, "all", false, "Also print every listing found")
}

func (f *scanFlags) options() watcher.ScanOptions {
	return watcher.ScanOptions{
		Size:           f.size,
		MinGrossSpread: f.minSpread,
		MinNetProfit:   f.minProfit,
	}
}

func newSearchCmd() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search marketplaces by name and report arbitrage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.Query = strings.Join(args, " ")
			return runScan(cmd.Context(), opts, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newLookupCmd() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "lookup <style-code>",
		Short: "Look up an exact style code across marketplaces",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.StyleCode = args[0]
			return runScan(cmd.Context(), opts, &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runScan(ctx context.Context, opts watcher.ScanOptions, flags *scanFlags) error {
	logger := newLogger()
	adapters := buildAdapters(logger)
	w := watcher.New(adapters, logger)

	// Progress and debug logs would fight over stderr.
	ind := progress.New("Scanning marketplaces", len(marketplace.Configured(adapters)), !verbose)
	opts.OnSourceDone = func(mk string) { ind.Step(mk) }

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	ind.Start()
	result, err := w.Scan(ctx, opts)
	if err != nil {
		ind.FinishWithError(err)
		if errors.Is(err, watcher.ErrNoAdapters) {
			return fmt.Errorf("%w; run 'solewatch status' to see what is missing", err)
		}
		return err
	}
	ind.Finish()

	for _, ae := range result.Errors {
		fmt.Fprintf(os.Stderr, "warning: %v\n", ae)
	}

	fees := arbitrage.NewFeeTable(nil)
	if flags.listAll {
		display.Listings(os.Stdout, result.Listings)
		fmt.Println()
	}
	display.Opportunities(os.Stdout, result.Opportunities, fees)

	if flags.csvOut != "" && len(result.Opportunities) > 0 {
		f, err := os.Create(flags.csvOut)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := report.WriteOpportunities(f, result.Opportunities, fees); err != nil {
			return err
		}
		fmt.Printf("\nWrote %d opportunities to %s\n", len(result.Opportunities), flags.csvOut)
	}

	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which marketplaces are configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			adapters := buildAdapters(newLogger())
			fees := arbitrage.NewFeeTable(nil)

			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MARKETPLACE\tCONFIGURED\tSELL FEE")
			fmt.Fprintln(tw, "-----------\t----------\t--------")
			available := 0
			for _, a := range adapters {
				state := "no"
				if a.Available() {
					state = "yes"
					available++
				}
				fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", a.Name(), state, fees.SellerFee(a.Name()))
			}
			tw.Flush()

			fmt.Printf("\n%d of %d marketplaces configured\n", available, len(adapters))
			if available == 0 {
				fmt.Println("Set at least one API key in the environment or a .env file.")
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			w := watcher.New(buildAdapters(logger), logger)
			srv := server.New(server.Config{Port: port}, w, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP listen port")
	return cmd
}

func newWatchCmd() *cobra.Command {
	var flags scanFlags
	var spec string

	cmd := &cobra.Command{
		Use:   "watch <query>",
		Short: "Rescan on a schedule and print new opportunities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			w := watcher.New(buildAdapters(logger), logger)

			opts := flags.options()
			opts.Query = strings.Join(args, " ")

			fees := arbitrage.NewFeeTable(nil)
			notify := func(result *watcher.ScanResult, fresh []model.Opportunity) {
				fmt.Printf("\n[%s] %d new of %d total\n",
					time.Now().Format("15:04:05"), len(fresh), len(result.Opportunities))
				display.Opportunities(os.Stdout, fresh, fees)
			}

			sched := watcher.NewSchedule(w, opts, spec, notify)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Watching %q on schedule %q. Ctrl-C to stop.\n", opts.Query, spec)
			return sched.Run(ctx)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&spec, "schedule", "@every 15m", "Rescan schedule (cron spec or @every interval)")
	return cmd
}
