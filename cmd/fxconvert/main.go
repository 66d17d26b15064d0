// Command fxconvert converts an amount between two currencies from the
// terminal. With -watch it refetches on an interval and prints a notice
// when the rate moves past the threshold.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"softy/internal/cli"
	"softy/internal/config"
	"softy/internal/core"
	"softy/internal/fx"
	"softy/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	var (
		from      = flag.String("from", fx.DefaultFrom, "source currency code")
		to        = flag.String("to", fx.DefaultTo, "target currency code")
		amount    = flag.String("amount", "1", "amount to convert")
		watch     = flag.Duration("watch", 0, "refetch interval, e.g. 1m (0 converts once)")
		swap      = flag.Bool("swap", false, "swap the source and target currencies")
		threshold = flag.Float64("threshold", cfg.FXNoticeThreshold, "relative rate move that raises a notice")
		list      = flag.Bool("list", false, "list supported currencies and exit")
	)
	flag.Parse()

	if *list {
		for _, c := range fx.Currencies {
			fmt.Printf("%s  %s\n", c.Code, c.Name)
		}
		return
	}

	if *swap {
		*from, *to = fx.Swap(*from, *to)
	}

	// Library logs stay quiet unless LOG_LEVEL asks for them; the terminal
	// gets the conversion lines.
	logger := log.New(log.Config{
		Level:     cli.ParseLevel(getenvDefault("LOG_LEVEL", "error")),
		Component: log.ComponentFX,
		Output:    os.Stderr,
	})
	converter := fx.NewConverter(
		fx.NewClient(cfg.FXAPIBaseURL, cfg.FXTimeout),
		fx.NewRateTracker(*threshold),
		logger,
	)

	ctx, stop := cli.SignalContext(logger.Logger)
	defer stop()

	value := core.ParseNumber(*amount)
	if *watch <= 0 {
		if err := convertOnce(ctx, os.Stdout, converter, *from, *to, value); err != nil {
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(*watch)
	defer ticker.Stop()
	for {
		// Errors are printed and the next tick tries again.
		_ = convertOnce(ctx, os.Stdout, converter, *from, *to, value)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// convertOnce prints one conversion line, or a single error line.
func convertOnce(ctx context.Context, w io.Writer, c *fx.Converter, from, to string, amount float64) error {
	conv, err := c.Convert(ctx, from, to, amount)
	if err != nil {
		fmt.Fprintf(w, "%s  error: %v\n", time.Now().Format(time.TimeOnly), err)
		return err
	}
	fmt.Fprintln(w, formatConversion(conv))
	if conv.Notice != "" {
		fmt.Fprintf(w, "  notice: %s\n", conv.Notice)
	}
	return nil
}

func formatConversion(c fx.Conversion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s %s = %s  (%s)",
		c.At.Format(time.TimeOnly), core.FormatAmount(c.Amount), c.From, c.Display, c.RateDisplay)
	switch c.Direction {
	case fx.DirectionUp:
		b.WriteString("  ↑")
	case fx.DirectionDown:
		b.WriteString("  ↓")
	}
	return b.String()
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
