package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/barista/internal/config"
	"github.com/aretw0/barista/pkg/catalog"
	"github.com/aretw0/barista/pkg/domain"
)

// PrintMenu writes the configured catalog as a table, or as a menu file
// when asYAML is set.
func PrintMenu(w io.Writer, configPath string, asYAML bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	menu := domain.DefaultCatalog()
	if cfg.Menu != "" {
		if menu, err = catalog.Load(cfg.Menu); err != nil {
			return err
		}
	}

	if asYAML {
		data, err := catalog.Marshal(menu)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cat := range menu.Categories() {
		fmt.Fprintf(tw, "%s\n", strings.ToUpper(cat.Name))
		for _, it := range cat.Items {
			fmt.Fprintf(tw, "  %s\t%s%d\n", it.Name, cfg.Currency, it.Price)
		}
	}
	return tw.Flush()
}

// PrintOrders lists the rows stored by the configured sink.
func PrintOrders(ctx context.Context, w io.Writer, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Log)

	sink, err := openSink(ctx, cfg.Sink, logger)
	if err != nil {
		return err
	}
	if c, ok := sink.(interface{ Close() error }); ok {
		defer c.Close()
	}

	rows, err := readRows(ctx, sink)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Sink.Type, err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "No orders found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(domain.RecordHeader, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
