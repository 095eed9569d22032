package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/barista/internal/config"
	"github.com/aretw0/barista/internal/presentation/graph"
	"github.com/aretw0/barista/pkg/domain"
)

// PrintGraph writes the ordering flow as a Mermaid diagram. With a session
// ID, the session is read from the configured store and its step is
// highlighted.
func PrintGraph(ctx context.Context, w io.Writer, configPath, sessionID string) error {
	var overlay *graph.Overlay
	if sessionID != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(ctx, cfg.Session)
		if err != nil {
			return err
		}
		defer closeStore()

		s, err := store.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("session %s: %w", sessionID, err)
		}
		overlay = &graph.Overlay{Current: s.Step()}
	}

	_, err := io.WriteString(w, graph.GenerateMermaid(domain.Flow, overlay))
	return err
}
