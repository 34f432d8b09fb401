// Package universe resolves the ordered ticker universe from configuration,
// a YAML file or the database.
package universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/pkg/config"
	"github.com/wonny/ivtracker/pkg/database"
)

// Static is a fixed ticker list
type Static struct {
	symbols []string
}

// NewStatic creates a static universe. Blank entries are dropped.
func NewStatic(symbols []string) *Static {
	return &Static{symbols: clean(symbols)}
}

// Name implements contracts.UniverseSource
func (s *Static) Name() string { return "config" }

// Symbols implements contracts.UniverseSource
func (s *Static) Symbols(_ context.Context) ([]string, error) {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}

// NewSource builds the source selected by UNIVERSE_SOURCE. db is only
// required for the database source.
func NewSource(cfg *config.Config, db *database.DB) (contracts.UniverseSource, error) {
	switch cfg.Universe.Source {
	case "config", "":
		return NewStatic(cfg.Universe.Tickers), nil
	case "file":
		return NewFile(cfg.Universe.File), nil
	case "database":
		if db == nil {
			return nil, fmt.Errorf("universe source database requires a database connection")
		}
		return NewRepository(db.Pool), nil
	default:
		return nil, fmt.Errorf("unknown universe source: %s", cfg.Universe.Source)
	}
}

// clean trims symbols and drops blanks, keeping order
func clean(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
