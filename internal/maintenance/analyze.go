package maintenance

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize/english"

	"github.com/dbsweep/dbsweep/internal/store"
)

func analyzeTables(ctx context.Context, s *store.Session, p RunParameters) (Outcome, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to list tables: %w", err)
	}
	if len(tables) == 0 {
		return Skip("no tables with prefix %q", s.Prefix()), nil
	}

	if p.DryRun {
		return Done("would analyze %s", english.Plural(len(tables), "table", "")).WithDetails(tables...), nil
	}

	details := make([]string, 0, len(tables))
	failed := 0
	for _, table := range tables {
		if err := s.Analyze(ctx, table); err != nil {
			failed++
			details = append(details, fmt.Sprintf("%s: %v", table, err))
			continue
		}
		details = append(details, table+": ok")
	}

	out := Done("analyzed %s", english.Plural(len(tables), "table", "")).WithDetails(details...)
	if failed > 0 {
		return out, fmt.Errorf("analyze failed for %d of %s", failed, english.Plural(len(tables), "table", ""))
	}
	return out, nil
}
