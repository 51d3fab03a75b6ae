package maintenance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/dbsweep/dbsweep/internal/store"
)

// Transients are option pairs: a value row and a timeout row holding the
// expiry as unix seconds.
var transientTimeoutPrefixes = []struct {
	timeout string
	value   string
}{
	{timeout: "_transient_timeout_", value: "_transient_"},
	{timeout: "_site_transient_timeout_", value: "_site_transient_"},
}

// batchSize bounds the number of names bound into one IN list.
const batchSize = 500

func expiredTransients(ctx context.Context, s *store.Session, p RunParameters) (Outcome, error) {
	missing, err := s.MissingTables(ctx, store.TableOptions)
	if err != nil {
		return Outcome{}, err
	}
	if len(missing) > 0 {
		return Skip("table %s does not exist", missing[0]), nil
	}

	options := s.Table(store.TableOptions)
	rows, err := s.KeyValues(ctx, fmt.Sprintf(
		`SELECT option_name, option_value FROM %s
		WHERE option_name LIKE '!_transient!_timeout!_%%' ESCAPE '!'
		OR option_name LIKE '!_site!_transient!_timeout!_%%' ESCAPE '!'
		ORDER BY option_name`, options))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read transient timeouts: %w", err)
	}

	now := p.Now.Unix()
	var timeouts, values []string
	for _, row := range rows {
		expiry, err := strconv.ParseInt(strings.TrimSpace(row.Value), 10, 64)
		if err != nil || expiry >= now {
			continue
		}
		timeouts = append(timeouts, row.Key)
		values = append(values, transientValueName(row.Key))
	}

	if len(timeouts) == 0 {
		return Done("no expired transients"), nil
	}

	sizeQuery := func(n int) string {
		return fmt.Sprintf(`SELECT COALESCE(SUM(LENGTH(option_value)), 0) FROM %s WHERE option_name IN (%s)`,
			options, store.Placeholders(n))
	}

	if p.DryRun {
		var size int64
		for _, batch := range batches(values) {
			n, err := s.Count(ctx, sizeQuery(len(batch)), batch...)
			if err != nil {
				return Outcome{}, fmt.Errorf("failed to measure transients: %w", err)
			}
			size += n
		}
		return Done("would delete %s (%s)",
			english.Plural(len(timeouts), "expired transient", ""), humanize.Bytes(uint64(size))), nil
	}

	var deleted, size int64
	err = s.InTx(ctx, func(tx *store.Tx) error {
		for _, batch := range batches(values) {
			n, err := tx.Count(ctx, sizeQuery(len(batch)), batch...)
			if err != nil {
				return fmt.Errorf("failed to measure transients: %w", err)
			}
			size += n

			if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE option_name IN (%s)`,
				options, store.Placeholders(len(batch))), batch...); err != nil {
				return fmt.Errorf("failed to delete transient values: %w", err)
			}
		}
		for _, batch := range batches(timeouts) {
			n, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE option_name IN (%s)`,
				options, store.Placeholders(len(batch))), batch...)
			if err != nil {
				return fmt.Errorf("failed to delete transient timeouts: %w", err)
			}
			deleted += n
		}
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	return Done("deleted %s (%s freed)",
		english.Plural(int(deleted), "expired transient", ""), humanize.Bytes(uint64(size))), nil
}

func transientValueName(timeoutName string) string {
	for _, p := range transientTimeoutPrefixes {
		if strings.HasPrefix(timeoutName, p.timeout) {
			return p.value + strings.TrimPrefix(timeoutName, p.timeout)
		}
	}
	return timeoutName
}

// batches splits names into IN-list sized chunks as query arguments.
func batches(names []string) [][]any {
	var out [][]any
	for start := 0; start < len(names); start += batchSize {
		end := min(start+batchSize, len(names))
		batch := make([]any, 0, end-start)
		for _, n := range names[start:end] {
			batch = append(batch, n)
		}
		out = append(out, batch)
	}
	return out
}
