package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize/english"

	"github.com/dbsweep/dbsweep/internal/store"
)

// AutoDraftDays is how old an auto-draft must be before it is deleted.
const AutoDraftDays = 7

// postTimeLayout is how post_modified is stored.
const postTimeLayout = "2006-01-02 15:04:05"

func deleteOldRevisions(ctx context.Context, s *store.Session, p RunParameters) (Outcome, error) {
	cutoff := postCutoff(p.Now, p.RevisionDays)
	return prunePosts(ctx, s, p.DryRun, postFilter{
		noun:  "revision",
		where: "post_type = 'revision' AND post_modified < ?",
		args:  []any{cutoff},
		scope: fmt.Sprintf("older than %s", english.Plural(p.RevisionDays, "day", "")),
	})
}

func autoDrafts(ctx context.Context, s *store.Session, p RunParameters) (Outcome, error) {
	cutoff := postCutoff(p.Now, AutoDraftDays)
	return prunePosts(ctx, s, p.DryRun, postFilter{
		noun:  "auto-draft",
		where: "post_status = 'auto-draft' AND post_modified < ?",
		args:  []any{cutoff},
		scope: fmt.Sprintf("older than %s", english.Plural(AutoDraftDays, "day", "")),
	})
}

func postCutoff(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, -days).Format(postTimeLayout)
}

type postFilter struct {
	noun  string
	where string
	args  []any
	scope string
}

// prunePosts deletes the posts matching f together with their metadata.
func prunePosts(ctx context.Context, s *store.Session, dryRun bool, f postFilter) (Outcome, error) {
	missing, err := s.MissingTables(ctx, store.TablePosts, store.TablePostmeta)
	if err != nil {
		return Outcome{}, err
	}
	hasMeta := true
	for _, name := range missing {
		if name == s.TableName(store.TablePosts) {
			return Skip("table %s does not exist", name), nil
		}
		hasMeta = false
	}

	posts := s.Table(store.TablePosts)
	if dryRun {
		n, err := s.Count(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, posts, f.where), f.args...)
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to count %ss: %w", f.noun, err)
		}
		if n == 0 {
			return Done("no %ss %s", f.noun, f.scope), nil
		}
		return Done("would delete %s %s", english.Plural(int(n), f.noun, ""), f.scope), nil
	}

	var deleted int64
	err = s.InTx(ctx, func(tx *store.Tx) error {
		if hasMeta {
			if _, err := tx.Exec(ctx, fmt.Sprintf(
				`DELETE FROM %s WHERE post_id IN (SELECT id FROM %s WHERE %s)`,
				s.Table(store.TablePostmeta), posts, f.where), f.args...); err != nil {
				return fmt.Errorf("failed to delete %s metadata: %w", f.noun, err)
			}
		}
		n, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s`, posts, f.where), f.args...)
		if err != nil {
			return fmt.Errorf("failed to delete %ss: %w", f.noun, err)
		}
		deleted = n
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	if deleted == 0 {
		return Done("no %ss %s", f.noun, f.scope), nil
	}
	return Done("deleted %s %s", english.Plural(int(deleted), f.noun, ""), f.scope), nil
}

func orphanedPostmeta(ctx context.Context, s *store.Session, p RunParameters) (Outcome, error) {
	missing, err := s.MissingTables(ctx, store.TablePostmeta, store.TablePosts)
	if err != nil {
		return Outcome{}, err
	}
	if len(missing) > 0 {
		return Skip("table %s does not exist", missing[0]), nil
	}

	where := fmt.Sprintf(`post_id NOT IN (SELECT id FROM %s)`, s.Table(store.TablePosts))
	postmeta := s.Table(store.TablePostmeta)

	if p.DryRun {
		n, err := s.Count(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, postmeta, where))
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to count orphaned metadata: %w", err)
		}
		if n == 0 {
			return Done("no orphaned post metadata"), nil
		}
		return Done("would delete %s", english.Plural(int(n), "orphaned metadata row", "")), nil
	}

	n, err := s.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s`, postmeta, where))
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to delete orphaned metadata: %w", err)
	}
	if n == 0 {
		return Done("no orphaned post metadata"), nil
	}
	return Done("deleted %s", english.Plural(int(n), "orphaned metadata row", "")), nil
}
