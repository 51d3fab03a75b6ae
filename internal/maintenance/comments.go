package maintenance

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize/english"

	"github.com/dbsweep/dbsweep/internal/store"
)

const spamWhere = "comment_approved IN ('spam', 'trash')"

func spamComments(ctx context.Context, s *store.Session, p RunParameters) (Outcome, error) {
	missing, err := s.MissingTables(ctx, store.TableComments, store.TableCommentmeta)
	if err != nil {
		return Outcome{}, err
	}
	hasMeta := true
	for _, name := range missing {
		if name == s.TableName(store.TableComments) {
			return Skip("table %s does not exist", name), nil
		}
		hasMeta = false
	}

	comments := s.Table(store.TableComments)
	if p.DryRun {
		n, err := s.Count(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, comments, spamWhere))
		if err != nil {
			return Outcome{}, fmt.Errorf("failed to count spam comments: %w", err)
		}
		if n == 0 {
			return Done("no spam or trashed comments"), nil
		}
		return Done("would delete %s", english.Plural(int(n), "spam or trashed comment", "")), nil
	}

	var deleted int64
	err = s.InTx(ctx, func(tx *store.Tx) error {
		if hasMeta {
			if _, err := tx.Exec(ctx, fmt.Sprintf(
				`DELETE FROM %s WHERE comment_id IN (SELECT comment_id FROM %s WHERE %s)`,
				s.Table(store.TableCommentmeta), comments, spamWhere)); err != nil {
				return fmt.Errorf("failed to delete comment metadata: %w", err)
			}
		}
		n, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE %s`, comments, spamWhere))
		if err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		deleted = n
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}

	if deleted == 0 {
		return Done("no spam or trashed comments"), nil
	}
	return Done("deleted %s", english.Plural(int(deleted), "spam or trashed comment", "")), nil
}
