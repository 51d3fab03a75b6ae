package maintenance

// Built-in operation ids.
const (
	OpExpiredTransients  = "expired_transients"
	OpAnalyzeTables      = "analyze_tables"
	OpDeleteOldRevisions = "delete_old_revisions"
	OpAutoDrafts         = "auto_drafts"
	OpOrphanedPostmeta   = "orphaned_postmeta"
	OpSpamComments       = "spam_comments"
)

// Builtin returns the built-in catalog in execution order.
func Builtin() []Operation {
	return []Operation{
		{
			ID:          OpExpiredTransients,
			Label:       "Expired transients",
			Description: "Delete cached transients whose expiry time has passed.",
			Execute:     expiredTransients,
		},
		{
			ID:          OpAnalyzeTables,
			Label:       "Analyze tables",
			Description: "Refresh planner statistics for every content table.",
			Execute:     analyzeTables,
		},
		{
			ID:          OpDeleteOldRevisions,
			Label:       "Old revisions",
			Description: "Delete post revisions older than the retention window.",
			Execute:     deleteOldRevisions,
		},
		{
			ID:          OpAutoDrafts,
			Label:       "Stale auto-drafts",
			Description: "Delete auto-drafts that were never published, older than a week.",
			Execute:     autoDrafts,
		},
		{
			ID:          OpOrphanedPostmeta,
			Label:       "Orphaned post metadata",
			Description: "Delete post metadata rows whose post no longer exists.",
			Execute:     orphanedPostmeta,
		},
		{
			ID:          OpSpamComments,
			Label:       "Spam and trashed comments",
			Description: "Delete comments marked as spam or trash, with their metadata.",
			Execute:     spamComments,
		},
	}
}
