package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quill/internal/articles"
	"quill/internal/config"
	"quill/internal/lifecycle"
	"quill/internal/logging"
	"quill/internal/notifications"
	"quill/internal/quality"
	"quill/internal/services/poster"
	"quill/internal/store"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and moderate the content queue",
	}

	queueCmd.AddCommand(newQueueStatusCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueApproveCommand(ctx))
	queueCmd.AddCommand(newQueueRejectCommand(ctx))
	queueCmd.AddCommand(newQueueDeleteCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueArchiveCommand(ctx))

	return queueCmd
}

func newModerationService(cfg *config.Config, st *store.Store) *lifecycle.Service {
	var post poster.Poster
	if cfg.Poster.Enabled {
		post = poster.NewClient(poster.Config{
			BaseURL:        cfg.Poster.BaseURL,
			BearerToken:    cfg.Poster.BearerToken,
			TimeoutSeconds: cfg.Poster.TimeoutSeconds,
		})
	}
	return lifecycle.New(st, post, quality.NewGate(), notifications.NewService(cfg), logging.NewNop())
}

func parseItemIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseStatuses(values []string) ([]articles.Status, error) {
	statuses := make([]articles.Status, 0, len(values))
	for _, value := range values {
		status, ok := articles.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func newQueueStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(stats))
				for _, status := range articles.AllStatuses() {
					if count, ok := stats[status]; ok {
						rows = append(rows, []string{string(status), strconv.Itoa(count)})
					}
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Status", "Count"}, rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var listStatuses []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				statuses, err := parseStatuses(listStatuses)
				if err != nil {
					return err
				}
				items, err := st.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matching items")
					return nil
				}
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						string(item.Status),
						truncateText(item.Title, 60),
						item.Source,
						strconv.Itoa(item.ImpactScore),
						item.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Status", "Title", "Source", "Impact", "Created"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&listStatuses, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				item, err := st.GetByID(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", ids[0])
				}
				printItem(cmd, item)
				return nil
			})
		},
	}
}

func printItem(cmd *cobra.Command, item *articles.Item) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:       %d\n", item.ID)
	fmt.Fprintf(out, "Status:   %s\n", item.Status)
	fmt.Fprintf(out, "Title:    %s\n", item.Title)
	fmt.Fprintf(out, "URL:      %s\n", item.URL)
	fmt.Fprintf(out, "Source:   %s (%s)\n", item.Source, item.SourceType)
	fmt.Fprintf(out, "Hash:     %s\n", item.Hash)
	fmt.Fprintf(out, "Fetched:  %s\n", formatMaybeTime(&item.FetchedAt))
	if item.TweetText != "" {
		fmt.Fprintf(out, "Tweet:    %s\n", item.TweetText)
		fmt.Fprintf(out, "Scores:   impact %d, quality %d\n", item.ImpactScore, item.QualityScore)
	}
	if item.RetryCount > 0 {
		fmt.Fprintf(out, "Retries:  %d\n", item.RetryCount)
	}
	if item.RejectionReason != "" {
		fmt.Fprintf(out, "Rejected: %s (%s)\n", item.RejectionReason, formatMaybeTime(item.RejectedAt))
	}
	if item.DeletionReason != "" {
		fmt.Fprintf(out, "Deleted:  %s (%s)\n", item.DeletionReason, formatMaybeTime(item.DeletedAt))
	}
	if item.PostedTweetID != "" {
		fmt.Fprintf(out, "Posted:   %s at %s\n", item.PostedURL, formatMaybeTime(item.PostedAt))
	}
	if item.ErrorReason != "" {
		fmt.Fprintf(out, "Error:    %s\n", item.ErrorReason)
	}
}

func newQueueApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <id> [id...]",
		Short: "Approve pending items and post them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := newModerationService(cfg, st)
				outcomes := svc.ApproveAll(cmd.Context(), ids)
				return printOutcomes(cmd, outcomes, func(item *articles.Item) string {
					return fmt.Sprintf("posted %s", item.PostedURL)
				})
			})
		},
	}
}

func newQueueRejectCommand(ctx *commandContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "reject <id> [id...]",
		Short: "Reject items with a reason",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := newModerationService(cfg, st)
				outcomes := svc.RejectAll(cmd.Context(), ids, reason)
				return printOutcomes(cmd, outcomes, func(item *articles.Item) string {
					return "rejected"
				})
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "rejected by operator", "Rejection reason")
	return cmd
}

func newQueueDeleteCommand(ctx *commandContext) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item (it keeps counting as seen for dedup)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := newModerationService(cfg, st)
				item, err := svc.Delete(cmd.Context(), ids[0], reason)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "item %d deleted: %s\n", item.ID, truncateText(item.Title, 60))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "deleted by operator", "Deletion reason")
	return cmd
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Send a rejected item back for regeneration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := newModerationService(cfg, st)
				item, err := svc.RetryRejected(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "item %d back to discovered (retry %d)\n", item.ID, item.RetryCount)
				return nil
			})
		},
	}
}

func newQueueArchiveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a rejected item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseItemIDs(args)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				svc := newModerationService(cfg, st)
				item, err := svc.Archive(cmd.Context(), ids[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "item %d archived\n", item.ID)
				return nil
			})
		},
	}
}

func printOutcomes(cmd *cobra.Command, outcomes []lifecycle.Outcome, describe func(*articles.Item) string) error {
	out := cmd.OutOrStdout()
	failures := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures++
			fmt.Fprintf(out, "item %d: %v\n", outcome.ID, outcome.Err)
			continue
		}
		fmt.Fprintf(out, "item %d: %s\n", outcome.ID, describe(outcome.Item))
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d items failed", failures, len(outcomes))
	}
	return nil
}

func truncateText(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 1 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}

func formatMaybeTime(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04:05")
}
