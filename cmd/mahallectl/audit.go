package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	"github.com/spf13/cobra"
)

func newAuditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit log",
	}

	var (
		category string
		actor    string
		since    time.Duration
		limit    int64
	)
	recent := &cobra.Command{
		Use:   "recent",
		Short: "Print the most recent audit events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			f := audit.QueryFilter{Category: category, ActorID: actor, Limit: limit}
			if since > 0 {
				start := time.Now().Add(-since)
				f.StartTime = &start
			}
			events, err := svc.AuditEvents.Query(ctx, f)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tCATEGORY\tEVENT\tACTOR\tOK\tDETAILS")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
					e.Timestamp.Format(time.RFC3339), e.Category, e.EventType, e.ActorID, e.Success, formatDetails(e.Details))
			}
			return tw.Flush()
		},
	}
	recent.Flags().StringVar(&category, "category", "", "auth, admin or tasks")
	recent.Flags().StringVar(&actor, "actor", "", "Only events by this national ID")
	recent.Flags().DurationVar(&since, "since", 0, "Only events newer than this (e.g. 24h)")
	recent.Flags().Int64Var(&limit, "limit", 50, "Maximum number of events")

	cmd.AddCommand(recent)
	return cmd
}

// formatDetails renders details as sorted key=value pairs.
func formatDetails(d map[string]string) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+d[k])
	}
	return strings.Join(parts, " ")
}
