package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"github.com/spf13/cobra"
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Weekly call task commands",
	}

	var (
		week  string
		count int
		as    string
	)
	create := &cobra.Command{
		Use:   "create NEIGHBORHOOD",
		Short: "Create this week's call tasks for a neighborhood",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			caller, err := resolveCaller(ctx, svc.Resolver, as)
			if err != nil {
				return err
			}
			out, err := svc.Engine.CreateWeeklyTasks(ctx, taskassign.Request{
				Neighborhood: args[0],
				Week:         week,
				Count:        count,
			}, caller)
			if errors.Is(err, taskassign.ErrNoEligibleCitizens) {
				a.printf("no eligible citizens left in %s for %s\n", args[0], out.Week)
				return nil
			}
			if err != nil {
				return err
			}
			svc.AuditLog.TasksCreated(ctx, nil, auditlog.Actor{ID: caller.NationalID, Name: caller.Name}, args[0], out.Week, out.BatchID, out.Created, out.Failed)
			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	create.Flags().StringVar(&week, "week", "", "Week label (YYYY-Www); defaults to the current week")
	create.Flags().IntVarP(&count, "count", "n", 0, "Number of tasks; 0 uses the configured default")
	create.Flags().StringVar(&as, "as", "", "Act as this national ID instead of a super-admin")

	var statsWeek string
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show per-neighborhood task counts for a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			if statsWeek == "" {
				statsWeek = svc.Engine.CurrentWeek()
			}
			rows, err := svc.Board.WeekStats(ctx, statsWeek, systemIdentity())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NEIGHBORHOOD\tTOTAL\tPENDING\tCALLED\tUNREACHABLE")
			for _, s := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", s.Neighborhood, s.Total, s.Pending, s.Called, s.Unreachable)
			}
			return tw.Flush()
		},
	}
	stats.Flags().StringVar(&statsWeek, "week", "", "Week label (YYYY-Www); defaults to the current week")

	cmd.AddCommand(create, stats)
	return cmd
}

// resolveCaller resolves --as, or returns the CLI's super-admin identity.
func resolveCaller(ctx context.Context, resolver *authz.Resolver, nationalID string) (authz.Identity, error) {
	if nationalID == "" {
		return systemIdentity(), nil
	}
	nid, err := checkNationalID(nationalID)
	if err != nil {
		return authz.Identity{}, err
	}
	return resolver.Resolve(ctx, nid, "")
}
