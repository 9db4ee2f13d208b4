package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/store/districtassign"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"github.com/spf13/cobra"
)

func checkNationalID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !inputval.IsValidNationalID(s) {
		return "", fmt.Errorf("%q is not a valid national ID", s)
	}
	return s, nil
}

func newDistrictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "district",
		Short: "Manage district administrators",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "assign NATIONAL_ID DISTRICT",
		Short: "Make NATIONAL_ID an administrator of DISTRICT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nid, err := checkNationalID(args[0])
			if err != nil {
				return err
			}
			district := strings.TrimSpace(args[1])
			if district == "" {
				return errors.New("district is required")
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			_, err = svc.DistrictAssign.Create(ctx, models.DistrictAssignment{
				NationalID:    nid,
				District:      district,
				CreatedAt:     time.Now().UTC(),
				CreatedByID:   cliActor.ID,
				CreatedByName: cliActor.Name,
			})
			if errors.Is(err, districtassign.ErrDuplicate) {
				a.printf("%s already administers %s\n", nid, district)
				return nil
			}
			if err != nil {
				return err
			}
			svc.AuditLog.DistrictAssigned(ctx, nil, cliActor, nid, district)
			a.printf("%s now administers %s\n", nid, district)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unassign NATIONAL_ID DISTRICT",
		Short: "Remove a district administrator",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nid, err := checkNationalID(args[0])
			if err != nil {
				return err
			}
			district := strings.TrimSpace(args[1])
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			n, err := svc.DistrictAssign.Delete(ctx, nid, district)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%s does not administer %s", nid, district)
			}
			svc.AuditLog.DistrictUnassigned(ctx, nil, cliActor, nid, district)
			a.printf("removed %s from %s\n", nid, district)
			return nil
		},
	})

	var only string
	list := &cobra.Command{
		Use:   "list",
		Short: "List district administrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			rows, err := svc.DistrictAssign.List(ctx, strings.TrimSpace(only))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NATIONAL_ID\tDISTRICT\tASSIGNED_BY\tASSIGNED_AT")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.NationalID, r.District, r.CreatedByName, r.CreatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&only, "district", "", "Only list this district")
	cmd.AddCommand(list)
	return cmd
}

func newNeighborhoodCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighborhood",
		Short: "Manage neighborhood assignees",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "assign NATIONAL_ID NEIGHBORHOOD",
		Short: "Assign NATIONAL_ID to NEIGHBORHOOD, replacing any previous assignment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			nid, err := checkNationalID(args[0])
			if err != nil {
				return err
			}
			hood := strings.TrimSpace(args[1])
			if hood == "" {
				return errors.New("neighborhood is required")
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			if _, err := svc.NeighborhoodAssign.Set(ctx, models.NeighborhoodAssignment{
				NationalID:    nid,
				Neighborhood:  hood,
				CreatedAt:     time.Now().UTC(),
				CreatedByID:   cliActor.ID,
				CreatedByName: cliActor.Name,
			}); err != nil {
				return err
			}
			svc.AuditLog.NeighborhoodAssigned(ctx, nil, cliActor, nid, hood)
			a.printf("%s assigned to %s\n", nid, hood)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "unassign NATIONAL_ID",
		Short: "Remove the neighborhood assignment of NATIONAL_ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nid, err := checkNationalID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := a.context(cmd)
			defer cancel()
			svc, err := a.services(ctx)
			if err != nil {
				return err
			}
			n, err := svc.NeighborhoodAssign.Delete(ctx, nid)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%s has no neighborhood assignment", nid)
			}
			svc.AuditLog.NeighborhoodUnassigned(ctx, nil, cliActor, nid)
			a.printf("removed neighborhood assignment of %s\n", nid)
			return nil
		},
	})
	return cmd
}
