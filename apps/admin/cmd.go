package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/ecurie/apps/api/echo"
	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
)

type commandLine struct {
	conf   *core.Config
	openDB func() (*sql.DB, error) // migrations only
}

func newRootCmd(cli *commandLine) *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        cli.conf.AppName + " administration",
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(cli),
		newTokenCmd(cli),
		newSessionsCmd(),
	)
	return root
}

func newMigrateCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [VERSION]",
		Short: "Run database migrations",
		Long: "Run database migrations.\n\nCommands:\n" +
			"  up                   migrate to the most recent version\n" +
			"  up-by-one            migrate up by a single version\n" +
			"  up-to VERSION        migrate up to a specific version\n" +
			"  down                 roll back the version by 1\n" +
			"  down-to VERSION      roll back to a specific version\n" +
			"  redo                 re-run the latest migration\n" +
			"  status               dump the migration status",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.migrate(args)
		},
	}
}

func newTokenCmd(cli *commandLine) *cobra.Command {
	var (
		id, role string
		expires  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for an actor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id = core.CleanString(id)
			role = core.CleanString(role, true /* lower */)
			if id == "" {
				return errors.New("--id is required")
			}
			if !isRole(role) {
				return errors.Errorf("--role must be one of %s", strings.Join(training.AllRoles, ", "))
			}
			if expires <= 0 {
				expires = cli.conf.Server.JWTExpirationDelta
			}

			actor := training.Actor{ID: id, Role: role}
			token, err := echoapi.GenerateToken(echoapi.GetActorClaims(actor, cli.conf.AppName, expires), cli.conf.SecretKey)
			if err != nil {
				return errors.Wrap(err, "generating token")
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "the actor's ID")
	cmd.Flags().StringVar(&role, "role", training.RoleTrainee, "the actor's role")
	cmd.Flags().DurationVar(&expires, "expires", 0, "token lifetime (defaults to the server's JWT expiration delta)")
	return cmd
}

func isRole(role string) bool {
	for _, r := range training.AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func newSessionsCmd() *cobra.Command {
	var (
		start, end, clock string
		days              []string
	)
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Preview the sessions a schedule materializes into",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sched training.Schedule
			var err error
			if sched.StartDate, err = training.ParseDate(start); err != nil {
				return errors.Wrap(err, "parsing --start")
			}
			if sched.EndDate, err = training.ParseDate(end); err != nil {
				return errors.Wrap(err, "parsing --end")
			}
			sched.RecurringDays = days
			sched.Time = clock

			sessions, err := training.PreviewSessions(sched)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range sessions {
				fmt.Fprintf(out, "%s %-9s %s-%s\n", s.Date, strings.ToLower(s.Date.Weekday().String()), s.StartTime, s.EndTime)
			}
			fmt.Fprintf(out, "%d session(s)\n", len(sessions))
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "first date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "last date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&days, "days", nil, "weekdays, e.g. monday,wednesday")
	cmd.Flags().StringVar(&clock, "time", "", "start time (HH:MM)")
	return cmd
}
