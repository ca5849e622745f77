// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/schedule"
	"github.com/pdiddy/content-engine/pkg/types"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run tenants daily at their configured time (run, next, history)",
	Long: `Schedule triggers the daily run of every tenant with an enabled schedule
at its HH:MM local time in its IANA timezone. Every run, scheduled or manual,
is recorded in the execution log.`,
}

// --- run subcommand ---

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Wait for and execute scheduled runs until interrupted",
	RunE:  runScheduleRun,
}

func runScheduleRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := a.tenants()
	if err != nil {
		return err
	}
	sched, err := a.scheduler()
	if err != nil {
		return err
	}

	a.logger.Info("scheduler started", "tenants", len(reg.Scheduled()))
	err = sched.Loop(cmd.Context(), reg.All())
	if errors.Is(err, context.Canceled) {
		a.logger.Info("scheduler stopped")
		return nil
	}
	return err
}

// --- next subcommand ---

var scheduleNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next planned run of each scheduled tenant",
	RunE:  runScheduleNext,
}

func runScheduleNext(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := a.tenants()
	if err != nil {
		return err
	}
	plan, err := schedule.Plan(reg.All(), time.Now())
	if err != nil {
		return err
	}
	return formatPlanOutput(cmd.OutOrStdout(), plan)
}

func formatPlanOutput(w io.Writer, plan []schedule.Entry) error {
	if len(plan) == 0 {
		fmt.Fprintln(w, "No tenant has an enabled schedule.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-8s  %-5s  %-25s  %s\n", "Tenant", "Mode", "Count", "Next run (local)", "Timezone")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, e := range plan {
		s := e.Tenant.Schedule
		fmt.Fprintf(w, "%-12s  %-8s  %-5d  %-25s  %s\n",
			clip(e.Tenant.ID, 12), s.Source, s.Count, e.At.Format("2006-01-02 15:04 MST"), s.Timezone)
	}
	return nil
}

// --- history subcommand ---

var scheduleHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent executions, newest first",
	RunE:  runScheduleHistory,
}

func runScheduleHistory(cmd *cobra.Command, args []string) error {
	tenantID, _ := cmd.Flags().GetString("tenant")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	executions, err := a.store.ListExecutions(context.Background(), tenantID, limit)
	if err != nil {
		return err
	}
	return formatHistoryOutput(cmd.OutOrStdout(), executions, jsonOutput)
}

func formatHistoryOutput(w io.Writer, executions []types.Execution, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(executions)
	}

	if len(executions) == 0 {
		fmt.Fprintln(w, "No executions recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-16s  %-12s  %-9s  %-8s  %-7s  %-5s  %s\n",
		"Started", "Tenant", "Trigger", "Mode", "Status", "Posts", "Error")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, e := range executions {
		fmt.Fprintf(w, "%-16s  %-12s  %-9s  %-8s  %-7s  %-5d  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04"), clip(e.Tenant, 12), e.Trigger,
			e.SourceMode, e.Status, e.PostsGenerated, clip(e.ErrorMessage, 40))
	}
	return nil
}

func init() {
	scheduleHistoryCmd.Flags().String("tenant", "", "filter by tenant id")
	scheduleHistoryCmd.Flags().Int("limit", 20, "maximum executions")
	scheduleHistoryCmd.Flags().Bool("json", false, "output results as JSON")

	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleNextCmd)
	scheduleCmd.AddCommand(scheduleHistoryCmd)

	rootCmd.AddCommand(scheduleCmd)
}
