// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/schedule"
	"github.com/pdiddy/content-engine/internal/tenant"
	"github.com/pdiddy/content-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Acquire posts for a tenant and generate drafts",
	Long: `Run fills a bucket of candidates for the tenant, by keyword search
(--mode topic) or from its monitored creators (--mode creator), keeps the
high-engagement ones and rewrites each in the tenant's voice. Drafts are
stored with status "drafted" and the run is added to the execution log.

Fewer drafts than --count is a normal outcome when the source runs dry.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().String("tenant", "", "tenant id from the tenants file (required)")
	runCmd.Flags().String("mode", "topic", "source mode: topic or creator")
	runCmd.Flags().Int("count", tenant.DefaultCount, "number of drafts requested (1-50)")
	runCmd.Flags().Bool("json", false, "output the run result as JSON")
	_ = runCmd.MarkFlagRequired("tenant")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	tenantID, _ := cmd.Flags().GetString("tenant")
	modeFlag, _ := cmd.Flags().GetString("mode")
	count, _ := cmd.Flags().GetInt("count")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	mode, err := types.ParseSourceMode(modeFlag)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := a.tenants()
	if err != nil {
		return err
	}
	t, err := reg.Find(tenantID)
	if err != nil {
		return err
	}

	sched, err := a.scheduler()
	if err != nil {
		return err
	}
	res, err := sched.Execute(cmd.Context(), t, mode, count, schedule.TriggerManual)
	if err != nil {
		return err
	}
	return formatRunOutput(cmd.OutOrStdout(), res, jsonOutput)
}

func formatRunOutput(w io.Writer, res types.RunResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "Acquired %d candidate(s) in %d attempt(s), selected %d\n",
		res.Acquired, res.Attempts, res.Selected)
	if res.Count == 0 {
		fmt.Fprintln(w, "No drafts generated.")
		return nil
	}

	for i, d := range res.Processed {
		fmt.Fprintf(w, "\n[%d] %s\n    source: %s\n", i+1, d.ID, d.Locator)
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintln(w, d.Generated)
	}
	fmt.Fprintf(w, "\n%d draft(s) generated\n", res.Count)
	return nil
}
