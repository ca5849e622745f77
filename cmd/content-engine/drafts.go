// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/history"
	"github.com/pdiddy/content-engine/pkg/types"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Review stored drafts and research notes (list, show, status, export)",
	Long: `Drafts works on the local store of generated drafts and research notes.
Use subcommands to list and inspect records, move a draft through review
(idea, drafted, approved, posted, discarded) or export records.`,
}

// --- list subcommand ---

var draftsListCmd = &cobra.Command{
	Use:   "list [search]",
	Short: "List stored records, newest first",
	RunE:  runDraftsList,
}

func runDraftsList(cmd *cobra.Command, args []string) error {
	q, err := queryFromFlags(cmd, args)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.store.List(context.Background(), q)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatListOutput(cmd.OutOrStdout(), records, jsonOutput)
}

func formatListOutput(w io.Writer, records []types.PersistedRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-10s  %-9s  %-8s  %-16s  %s\n",
		"ID", "Tenant", "Status", "Mode", "Created", "Text")
	fmt.Fprintln(w, strings.Repeat("-", 130))

	for _, r := range records {
		text := r.Draft.Rewritten
		if text == "" {
			text = r.OriginalText
		}
		fmt.Fprintf(w, "%-36s  %-10s  %-9s  %-8s  %-16s  %s\n",
			r.ID, clip(r.Tenant, 10), r.Status, r.SourceMode,
			r.CreatedAt.Local().Format("2006-01-02 15:04"), clip(oneLine(text), 40))
	}

	fmt.Fprintf(w, "\n%d records\n", len(records))
	return nil
}

// --- show subcommand ---

var draftsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one record with its outline and generated draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftsShow,
}

func runDraftsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	fmt.Fprintf(w, "ID:       %s\n", rec.ID)
	fmt.Fprintf(w, "Tenant:   %s\n", rec.Tenant)
	fmt.Fprintf(w, "Kind:     %s (%s)\n", rec.Kind, rec.SourceMode)
	fmt.Fprintf(w, "Status:   %s\n", rec.Status)
	fmt.Fprintf(w, "Source:   %s\n", rec.Locator)
	if rec.Author != "" {
		fmt.Fprintf(w, "Author:   %s\n", rec.Author)
	}
	fmt.Fprintf(w, "Engaged:  %d likes, %d comments, %d shares\n",
		rec.Engagement.Likes, rec.Engagement.Comments, rec.Engagement.SharesOrZero())
	fmt.Fprintf(w, "Created:  %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04"))

	section(w, "Original", rec.OriginalText)
	section(w, "Outline", rec.Draft.Outline)
	section(w, "Draft", rec.Draft.Rewritten)
	return nil
}

func section(w io.Writer, title, body string) {
	if body == "" {
		return
	}
	fmt.Fprintf(w, "\n== %s ==\n%s\n", title, body)
}

// --- status subcommand ---

var draftsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a record to idea, drafted, approved, posted or discarded",
	Args:  cobra.ExactArgs(2),
	RunE:  runDraftsStatus,
}

func runDraftsStatus(cmd *cobra.Command, args []string) error {
	status := types.DraftStatus(strings.ToLower(args[1]))
	if !types.ValidDraftStatus(status) {
		return fmt.Errorf("unknown status %q: use idea, drafted, approved, posted or discarded", args[1])
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.UpdateStatus(context.Background(), args[0], status); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], status)
	return nil
}

// --- export subcommand ---

var draftsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records to YAML, JSON or DOCX",
	Long: `Export writes the matching records to {store-dir}/exports/drafts.{format}
or to --output. Supports the same filter flags as list.`,
	RunE: runDraftsExport,
}

func runDraftsExport(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	format, err := history.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	q, err := queryFromFlags(cmd, args)
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	path, err := a.store.Export(context.Background(), q, format, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

func queryFromFlags(cmd *cobra.Command, args []string) (history.Query, error) {
	tenantID, _ := cmd.Flags().GetString("tenant")
	status, _ := cmd.Flags().GetString("status")
	modeFlag, _ := cmd.Flags().GetString("mode")
	kind, _ := cmd.Flags().GetString("kind")
	search, _ := cmd.Flags().GetString("search")
	limit, _ := cmd.Flags().GetInt("limit")
	if search == "" && len(args) > 0 {
		search = strings.Join(args, " ")
	}

	q := history.Query{
		Tenant: tenantID,
		Kind:   types.RecordKind(kind),
		Search: search,
		Limit:  limit,
	}
	if status != "" {
		q.Status = types.DraftStatus(strings.ToLower(status))
		if !types.ValidDraftStatus(q.Status) {
			return history.Query{}, fmt.Errorf("unknown status %q", status)
		}
	}
	if modeFlag != "" {
		mode, err := types.ParseSourceMode(modeFlag)
		if err != nil {
			return history.Query{}, err
		}
		q.Mode = mode
	}
	return q, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("tenant", "", "filter by tenant id")
	cmd.Flags().String("status", "", "filter by status")
	cmd.Flags().String("mode", "", "filter by source mode: topic or creator")
	cmd.Flags().String("kind", "", "filter by kind: draft or research")
	cmd.Flags().String("search", "", "full-text search in original and generated text")
	cmd.Flags().Int("limit", 0, "maximum records (0 = use default)")
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func init() {
	addFilterFlags(draftsListCmd)
	draftsListCmd.Flags().Bool("json", false, "output results as JSON")

	draftsShowCmd.Flags().Bool("json", false, "output the record as JSON")

	addFilterFlags(draftsExportCmd)
	draftsExportCmd.Flags().String("format", "yaml", "export format: yaml, json or docx")
	draftsExportCmd.Flags().String("output", "", "output file (default {store-dir}/exports/drafts.{format})")

	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsShowCmd)
	draftsCmd.AddCommand(draftsStatusCmd)
	draftsCmd.AddCommand(draftsExportCmd)

	rootCmd.AddCommand(draftsCmd)
}
