// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-engine/internal/research"
	"github.com/pdiddy/content-engine/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Collect content ideas for a topic",
	Long: `Research searches the source for top posts on a topic, pairs each one
with recent news headlines and asks the model for content ideas. Each post
is stored as a research note with status "idea". Research notes never block
future candidates as duplicates.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("tenant", "", "tenant id the notes belong to (required)")
	researchCmd.Flags().String("topic", "", "topic to research (required)")
	researchCmd.Flags().Int("posts", research.DefaultPosts, "number of posts to research")
	researchCmd.Flags().Int("ideas", research.DefaultIdeas, "ideas requested per post")
	researchCmd.Flags().Bool("json", false, "output the notes as JSON")
	_ = researchCmd.MarkFlagRequired("tenant")
	_ = researchCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	tenantID, _ := cmd.Flags().GetString("tenant")
	topic, _ := cmd.Flags().GetString("topic")
	posts, _ := cmd.Flags().GetInt("posts")
	ideas, _ := cmd.Flags().GetInt("ideas")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	reg, err := a.tenants()
	if err != nil {
		return err
	}
	if _, err := reg.Find(tenantID); err != nil {
		return err
	}

	r, err := a.researcher()
	if err != nil {
		return err
	}
	if posts > 0 {
		r.Posts = posts
	}
	if ideas > 0 {
		r.Ideas = ideas
	}

	res, err := r.Run(cmd.Context(), tenantID, topic)
	if err != nil {
		return err
	}
	return formatResearchOutput(cmd.OutOrStdout(), res, jsonOutput)
}

func formatResearchOutput(w io.Writer, res research.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Records)
	}

	if len(res.News) > 0 {
		fmt.Fprintf(w, "News for %q:\n", res.Topic)
		for _, n := range res.News {
			fmt.Fprintf(w, "  - %s (%s)\n", n.Title, n.Source)
		}
		fmt.Fprintln(w)
	}

	for _, rec := range res.Records {
		fmt.Fprintf(w, "%s  %s\n", rec.ID, rec.Locator)
		for _, idea := range ideasOf(rec) {
			fmt.Fprintf(w, "  * %s\n", idea.Title)
			if idea.Hook != "" {
				fmt.Fprintf(w, "    hook: %s\n", idea.Hook)
			}
		}
	}

	s := res.Summary
	fmt.Fprintf(w, "\n%d saved, %d skipped, %d failed\n", s.Saved, s.Skipped, s.Failed)
	return nil
}

// ideasOf returns the ideas attached to a freshly created research note.
func ideasOf(rec types.PersistedRecord) []types.Idea {
	ideas, _ := rec.Meta["ideas"].([]types.Idea)
	return ideas
}
