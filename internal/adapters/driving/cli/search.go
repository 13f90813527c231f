package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbase/internal/core/domain"
)

var (
	searchK     int
	searchIndex string
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base",
	Long: `Embeds the query and returns the most similar chunks from the index,
best match first. Scores are cosine similarities.

A missing index or an unreachable provider yields an empty result.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchK, "k", "k", domain.DefaultK, "maximum number of results")
	searchCmd.Flags().StringVar(&searchIndex, "index", "", "index artifact path (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if kbService == nil {
		return errors.New("knowledge base service not configured")
	}

	results := kbService.Search(cmd.Context(), args[0], domain.QueryOptions{
		K:            searchK,
		ArtifactPath: searchIndex,
	})

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

// searchResultJSON is the JSON shape of one hit.
type searchResultJSON struct {
	ChunkID     string  `json:"chunk_id"`
	Source      string  `json:"source"`
	ChunkIndex  int     `json:"chunk_index"`
	TotalChunks int     `json:"total_chunks"`
	Score       float64 `json:"score"`
	Content     string  `json:"content"`
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	out := make([]searchResultJSON, 0, len(results))
	for i := range results {
		doc := results[i].Document
		out = append(out, searchResultJSON{
			ChunkID:     doc.ID,
			Source:      doc.Metadata.SourcePath,
			ChunkIndex:  doc.Metadata.ChunkIndex,
			TotalChunks: doc.Metadata.TotalChunks,
			Score:       results[i].Score,
			Content:     doc.Content,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println(titleStyle.Render("Results:"))
	cmd.Println()
	for i := range results {
		doc := results[i].Document
		cmd.Printf("  [%d] %s #%d/%d (%.2f)\n", i+1,
			doc.Metadata.SourcePath, doc.Metadata.ChunkIndex+1, doc.Metadata.TotalChunks, results[i].Score)
		cmd.Printf("      %s\n", preview(doc.Content, 200))
		cmd.Println()
	}
}

// preview flattens whitespace and truncates s to n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
