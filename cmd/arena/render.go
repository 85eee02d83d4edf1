package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ahrav/go-arena/internal/arena"
)

// renderResult prints the tournament outcome: the question, the
// leaderboard, and a summary of skipped judges.
func renderResult(w io.Writer, result *arena.TournamentResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(w, "\nQuestion: %s\n\n", result.Question)

	board := result.Leaderboard
	if len(board.Entries) == 0 {
		fmt.Fprintln(w, "No leaderboard: no competitor received any votes.")
	} else {
		table := newTable(w, []string{"Rank", "Competitor", "Avg Rank", "Votes"})
		for i, entry := range board.Entries {
			_ = table.Append([]string{
				strconv.Itoa(i + 1),
				entry.Name,
				strconv.FormatFloat(entry.AverageRank, 'f', 2, 64),
				strconv.Itoa(entry.Votes),
			})
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "\nJudges counted: %d, skipped: %d\n", board.JudgesCounted, board.JudgesSkipped)
	for _, report := range result.Reports {
		if report.Failure != nil {
			fmt.Fprintf(w, "  skipped %s: %s\n", report.Judge, report.Failure.Reason)
		}
	}
	return nil
}

// newTable creates a table writer with the formatting used for all CLI
// output.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
		}),
	)
}
