package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsawler/inkpage"
	"github.com/tsawler/inkpage/layout"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <book.epub>",
	Short: "Parse an EPUB and show its chapters, warnings and TOC plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		book, err := inkpage.Open(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Title:    %s\n", book.Title())
		fmt.Fprintf(out, "Language: %s\n", book.Language())
		fmt.Fprintf(out, "Chapters: %d\n\n", len(book.Chapters()))

		for i, ch := range book.Chapters() {
			flag := " "
			if ch.HasImages {
				flag = "i"
			}
			fmt.Fprintf(out, "%3d %s %-40s %s\n", i, flag, ch.Title, ch.Source)
		}

		cfg := renderConfig()
		coord := layout.Coordinator{Config: cfg}
		fmt.Fprintf(out, "\nPage box: %dx%d, content height %d\n",
			cfg.Width, cfg.Height, cfg.ContentHeight())
		fmt.Fprintf(out, "TOC rows per page: %d\n", coord.ItemsPerPage())

		if len(book.Warnings()) > 0 {
			fmt.Fprintf(out, "\nWarnings:\n")
			for _, w := range book.Warnings() {
				fmt.Fprintf(out, "  %s\n", w)
			}
		}
		return nil
	},
}
