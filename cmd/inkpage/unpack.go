package main

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tsawler/inkpage/xtc"
)

var unpackDir string

var unpackCmd = &cobra.Command{
	Use:   "unpack <book.xtc>",
	Short: "Extract every page of an XTC container as a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := xtc.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := os.MkdirAll(unpackDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		for i := 0; i < f.PageCount(); i++ {
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			page, err := f.Page(i)
			if err != nil {
				return err
			}
			img, err := page.Image()
			if err != nil {
				return err
			}

			name := filepath.Join(unpackDir, fmt.Sprintf("page-%04d.png", i))
			out, err := os.Create(name)
			if err != nil {
				return fmt.Errorf("creating %s: %w", name, err)
			}
			if err := png.Encode(out, img); err != nil {
				out.Close()
				return fmt.Errorf("encoding %s: %w", name, err)
			}
			if err := out.Close(); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d pages to %s\n", f.PageCount(), unpackDir)
		return nil
	},
}

func init() {
	unpackCmd.Flags().StringVarP(&unpackDir, "dir", "d", "pages", "output directory")
}
