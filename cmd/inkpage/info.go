package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsawler/inkpage/xtc"
)

var infoPages bool

var infoCmd = &cobra.Command{
	Use:   "info <book.xtc>",
	Short: "Describe an XTC container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := xtc.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Version: 0x%04x\n", f.Version)
		fmt.Fprintf(out, "Pages:   %d\n", f.PageCount())

		if !infoPages {
			return nil
		}
		for i := 0; i < f.PageCount(); i++ {
			w, h, err := f.Dimensions(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%5d  %dx%d  (%d bytes/row)\n", i, w, h, xtc.RowBytes(w))
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().BoolVar(&infoPages, "pages", false, "list every page's dimensions")
}
