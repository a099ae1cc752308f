package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/inkpage/model"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "inkpage",
	Short: "EPUB to XTC raster-page converter tooling",
	Long: `Inkpage converts EPUB books into device-ready 1-bit raster pages packed
in the XTC container format.

The bundled commands cover the parts of the pipeline that need no external
layout engine:
  - inspect: parse an EPUB and show its chapters and warnings
  - info:    describe an XTC container
  - unpack:  extract XTC pages as PNG images`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./inkpage.yaml)",
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initConfig()
	}

	rootCmd.AddCommand(inspectCmd, infoCmd, unpackCmd)
}

// initConfig seeds viper with the render defaults and overlays the config
// file, when one exists.
func initConfig() error {
	def := model.DefaultConfig()
	viper.SetDefault("width", def.Width)
	viper.SetDefault("height", def.Height)
	viper.SetDefault("margin", def.Margin)
	viper.SetDefault("top_padding", def.TopPadding)
	viper.SetDefault("bottom_padding", def.BottomPadding)
	viper.SetDefault("font_size", def.FontSize)
	viper.SetDefault("font_weight", def.FontWeight)
	viper.SetDefault("line_height", def.LineHeight)
	viper.SetDefault("text_align", "justify")
	viper.SetDefault("font_path", def.FontPath)
	viper.SetDefault("ui_font_size", def.UIFontSize)
	viper.SetDefault("generate_toc", def.GenerateTOC)
	viper.SetDefault("landscape", false)

	viper.SetEnvPrefix("INKPAGE")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("inkpage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config file: %w", err)
		}
	}
	return nil
}

// renderConfig builds the render configuration from the resolved settings.
func renderConfig() model.RenderConfig {
	cfg := model.DefaultConfig()
	cfg.Width = viper.GetInt("width")
	cfg.Height = viper.GetInt("height")
	cfg.Margin = viper.GetInt("margin")
	cfg.TopPadding = viper.GetInt("top_padding")
	cfg.BottomPadding = viper.GetInt("bottom_padding")
	cfg.FontSize = viper.GetInt("font_size")
	cfg.FontWeight = viper.GetInt("font_weight")
	cfg.LineHeight = viper.GetFloat64("line_height")
	cfg.FontPath = viper.GetString("font_path")
	cfg.UIFontSize = viper.GetInt("ui_font_size")
	cfg.GenerateTOC = viper.GetBool("generate_toc")

	if align := viper.GetString("text_align"); align == "left" {
		cfg.TextAlign = "left"
	} else {
		cfg.TextAlign = "justify"
	}

	if viper.GetBool("landscape") {
		cfg = cfg.Landscape()
	}
	return cfg
}
