package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dollyto/multimodal-video-transcriber/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			}

			if overwrite {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return err
				}
				if err := os.Remove(expanded); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("remove existing config: %w", err)
				}
				target = expanded
			}

			if err := config.WriteSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set gemini.api_key (or export GEMINI_API_KEY) before transcribing.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			mode := "hosted API"
			if cfg.Gemini.UseVertex {
				mode = fmt.Sprintf("Vertex (%s/%s)", cfg.Gemini.Project, cfg.Gemini.Location)
			}
			fmt.Fprintf(out, "Mode: %s\n", mode)
			fmt.Fprintf(out, "Model: %s\n", cfg.Gemini.Model)
			fmt.Fprintf(out, "FPS: %.1f\n", cfg.Processing.FPS)
			fmt.Fprintf(out, "Timecode format: %s\n", cfg.Processing.TimecodeFormat)
			fmt.Fprintf(out, "Translation: %s", yesNo(cfg.Processing.Translation))
			if cfg.Processing.Translation {
				fmt.Fprintf(out, " (%s)", cfg.Processing.TargetLanguage)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Data dir: %s\n", cfg.Output.DataDir)
			fmt.Fprintf(out, "Export dir: %s\n", cfg.Output.ExportDir)
			fmt.Fprintf(out, "Logging: %s/%s\n", cfg.Logging.Format, cfg.Logging.Level)
			return nil
		},
	}
}
