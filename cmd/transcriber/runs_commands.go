package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dollyto/multimodal-video-transcriber/internal/export"
	"github.com/dollyto/multimodal-video-transcriber/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run archive",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsExportCommand(ctx))
	runsCmd.AddCommand(newRunsRemoveCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(s *store.Store) error {
				runs, err := s.List(cmd.Context())
				if err != nil {
					return err
				}

				if jsonFlag {
					type runView struct {
						ID             string    `json:"id"`
						CreatedAt      time.Time `json:"created_at"`
						VideoRef       string    `json:"video_ref"`
						Model          string    `json:"model"`
						Segments       int       `json:"segments"`
						Speakers       int       `json:"speakers"`
						TargetLanguage string    `json:"target_language,omitempty"`
					}
					views := make([]runView, 0, len(runs))
					for _, run := range runs {
						views = append(views, runView{
							ID:             run.ID,
							CreatedAt:      run.CreatedAt,
							VideoRef:       run.VideoRef,
							Model:          run.Model,
							Segments:       run.SegmentCount,
							Speakers:       run.SpeakerCount,
							TargetLanguage: run.TargetLanguage,
						})
					}
					return writeJSON(cmd, views)
				}

				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No archived runs")
					return nil
				}

				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.ID,
						run.CreatedAt.Local().Format("2006-01-02 15:04"),
						run.VideoRef,
						run.Model,
						strconv.Itoa(run.SegmentCount),
						yesNo(run.Translated()),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Created", "Video", "Model", "Segments", "Translated"},
					rows,
					rightAligned(4),
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print runs as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(s *store.Store) error {
				run, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}

				if jsonFlag {
					return writeJSON(cmd, run.Transcription.Document())
				}

				out := cmd.OutOrStdout()
				meta := run.Transcription.Metadata()
				fmt.Fprintf(out, "Run: %s\n", run.ID)
				fmt.Fprintf(out, "Created: %s\n", run.CreatedAt.Local().Format(time.RFC1123))
				fmt.Fprintf(out, "Video: %s\n", meta.VideoRef)
				fmt.Fprintf(out, "Model: %s\n", meta.Model)
				fmt.Fprintf(out, "Duration: %s\n", run.Transcription.Duration())
				if meta.LanguageDetected != "" {
					fmt.Fprintf(out, "Language: %s\n", meta.LanguageDetected)
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderSegments(run.Transcription))

				if rows := run.Transcription.TranslationRows(); len(rows) > 0 {
					tableRows := make([][]string, 0, len(rows))
					for _, row := range rows {
						tableRows = append(tableRows, []string{
							strconv.Itoa(row.LineNumber), row.Speaker, row.TargetText,
						})
					}
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable([]string{"Line", "Speaker", "Translation"}, tableRows, rightAligned(0)))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the transcript document as JSON")
	return cmd
}

func newRunsExportCommand(ctx *commandContext) *cobra.Command {
	var dirFlag string

	cmd := &cobra.Command{
		Use:   "export RUN_ID",
		Short: "Write JSON and CSV exports for an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := dirFlag
			if dir == "" {
				dir = cfg.Output.ExportDir
			}

			return ctx.withStore(func(s *store.Store) error {
				run, err := s.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", args[0])
				}
				written, err := export.WriteDir(dir, run.Transcription)
				if err != nil {
					return err
				}
				for _, path := range written {
					fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", path)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dirFlag, "dir", "d", "", "Export directory (defaults to output.export_dir)")
	return cmd
}

func newRunsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove RUN_ID",
		Short: "Delete an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(s *store.Store) error {
				removed, err := s.Remove(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("run %s not found", args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed run %s\n", args[0])
				return nil
			})
		},
	}
}
