package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dollyto/multimodal-video-transcriber/internal/export"
	"github.com/dollyto/multimodal-video-transcriber/internal/logging"
	"github.com/dollyto/multimodal-video-transcriber/internal/pipeline"
	"github.com/dollyto/multimodal-video-transcriber/internal/prompt"
	"github.com/dollyto/multimodal-video-transcriber/internal/store"
	"github.com/dollyto/multimodal-video-transcriber/internal/timecode"
	"github.com/dollyto/multimodal-video-transcriber/internal/videoref"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	var (
		startFlag      string
		endFlag        string
		fpsFlag        float64
		modelFlag      string
		translateFlag  bool
		targetLangFlag string
		promptFlag     string
		formatFlag     string
		noSaveFlag     bool
		exportFlag     bool
		jsonFlag       bool
		quietFlag      bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe VIDEO",
		Short: "Transcribe a video through the model",
		Long: `Transcribe a video through the model.

VIDEO is a YouTube URL, a bare YouTube video id, a gs:// object (Vertex mode
only), or a direct https:// URL (Vertex mode only).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			ref, err := videoref.Parse(args[0])
			if err != nil {
				return err
			}

			opts := prompt.Options{
				FPS:                cfg.Processing.FPS,
				TimecodeStyle:      cfg.TimecodeStyle(),
				IncludeTranslation: cfg.Processing.Translation,
				TargetLanguage:     cfg.Processing.TargetLanguage,
				CustomPrompt:       promptFlag,
			}
			if cmd.Flags().Changed("fps") {
				opts.FPS = fpsFlag
			}
			if formatFlag != "" {
				style, err := timecode.ParseStyle(formatFlag)
				if err != nil {
					return err
				}
				opts.TimecodeStyle = style
			}
			if translateFlag {
				opts.IncludeTranslation = true
			}
			if targetLangFlag != "" {
				opts.TargetLanguage = targetLangFlag
			}
			if startFlag != "" {
				start, err := timecode.Parse(startFlag)
				if err != nil {
					return fmt.Errorf("parse --start: %w", err)
				}
				opts.SegmentStart = start.Duration()
			}
			if endFlag != "" {
				end, err := timecode.Parse(endFlag)
				if err != nil {
					return fmt.Errorf("parse --end: %w", err)
				}
				opts.SegmentEnd = end.Duration()
			}

			model := strings.TrimSpace(modelFlag)
			if model == "" {
				model = cfg.Gemini.Model
			}

			logger := logging.NewNop()
			if !quietFlag && !jsonFlag {
				logger, err = logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}
			}

			client, err := ctx.modelClient()
			if err != nil {
				return err
			}

			started := time.Now()
			result, err := pipeline.New(client, logger).Run(cmd.Context(), pipeline.Request{
				Video:   ref,
				Vertex:  cfg.Gemini.UseVertex,
				Model:   model,
				Options: opts,
			})
			if err != nil {
				return err
			}
			tr := result.Transcription

			if !noSaveFlag {
				if err := ctx.withStore(func(s *store.Store) error {
					_, err := s.Save(cmd.Context(), tr, result.RawReply)
					return err
				}); err != nil {
					return fmt.Errorf("archive run: %w", err)
				}
			}

			var exported []string
			if exportFlag {
				exported, err = export.WriteDir(cfg.Output.ExportDir, tr)
				if err != nil {
					return fmt.Errorf("export run: %w", err)
				}
			}

			if jsonFlag {
				return writeJSON(cmd, tr.Document())
			}

			out := cmd.OutOrStdout()
			meta := tr.Metadata()
			fmt.Fprintf(out, "Run %s finished in %s\n", meta.RunID, time.Since(started).Round(time.Second))
			fmt.Fprintf(out, "Video: %s\n", meta.VideoRef)
			fmt.Fprintf(out, "Model: %s\n", meta.Model)
			fmt.Fprintf(out, "Segments: %d  Speakers: %d  Translated: %s\n",
				tr.SegmentCount(), tr.SpeakerCount(), yesNo(len(tr.TranslationRows()) > 0))
			if !quietFlag {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderSegments(tr))
			}
			for _, path := range exported {
				fmt.Fprintf(out, "Exported %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&startFlag, "start", "", "Transcribe from this timecode (MM:SS or H:MM:SS)")
	cmd.Flags().StringVar(&endFlag, "end", "", "Transcribe up to this timecode (MM:SS or H:MM:SS)")
	cmd.Flags().Float64Var(&fpsFlag, "fps", 0, "Frame sampling rate")
	cmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Model override")
	cmd.Flags().BoolVar(&translateFlag, "translate", false, "Request a translation table")
	cmd.Flags().StringVar(&targetLangFlag, "target-lang", "", "Translation target language (BCP-47 tag)")
	cmd.Flags().StringVar(&promptFlag, "prompt", "", "Custom task instructions")
	cmd.Flags().StringVar(&formatFlag, "timecode-format", "", "Timecode style for segments (MM:SS or H:MM:SS)")
	cmd.Flags().BoolVar(&noSaveFlag, "no-save", false, "Skip archiving the run")
	cmd.Flags().BoolVar(&exportFlag, "export", false, "Write JSON and CSV exports")
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the transcript document as JSON")
	cmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Summary only, no segment table or progress logs")

	return cmd
}
