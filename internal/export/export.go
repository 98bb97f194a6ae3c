// Package export renders assembled transcriptions to files: a JSON document
// carrying the full run, a CSV of script segments with resolved speaker
// names, and a CSV of the translation table when one exists.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dollyto/multimodal-video-transcriber/internal/transcript"
)

// WriteJSON writes the transcription's document form, indented.
func WriteJSON(w io.Writer, tr *transcript.Transcription) error {
	if tr == nil {
		return errors.New("transcription is nil")
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(tr.Document()); err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	return nil
}

// WriteSegmentsCSV writes one row per script segment. Speaker names come from
// the speaker table; voices without a record show the not-found marker.
func WriteSegmentsCSV(w io.Writer, tr *transcript.Transcription) error {
	if tr == nil {
		return errors.New("transcription is nil")
	}
	writer := csv.NewWriter(w)
	header := []string{"start_time", "end_time", "voice_id", "speaker", "text", "emotion", "tone", "energy_level", "speech_rate"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, segment := range tr.Segments() {
		record := []string{
			segment.Start.String(),
			segment.End.String(),
			strconv.Itoa(segment.VoiceID),
			tr.SpeakerByVoiceID(segment.VoiceID).Name,
			segment.Text,
			segment.Emotion,
			segment.Tone,
			segment.EnergyLevel,
			segment.SpeechRate,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write segment: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTranslationCSV writes the translation table. It fails when the run has
// no translation rows.
func WriteTranslationCSV(w io.Writer, tr *transcript.Transcription) error {
	if tr == nil {
		return errors.New("transcription is nil")
	}
	rows := tr.TranslationRows()
	if len(rows) == 0 {
		return errors.New("transcription has no translation table")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"line_number", "speaker", "source_text", "target_text"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.LineNumber),
			row.Speaker,
			row.SourceText,
			row.TargetText,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteDir writes every export the run supports into dir, named after the run
// id, and returns the written paths.
func WriteDir(dir string, tr *transcript.Transcription) ([]string, error) {
	if tr == nil {
		return nil, errors.New("transcription is nil")
	}
	base := strings.TrimSpace(tr.Metadata().RunID)
	if base == "" {
		return nil, errors.New("transcription has no run id")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure export directory: %w", err)
	}

	var written []string
	write := func(name string, fn func(io.Writer, *transcript.Transcription) error) error {
		path := filepath.Join(dir, name)
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		if err := fn(file, tr); err != nil {
			_ = file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("close %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write(base+".json", WriteJSON); err != nil {
		return nil, err
	}
	if err := write(base+".csv", WriteSegmentsCSV); err != nil {
		return nil, err
	}
	if len(tr.TranslationRows()) > 0 {
		if err := write(base+"_translation.csv", WriteTranslationCSV); err != nil {
			return nil, err
		}
	}
	return written, nil
}
