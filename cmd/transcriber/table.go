package main

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/dollyto/multimodal-video-transcriber/internal/transcript"
)

// rightAligned marks the listed column indexes for right alignment.
func rightAligned(indexes ...int) map[int]bool {
	aligns := make(map[int]bool, len(indexes))
	for _, index := range indexes {
		aligns[index] = true
	}
	return aligns
}

func renderTable(headers []string, rows [][]string, rightAligns map[int]bool) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	if stdoutIsTerminal() {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleDefault)
	}

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if rightAligns[i] {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderSegments renders the segment table with resolved speaker names. The
// delivery columns only appear when at least one segment carries them.
func renderSegments(tr *transcript.Transcription) string {
	segments := tr.Segments()
	withDelivery := false
	for _, segment := range segments {
		if segment.Emotion != "" || segment.Tone != "" || segment.EnergyLevel != "" || segment.SpeechRate != "" {
			withDelivery = true
			break
		}
	}

	headers := []string{"Start", "End", "Voice", "Speaker", "Text"}
	if withDelivery {
		headers = append(headers, "Emotion", "Tone", "Energy", "Rate")
	}
	rows := make([][]string, 0, len(segments))
	for _, segment := range segments {
		row := []string{
			segment.Start.String(),
			segment.End.String(),
			strconv.Itoa(segment.VoiceID),
			tr.SpeakerByVoiceID(segment.VoiceID).Name,
			segment.Text,
		}
		if withDelivery {
			row = append(row, orDash(segment.Emotion), orDash(segment.Tone), orDash(segment.EnergyLevel), orDash(segment.SpeechRate))
		}
		rows = append(rows, row)
	}
	return renderTable(headers, rows, rightAligned(2))
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
