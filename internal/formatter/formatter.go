// package formatter provides functions to export track release history and
// local publish history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/skyforgehq/playpub/internal/history"
	"github.com/skyforgehq/playpub/internal/publisher"
	"github.com/skyforgehq/playpub/internal/shared"
)

func joinVersionCodes(codes []int64) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return strings.Join(parts, " ")
}

// TrackToCSV converts a track's releases to CSV with columns: Name, Status, Fraction, VersionCodes, Priority
func TrackToCSV(track publisher.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Status", "Fraction", "VersionCodes", "Priority"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, release := range track.Releases {
		record := []string{
			release.Name,
			release.Status,
			strconv.FormatFloat(release.UserFraction, 'f', -1, 64),
			joinVersionCodes(release.VersionCodes),
			strconv.FormatInt(release.InAppUpdatePriority, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TrackToMarkdown converts a track's releases to Markdown
func TrackToMarkdown(track publisher.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Track: %s\n\n", track.Name))
	buf.WriteString(fmt.Sprintf("**Releases**: %d\n\n", len(track.Releases)))

	for _, release := range track.Releases {
		buf.WriteString(fmt.Sprintf("## Release %s\n\n", release.Name))
		buf.WriteString(fmt.Sprintf("- Status: %s\n", release.Status))
		buf.WriteString(fmt.Sprintf("- Rollout fraction: %g\n", release.UserFraction))
		buf.WriteString(fmt.Sprintf("- Version codes: %s\n", joinVersionCodes(release.VersionCodes)))
		buf.WriteString(fmt.Sprintf("- Update priority: %d\n", release.InAppUpdatePriority))
		for _, note := range release.ReleaseNotes {
			buf.WriteString(fmt.Sprintf("- Notes (%s): %s\n", note.Language, note.Text))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

// TrackToText converts a track's releases to plain text
func TrackToText(track publisher.Track) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Track: %s (%d releases)\n\n", track.Name, len(track.Releases)))
	for i, release := range track.Releases {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] fraction=%g codes=%s priority=%d\n",
			i+1, release.Name, release.Status, release.UserFraction,
			joinVersionCodes(release.VersionCodes), release.InAppUpdatePriority))
	}

	return buf.Bytes()
}

// HistoryToCSV converts publish history records to CSV
func HistoryToCSV(records []history.Record) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Package", "Track", "Release", "VersionCode", "EditID", "Size", "CreatedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		record := []string{
			rec.PackageName,
			rec.Track,
			rec.ReleaseName,
			strconv.FormatInt(rec.VersionCode, 10),
			rec.EditID,
			shared.FormatSize(rec.ArtifactBytes),
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}
