// package formatter renders track listings as plain text, CSV, Markdown or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/likeswap/internal/models"
	"github.com/desertthunder/likeswap/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	Text     Format = "text"
	JSON     Format = "json"
	CSV      Format = "csv"
	Markdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{Text, JSON, CSV, Markdown}

// ParseFormat accepts a format name, with "md" as an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, JSON, CSV, Markdown:
		return f, nil
	case "md":
		return Markdown, nil
	case "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: format %q (want text, json, csv or markdown)", shared.ErrInvalidFlag, s)
	}
}

// Listing is a titled list of tracks.
type Listing struct {
	Title   string               `json:"title"`
	Records []models.TrackRecord `json:"items"`
	// Limit caps the rows shown in text and markdown output; zero shows all.
	Limit int `json:"-"`
}

func (l Listing) shown() []models.TrackRecord {
	if l.Limit > 0 && len(l.Records) > l.Limit {
		return l.Records[:l.Limit]
	}
	return l.Records
}

// ToText renders the listing as an indented numbered list, with a trailer for rows past the limit.
func ToText(l Listing) []byte {
	var buf bytes.Buffer

	if l.Title != "" {
		fmt.Fprintf(&buf, "%s\n", l.Title)
	}
	for _, r := range l.shown() {
		fmt.Fprintf(&buf, "  %d. %s by %s\n", r.Index, r.Name, r.Artists)
	}
	if hidden := len(l.Records) - len(l.shown()); hidden > 0 {
		fmt.Fprintf(&buf, "  ... and %d more\n", hidden)
	}

	return buf.Bytes()
}

// ToCSV renders every record with columns Index, ID, Name, Artists, Popularity, AddedAt.
func ToCSV(l Listing) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Index", "ID", "Name", "Artists", "Popularity", "AddedAt"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range l.Records {
		addedAt := ""
		if !r.AddedAt.IsZero() {
			addedAt = r.AddedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			strconv.Itoa(r.Index),
			r.ID,
			r.Name,
			r.Artists,
			strconv.Itoa(r.Popularity),
			addedAt,
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

// ToMarkdown renders the listing as a heading and a numbered list linking each track.
func ToMarkdown(l Listing) []byte {
	var buf bytes.Buffer

	title := l.Title
	if title == "" {
		title = "Tracks"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(l.Records))

	for _, r := range l.shown() {
		fmt.Fprintf(&buf, "%d. [%s](https://open.spotify.com/track/%s) - %s\n", r.Index, escapeMarkdown(r.Name), r.ID, escapeMarkdown(r.Artists))
	}
	if hidden := len(l.Records) - len(l.shown()); hidden > 0 {
		fmt.Fprintf(&buf, "\n_... and %d more_\n", hidden)
	}

	return buf.Bytes()
}

var markdownEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// ToJSON marshals v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Render encodes the listing in format. JSON always contains every record.
func Render(l Listing, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return ToText(l), nil
	case CSV:
		return ToCSV(l)
	case Markdown:
		return ToMarkdown(l), nil
	case JSON:
		return ToJSON(l, true)
	default:
		return nil, fmt.Errorf("%w: format %q", shared.ErrInvalidFlag, format)
	}
}

// Write renders the listing to w.
func Write(w io.Writer, l Listing, format Format) error {
	data, err := Render(l, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
