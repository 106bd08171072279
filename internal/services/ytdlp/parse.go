package ytdlp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type searchEntry struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	WebpageURL     string  `json:"webpage_url"`
	Duration       float64 `json:"duration"`
	DurationString string  `json:"duration_string"`
	Uploader       string  `json:"uploader"`
	Channel        string  `json:"channel"`
}

func parseSearchEntry(line string) (Resolution, error) {
	var entry searchEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return Resolution{}, fmt.Errorf("decode search entry: %w", err)
	}
	if entry.ID == "" {
		return Resolution{}, fmt.Errorf("search entry missing video id")
	}

	resultURL := entry.URL
	if resultURL == "" {
		resultURL = entry.WebpageURL
	}
	if !strings.HasPrefix(resultURL, "http") {
		resultURL = "https://www.youtube.com/watch?v=" + entry.ID
	}

	duration := entry.DurationString
	if duration == "" && entry.Duration > 0 {
		duration = formatDuration(entry.Duration)
	}

	uploader := entry.Uploader
	if uploader == "" {
		uploader = entry.Channel
	}

	return Resolution{
		URL:      resultURL,
		Title:    entry.Title,
		Duration: duration,
		Uploader: uploader,
		VideoID:  entry.ID,
	}, nil
}

func formatDuration(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// parseProgress recognizes "[download]  42.7% of 3.52MiB at 1.2MiB/s" lines.
func parseProgress(line string) (ProgressUpdate, bool) {
	if !strings.HasPrefix(line, "[download]") {
		return ProgressUpdate{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "[download]"))
	fields := strings.Fields(rest)
	if len(fields) == 0 || !strings.HasSuffix(fields[0], "%") {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "%"), 64)
	if err != nil {
		return ProgressUpdate{}, false
	}
	return ProgressUpdate{Percent: percent, Message: rest}, true
}

// parseDestination recognizes the stage lines that name the output file.
func parseDestination(line string) (string, bool) {
	for _, prefix := range []string{"[download] Destination: ", "[ExtractAudio] Destination: ", "[ffmpeg] Destination: "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	const mergerPrefix = `[Merger] Merging formats into "`
	if strings.HasPrefix(line, mergerPrefix) {
		return strings.TrimSuffix(strings.TrimPrefix(line, mergerPrefix), `"`), true
	}
	return "", false
}

// VideoIDFromURL extracts the video id from the common platform URL shapes.
func VideoIDFromURL(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	if id := parsed.Query().Get("v"); id != "" {
		return id
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]
	switch {
	case parsed.Host == "youtu.be" && last != "":
		return last
	case len(segments) >= 2 && (segments[len(segments)-2] == "shorts" || segments[len(segments)-2] == "embed"):
		return last
	}
	return ""
}
