package cfg

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"grabarr/internal/domain/consts"
	"grabarr/internal/models"
)

// renderPlatforms prints the supported platform list.
func renderPlatforms(w io.Writer, platforms []string, asJSON bool) error {
	if asJSON {
		return writeIndentedJSON(w, map[string][]string{"supported_platforms": platforms})
	}
	fmt.Fprintln(w, "Supported platforms:")
	for _, p := range platforms {
		fmt.Fprintf(w, "  - %s\n", p)
	}
	return nil
}

// renderResult prints a download outcome.
func renderResult(w io.Writer, res *models.DownloadResult, asJSON bool) error {
	if asJSON {
		return writeIndentedJSON(w, res)
	}

	if res.Status != consts.StatusSuccess {
		fmt.Fprintf(w, "✗ Error: %s\n", res.Message)
		return nil
	}

	fmt.Fprintf(w, "✓ %s\n", res.Message)
	fmt.Fprintf(w, "Platform: %s\n", res.Platform)
	fmt.Fprintf(w, "Type: %s\n", res.DownloadType)
	fmt.Fprintf(w, "File: %s\n", res.FilePath)
	if res.FileSize != "" {
		fmt.Fprintf(w, "Size: %s\n", res.FileSize)
	}
	if res.Duration != "" {
		fmt.Fprintf(w, "Duration: %s\n", res.Duration)
	}
	return nil
}

// renderInfo prints extracted metadata.
func renderInfo(w io.Writer, info *models.VideoInfo, asJSON bool) error {
	if asJSON {
		return writeIndentedJSON(w, info)
	}

	if info.Status != consts.StatusSuccess {
		fmt.Fprintf(w, "Error: %s\n", info.Message)
		return nil
	}

	fmt.Fprintf(w, "Title: %s\n", orUnknown(info.Title))
	fmt.Fprintf(w, "Platform: %s\n", orUnknown(info.Platform))
	fmt.Fprintf(w, "Duration: %s\n", orUnknown(info.Duration))
	fmt.Fprintf(w, "Uploader: %s\n", orUnknown(info.Uploader))
	if info.ViewCount > 0 {
		fmt.Fprintf(w, "Views: %s\n", groupDigits(info.ViewCount))
	}
	if info.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", info.Description)
	}
	return nil
}

// renderHistory prints recorded downloads, newest first.
func renderHistory(w io.Writer, recs []models.DownloadRecord, asJSON bool) error {
	if asJSON {
		if recs == nil {
			recs = []models.DownloadRecord{}
		}
		return writeIndentedJSON(w, map[string]any{"downloads": recs, "count": len(recs)})
	}

	if len(recs) == 0 {
		fmt.Fprintln(w, "No downloads recorded.")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintf(w, "%s  %-12s %-5s %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Platform, rec.DownloadType, rec.Title)
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

func writeIndentedJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
