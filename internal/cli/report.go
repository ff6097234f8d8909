package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/alnah/mdpress"
	"github.com/alnah/mdpress/internal/config"
	"github.com/alnah/mdpress/internal/fileutil"
	"github.com/alnah/mdpress/internal/hints"
)

// jsonSummary is the --json-output document. Output and Error are null
// when absent.
type jsonSummary struct {
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Results []jsonResult `json:"results"`
}

type jsonResult struct {
	Input   string  `json:"input"`
	Output  *string `json:"output"`
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

type jsonError struct {
	Error string `json:"error"`
}

// writeJSON prints the summary as an indented JSON document.
func writeJSON(w io.Writer, s *mdpress.Summary) error {
	doc := jsonSummary{
		Total:   s.Total,
		Success: s.Succeeded,
		Failed:  s.Failed,
		Results: make([]jsonResult, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		jr := jsonResult{Input: r.InputPath, Success: r.Success}
		if r.OutputPath != "" {
			out := r.OutputPath
			jr.Output = &out
		}
		if msg := r.ErrorMessage(); msg != "" {
			jr.Error = &msg
		}
		doc.Results = append(doc.Results, jr)
	}
	return encodeJSON(w, doc)
}

// writeJSONError prints a precondition failure as {"error": "..."}.
func writeJSONError(w io.Writer, err error) error {
	return encodeJSON(w, jsonError{Error: err.Error()})
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeText prints a one-line count followed by a per-file table.
func writeText(w io.Writer, s *mdpress.Summary) {
	fmt.Fprintf(w, "Converted %d/%d files\n", s.Succeeded, s.Total)
	if s.Total == 0 {
		return
	}

	table := tablewriter.NewWriter(w)
	table.Header("Status", "Input", "Output / Error")
	for _, r := range s.Results {
		status, detail := "ok", r.OutputPath
		if !r.Success {
			status, detail = "FAILED", r.ErrorMessage()
		}
		table.Append([]string{status, r.InputPath, detail})
	}
	table.Render()
}

// describe formats err for the terminal with any matching hints.
// available lists the known themes for theme errors.
func describe(err error, settings *config.Settings, available []string) string {
	var b strings.Builder
	b.WriteString(err.Error())

	switch {
	case errors.Is(err, mdpress.ErrServerStart):
		command := config.DefaultRendererCommand
		if settings != nil {
			command = settings.Renderer.Command
		}
		b.WriteString(hints.ForServerStart(command))
	case errors.Is(err, config.ErrConfigNotFound):
		b.WriteString(hints.ForConfigNotFound())
	case errors.Is(err, mdpress.ErrThemeNotFound):
		b.WriteString(hints.ForThemeNotFound(available))
	case errors.Is(err, fileutil.ErrNoMatch), errors.Is(err, mdpress.ErrNoFiles):
		b.WriteString(hints.ForNoFiles())
	case errors.Is(err, mdpress.ErrTimeout):
		b.WriteString(hints.ForTimeout())
	}
	return b.String()
}

// hasTimeouts reports whether any file failed on a renderer timeout.
func hasTimeouts(s *mdpress.Summary) bool {
	for _, r := range s.Results {
		if errors.Is(r.Err, mdpress.ErrTimeout) {
			return true
		}
	}
	return false
}
