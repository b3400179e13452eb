// package formatter renders run results, journal entries and board listings as text, JSON, YAML or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/desertthunder/tbx/internal/models"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/desertthunder/tbx/internal/tasks"
	"gopkg.in/yaml.v3"
)

// Format selects an output encoding.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
	YAML Format = "yaml"
	CSV  Format = "csv"
)

// ParseFormat validates s as a [Format]. An empty string selects [Text].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Text, nil
	case Text, JSON, YAML, CSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format must be text, json, yaml or csv, got %q", shared.ErrInvalidArgument, s)
	}
}

// ResultToText renders the run summary followed by one line per failed card.
func ResultToText(r *tasks.Result) []byte {
	var buf bytes.Buffer

	mode := "live"
	if r.DryRun {
		mode = "dry run"
	}

	fmt.Fprintf(&buf, "Operation: %s (%s)\n", r.Operation, mode)
	fmt.Fprintf(&buf, "Board: %s\n", r.BoardID)
	if r.TargetBoardID != "" {
		fmt.Fprintf(&buf, "Target board: %s\n", r.TargetBoardID)
	}
	fmt.Fprintf(&buf, "Processed: %d\n", r.Processed)
	fmt.Fprintf(&buf, "Success: %d\n", r.Success)
	fmt.Fprintf(&buf, "Errors: %d\n", r.Failed())
	if len(r.MissingLabels) > 0 {
		fmt.Fprintf(&buf, "Missing labels: %s\n", strings.Join(r.MissingLabels, ", "))
	}
	if len(r.SkippedLists) > 0 {
		fmt.Fprintf(&buf, "Skipped lists: %s\n", strings.Join(r.SkippedLists, ", "))
	}
	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		fmt.Fprintf(&buf, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	}

	for _, e := range r.Errors {
		fmt.Fprintf(&buf, "  ✗ %s (%s): %s\n", e.Name, e.CardID, e.Error)
	}

	return buf.Bytes()
}

// ResultToCSV renders the per-card errors of r with columns position, card_id, card_name, error.
func ResultToCSV(r *tasks.Result) ([]byte, error) {
	return runErrorsToCSV(r.RunErrors())
}

func runErrorsToCSV(errs []models.RunError) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"position", "card_id", "card_name", "error"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range errs {
		record := []string{strconv.Itoa(e.Position), e.CardID, e.CardName, e.Message}
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

// EncodeResult renders r in the given format.
func EncodeResult(r *tasks.Result, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return ResultToText(r), nil
	case JSON:
		return shared.MarshalJSON(r, true)
	case YAML:
		return yaml.Marshal(r)
	case CSV:
		return ResultToCSV(r)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteResult writes r to w in the given format.
func WriteResult(w io.Writer, r *tasks.Result, format Format) error {
	data, err := EncodeResult(r, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// WriteResultFile writes r to path in the given format.
func WriteResultFile(path string, r *tasks.Result, format Format) error {
	data, err := EncodeResult(r, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return nil
}

// RunView is the exported shape of a journal entry for JSON and YAML output.
type RunView struct {
	ID            string            `json:"id" yaml:"id"`
	Number        int               `json:"number" yaml:"number"`
	Operation     string            `json:"operation" yaml:"operation"`
	BoardID       string            `json:"boardId" yaml:"board_id"`
	TargetBoardID string            `json:"targetBoardId,omitempty" yaml:"target_board_id,omitempty"`
	DryRun        bool              `json:"dryRun" yaml:"dry_run"`
	Processed     int               `json:"processed" yaml:"processed"`
	Success       int               `json:"success" yaml:"success"`
	Failed        int               `json:"failed" yaml:"failed"`
	MissingLabels []string          `json:"missingLabels,omitempty" yaml:"missing_labels,omitempty"`
	SkippedLists  []string          `json:"skippedLists,omitempty" yaml:"skipped_lists,omitempty"`
	Errors        []models.RunError `json:"errors,omitempty" yaml:"errors,omitempty"`
	StartedAt     time.Time         `json:"startedAt" yaml:"started_at"`
	FinishedAt    time.Time         `json:"finishedAt" yaml:"finished_at"`
}

// NewRunView copies run into a [RunView].
func NewRunView(run *models.Run) RunView {
	return RunView{
		ID:            run.ID(),
		Number:        run.Sequence(),
		Operation:     run.Operation(),
		BoardID:       run.BoardID(),
		TargetBoardID: run.TargetBoardID(),
		DryRun:        run.DryRun(),
		Processed:     run.Processed(),
		Success:       run.Success(),
		Failed:        run.Failed(),
		MissingLabels: run.MissingLabels(),
		SkippedLists:  run.SkippedLists(),
		Errors:        run.Errors(),
		StartedAt:     run.StartedAt(),
		FinishedAt:    run.FinishedAt(),
	}
}

// RunsToText renders runs as an aligned table, one row per run.
func RunsToText(runs []*models.Run) []byte {
	var buf bytes.Buffer
	if len(runs) == 0 {
		buf.WriteString("No runs recorded.\n")
		return buf.Bytes()
	}

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tOPERATION\tBOARD\tMODE\tPROCESSED\tSUCCESS\tFAILED\tSTARTED")
	for _, run := range runs {
		mode := "live"
		if run.DryRun() {
			mode = "dry-run"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.Sequence(), run.Operation(), run.BoardID(), mode,
			run.Processed(), run.Success(), run.Failed(),
			run.StartedAt().Local().Format(time.DateTime))
	}
	tw.Flush()

	return buf.Bytes()
}

// RunToText renders one run with its per-card errors.
func RunToText(run *models.Run) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Run #%d (%s)\n", run.Sequence(), run.ID())
	buf.Write(ResultToText(&tasks.Result{
		Operation:     run.Operation(),
		BoardID:       run.BoardID(),
		TargetBoardID: run.TargetBoardID(),
		DryRun:        run.DryRun(),
		Processed:     run.Processed(),
		Success:       run.Success(),
		Errors:        runErrorsToCardErrors(run.Errors()),
		MissingLabels: run.MissingLabels(),
		SkippedLists:  run.SkippedLists(),
		StartedAt:     run.StartedAt(),
		FinishedAt:    run.FinishedAt(),
	}))

	return buf.Bytes()
}

func runErrorsToCardErrors(errs []models.RunError) []tasks.CardError {
	out := make([]tasks.CardError, 0, len(errs))
	for _, e := range errs {
		out = append(out, tasks.CardError{CardID: e.CardID, Name: e.CardName, Error: e.Message})
	}
	return out
}

// EncodeRuns renders runs in the given format. CSV has one row per run.
func EncodeRuns(runs []*models.Run, format Format) ([]byte, error) {
	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		v := NewRunView(run)
		v.Errors = nil
		views = append(views, v)
	}

	switch format {
	case Text, "":
		return RunsToText(runs), nil
	case JSON:
		return shared.MarshalJSON(views, true)
	case YAML:
		return yaml.Marshal(views)
	case CSV:
		return runsToCSV(views)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// EncodeRun renders a single run in the given format. CSV has one row per card error.
func EncodeRun(run *models.Run, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return RunToText(run), nil
	case JSON:
		return shared.MarshalJSON(NewRunView(run), true)
	case YAML:
		return yaml.Marshal(NewRunView(run))
	case CSV:
		return runErrorsToCSV(run.Errors())
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

func runsToCSV(views []RunView) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"number", "id", "operation", "board_id", "target_board_id", "dry_run", "processed", "success", "failed", "started_at"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, v := range views {
		record := []string{
			strconv.Itoa(v.Number),
			v.ID,
			v.Operation,
			v.BoardID,
			v.TargetBoardID,
			strconv.FormatBool(v.DryRun),
			strconv.Itoa(v.Processed),
			strconv.Itoa(v.Success),
			strconv.Itoa(v.Failed),
			v.StartedAt.UTC().Format(time.RFC3339),
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

// BoardToText lists the open lists of board with their card counts, then its labels.
//
// Label names are printed quoted so that case and whitespace are visible.
func BoardToText(board *models.Board) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Board: %s (%s)\n", board.Name, board.ID)
	fmt.Fprintf(&buf, "Cards: %d\n\n", len(board.Cards))

	counts := make(map[string]int, len(board.Lists))
	for _, c := range board.Cards {
		counts[c.ListID]++
	}

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LIST\tID\tCARDS")
	for _, l := range board.Lists {
		fmt.Fprintf(tw, "%q\t%s\t%d\n", l.Name, l.ID, counts[l.ID])
	}
	tw.Flush()

	buf.WriteString("\n")

	tw = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tCOLOR\tID")
	for _, l := range board.Labels {
		fmt.Fprintf(tw, "%q\t%s\t%s\n", l.Name, l.Color, l.ID)
	}
	tw.Flush()

	return buf.Bytes()
}

// EncodeBoard renders board in the given format. CSV has one row per card.
func EncodeBoard(board *models.Board, format Format) ([]byte, error) {
	switch format {
	case Text, "":
		return BoardToText(board), nil
	case JSON:
		return shared.MarshalJSON(board, true)
	case YAML:
		return yaml.Marshal(board)
	case CSV:
		return boardToCSV(board)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

func boardToCSV(board *models.Board) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"card_id", "name", "list", "labels"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, c := range board.Cards {
		listName := c.ListID
		if l, ok := board.List(c.ListID); ok {
			listName = l.Name
		}
		record := []string{c.ID, c.Name, listName, strings.Join(c.LabelNames(), ";")}
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
