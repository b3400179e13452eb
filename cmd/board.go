package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tbx/internal/formatter"
	"github.com/desertthunder/tbx/internal/services"
	"github.com/desertthunder/tbx/internal/shared"
	"github.com/urfave/cli/v3"
)

// BoardShow prints the lists, labels and card counts of a board.
func (r *Runner) BoardShow(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	boardID, err := r.boardID(cmd)
	if err != nil {
		return err
	}

	svc, err := r.trello()
	if err != nil {
		return err
	}

	r.logger.Debug("fetching board", "board", boardID, "service", svc.Name())
	board, err := svc.FetchBoard(ctx, boardID)
	if err != nil {
		return err
	}

	data, err := formatter.EncodeBoard(board, format)
	if err != nil {
		return err
	}
	return r.writeOutput(cmd, data)
}

// BoardRaw prints the untouched board response.
func (r *Runner) BoardRaw(ctx context.Context, cmd *cli.Command) error {
	boardID, err := r.boardID(cmd)
	if err != nil {
		return err
	}

	resp, err := r.rawAPI().Get(ctx, services.BoardPath(boardID))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	r.logger.Debug("board response", "status", resp.StatusCode, "bytes", len(resp.Body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, resp.Body)
	}

	if resp.IsJSON {
		return r.writeJSON(resp.JSONData, cmd.Bool("pretty"))
	}
	return r.writePlain("%s\n", resp.Body)
}
