package tournamentsheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// Sheet names of the mirror workbook.
const (
	SheetRegistrations = "Registros"
	SheetResults       = "Resultados"
	SheetLeaderboard   = "Leaderboard"
)

const timestampLayout = "02/01/2006 15:04:05"

var headers = map[string][]any{
	SheetRegistrations: {"Fecha/Hora", "Nombre del Equipo", "Tag", "Capitán", "Jugadores", "Tournament ID"},
	SheetResults:       {"Fecha/Hora", "Nombre del Equipo", "Posición", "Total Kills", "Multiplicador", "Puntuación Final", "Modo", "Tournament ID", "Enviado por", "User ID"},
	SheetLeaderboard:   {"Posición", "Nombre del Equipo", "Puntos Totales", "Total Kills", "Partidas Jugadas", "Mejor Posición", "Promedio Puntos"},
}

var sheetOrder = []string{SheetRegistrations, SheetResults, SheetLeaderboard}

// Workbook mirrors registrations, results and the leaderboard into an xlsx file
// that organizers can open directly. Every write reopens and saves the file.
type Workbook struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewWorkbook returns a mirror writing to path. The file is created on first write.
func NewWorkbook(path string, logger *slog.Logger) *Workbook {
	return &Workbook{path: path, logger: logger}
}

// Path is the workbook location on disk.
func (w *Workbook) Path() string { return w.path }

func (w *Workbook) AppendRegistration(ctx context.Context, record tournamentdomain.RegistrationRecord) error {
	captain := record.Captain
	if captain == "" {
		captain = "Pendiente"
	}
	return w.appendRow(ctx, SheetRegistrations, []any{
		record.RecordedAt.UTC().Format(timestampLayout),
		record.TeamName,
		record.Tag,
		captain,
		record.PlayersList(),
		record.TournamentID.String(),
	})
}

func (w *Workbook) AppendResult(ctx context.Context, result tournamentdomain.MatchResult) error {
	return w.appendRow(ctx, SheetResults, []any{
		result.SubmittedAt.UTC().Format(timestampLayout),
		result.TeamName,
		result.Position,
		result.Kills,
		strconv.FormatFloat(result.Multiplier, 'f', 1, 64),
		result.Score,
		string(result.ScoringMode),
		result.TournamentID.String(),
		result.SubmittedBy,
		result.SubmitterID,
	})
}

// WriteLeaderboard replaces the Leaderboard sheet with standings.
func (w *Workbook) WriteLeaderboard(ctx context.Context, standings []tournamentdomain.TeamStanding) error {
	return w.update(ctx, func(f *excelize.File) error {
		if err := f.DeleteSheet(SheetLeaderboard); err != nil {
			return fmt.Errorf("failed to drop leaderboard sheet: %w", err)
		}
		if err := ensureSheet(f, SheetLeaderboard); err != nil {
			return err
		}
		for i, st := range standings {
			row := []any{st.Rank, st.TeamName, st.TotalScore, st.TotalKills, st.GamesPlayed, st.BestPosition, st.AverageScore}
			if err := setRow(f, SheetLeaderboard, i+2, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// Clear replaces the workbook with an empty one holding only the headers.
func (w *Workbook) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove workbook: %w", err)
	}
	f, err := newWorkbookFile()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.InfoContext(ctx, "Workbook cleared", slog.String("path", w.path))
	return nil
}

// Rows returns the data rows of a sheet, without the header.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func (w *Workbook) appendRow(ctx context.Context, sheet string, row []any) error {
	return w.update(ctx, func(f *excelize.File) error {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		return setRow(f, sheet, len(rows)+1, row)
	})
}

func (w *Workbook) update(ctx context.Context, fn func(f *excelize.File) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	f, err := w.open()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := fn(f); err != nil {
		return err
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	w.logger.DebugContext(ctx, "Workbook updated",
		slog.String("path", w.path),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// open loads the workbook, creating it and any missing sheets.
func (w *Workbook) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return newWorkbookFile()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	for _, name := range sheetOrder {
		if err := ensureSheet(f, name); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func newWorkbookFile() (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	for _, name := range sheetOrder {
		if err := ensureSheet(f, name); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	return f, nil
}

func ensureSheet(f *excelize.File, name string) error {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return fmt.Errorf("failed to look up sheet %q: %w", name, err)
	}
	if idx >= 0 {
		return nil
	}
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}
	return setRow(f, name, 1, headers[name])
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %q: %w", row, sheet, err)
	}
	return nil
}
