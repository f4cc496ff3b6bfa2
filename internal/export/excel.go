package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"roombook/internal/domain"
	"roombook/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ExcelExporter builds occupancy spreadsheets: one row per room, one
// column per date, confirmed bookings listed in each cell.
type ExcelExporter struct {
	repo   domain.Repository
	path   string
	logger *zerolog.Logger
}

func NewExcelExporter(repo domain.Repository, path string, logger *zerolog.Logger) *ExcelExporter {
	return &ExcelExporter{
		repo:   repo,
		path:   path,
		logger: logger,
	}
}

const sheetName = "Occupancy"

// ExportOccupancy writes an xlsx for the inclusive date range and returns
// the file path.
func (e *ExcelExporter) ExportOccupancy(ctx context.Context, startDate, endDate time.Time) (string, error) {
	if endDate.Before(startDate) {
		return "", fmt.Errorf("end date %s before start date %s",
			endDate.Format(models.DateLayout), startDate.Format(models.DateLayout))
	}
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	dailyBookings, err := e.repo.GetDailyBookings(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting bookings: %w", err)
	}
	rooms, err := e.repo.ListActiveRooms(ctx)
	if err != nil {
		return "", fmt.Errorf("error getting rooms: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Period: %s - %s",
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout)))

	dateCols := e.writeDateHeaders(f, startDate, endDate)
	e.writeRoomHeaders(f, rooms)
	e.writeBookingCells(f, rooms, dailyBookings, dateCols)

	_ = f.SetColWidth(sheetName, "A", "A", 25)
	lastCol, _ := excelize.ColumnNumberToName(len(dateCols) + 1)
	_ = f.SetColWidth(sheetName, "B", lastCol, 22)
	_ = f.MergeCell(sheetName, "A1", lastCol+"1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("occupancy_%s_to_%s.xlsx",
		startDate.Format(models.DateLayout), endDate.Format(models.DateLayout))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Occupancy export created")
	return filePath, nil
}

func (e *ExcelExporter) writeDateHeaders(f *excelize.File, startDate, endDate time.Time) map[string]int {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	col := 2
	dateCols := make(map[string]int)
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		cell, _ := excelize.CoordinatesToCellName(col, 2)
		_ = f.SetCellValue(sheetName, cell, d.Format("01-02"))
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
		dateCols[d.Format(models.DateLayout)] = col
		col++
	}
	return dateCols
}

func (e *ExcelExporter) writeRoomHeaders(f *excelize.File, rooms []*models.Room) {
	roomStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E2EFDA"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})

	for i, room := range rooms {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		_ = f.SetCellValue(sheetName, cell, fmt.Sprintf("%s (cap %d)", room.Name, room.Capacity))
		_ = f.SetCellStyle(sheetName, cell, cell, roomStyle)
	}
}

func (e *ExcelExporter) writeBookingCells(
	f *excelize.File,
	rooms []*models.Room,
	dailyBookings map[string][]*models.Booking,
	dateCols map[string]int,
) {
	freeStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})
	bookedStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})

	rowByRoom := make(map[string]int, len(rooms))
	for i, room := range rooms {
		rowByRoom[room.ID] = i + 3
	}

	for dateKey, bookings := range dailyBookings {
		col, ok := dateCols[dateKey]
		if !ok {
			continue
		}

		byRoom := make(map[string][]*models.Booking)
		for _, b := range bookings {
			byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
		}

		for roomID, roomBookings := range byRoom {
			row, ok := rowByRoom[roomID]
			if !ok {
				continue
			}
			sort.Slice(roomBookings, func(i, j int) bool {
				return roomBookings[i].StartTime < roomBookings[j].StartTime
			})

			var cellValue string
			for _, b := range roomBookings {
				cellValue += fmt.Sprintf("%s-%s %s\n", b.StartTime, b.EndTime, b.UserID)
			}

			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, cellValue)
			_ = f.SetCellStyle(sheetName, cell, cell, bookedStyle)
		}
	}

	// Empty cells get the plain wrapped style so long room names render.
	for _, room := range rooms {
		row := rowByRoom[room.ID]
		for dateKey, col := range dateCols {
			if hasBookingFor(dailyBookings[dateKey], room.ID) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellStyle(sheetName, cell, cell, freeStyle)
		}
	}
}

func hasBookingFor(bookings []*models.Booking, roomID string) bool {
	for _, b := range bookings {
		if b.RoomID == roomID {
			return true
		}
	}
	return false
}
