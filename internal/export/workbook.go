// Package export writes a forecast series as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"

	"forecast-mailer/internal/chart"
	"forecast-mailer/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Forecast"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	Filename    = "weather_forecast.xlsx"

	timeLayout = "2006-01-02 15:04"
)

var header = []interface{}{"Date and Time", "Temperature (°C)", "Humidity (%)", "Wind Speed (m/s)"}

// WriteWorkbook lays the series out as a table with one row per point and
// adds a native line chart next to it. Timestamps are written in the
// series' timezone.
func WriteWorkbook(series *types.ForecastSeries) (*bytes.Buffer, error) {
	if series.IsEmpty() {
		return nil, chart.ErrEmptySeries
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	loc := series.Location()
	for i, p := range series.Points {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			p.Timestamp.In(loc).Format(timeLayout),
			p.TemperatureCelsius,
			p.HumidityPercent,
			p.WindSpeedMps,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", "D", 16); err != nil {
		return nil, err
	}

	if err := addChart(f, series.Len()+1); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf, nil
}

func addChart(f *excelize.File, lastRow int) error {
	categories := fmt.Sprintf("%s!$A$2:$A$%d", SheetName, lastRow)

	var series []excelize.ChartSeries
	for _, col := range []string{"B", "C", "D"} {
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", SheetName, col),
			Categories: categories,
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SheetName, col, col, lastRow),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 5},
		})
	}

	err := f.AddChart(SheetName, "F2", &excelize.Chart{
		Type:   excelize.Line,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "5-Day Weather Forecast"}},
		Legend: excelize.ChartLegend{Position: "top"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Date and Time"}}},
		YAxis: excelize.ChartAxis{
			Title:          []excelize.RichTextRun{{Text: "Value"}},
			MajorGridLines: true,
		},
		Dimension: excelize.ChartDimension{Width: 960, Height: 540},
	})
	if err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}
	return nil
}
