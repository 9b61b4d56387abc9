package main

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"forecast-mailer/internal/pipeline"
	"forecast-mailer/internal/types"

	"github.com/gin-gonic/gin"
)

//go:embed templates/form.html
var formTemplate string

// FormInput defines the fields posted by the forecast form
type FormInput struct {
	Latitude  *float64 `form:"latitude" binding:"required"`
	Longitude *float64 `form:"longitude" binding:"required"`
	Recipient string   `form:"recipient" binding:"required,email"`
}

type formRow struct {
	Time        string
	Temperature string
	Humidity    string
	WindSpeed   string
}

type formView struct {
	Latitude  string
	Longitude string
	Recipient string
	Place     string
	Rows      []formRow
	ChartURI  template.URL
	Notice    string
	Succeeded bool
}

// formViewFromRequest echoes submitted values back into the form
func formViewFromRequest(c *gin.Context) formView {
	return formView{
		Latitude:  c.DefaultPostForm("latitude", formatCoordinate(defaultLatitude)),
		Longitude: c.DefaultPostForm("longitude", formatCoordinate(defaultLongitude)),
		Recipient: c.PostForm("recipient"),
	}
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func (app *App) handleFormPage(c *gin.Context) {
	c.HTML(http.StatusOK, "form", formViewFromRequest(c))
}

func (app *App) handleFormSubmit(c *gin.Context) {
	view := formViewFromRequest(c)

	var input FormInput
	if err := c.ShouldBind(&input); err != nil {
		view.Notice = "Please enter a latitude, a longitude and a valid recipient email address."
		c.HTML(http.StatusBadRequest, "form", view)
		return
	}

	result := app.pipeline.Run(c.Request.Context(), pipeline.Request{
		Coordinates: types.NewCoords(*input.Latitude, *input.Longitude),
		APIKey:      app.cfg.Weather.APIKey,
		Recipient:   input.Recipient,
		Sender:      app.senderCredentials(),
	})

	status := http.StatusOK
	if isInputError(result.Err) {
		status = http.StatusBadRequest
	}

	// Table first, then the chart, then the notice
	if result.Series != nil {
		view.Place = result.Series.Place
		view.Rows = newFormRows(result.Series)
	}
	if result.Chart != nil {
		view.ChartURI = template.URL("data:" + result.Chart.ContentType() + ";base64," +
			base64.StdEncoding.EncodeToString(result.Chart.Data))
	}
	view.Notice = result.Message
	view.Succeeded = result.Succeeded()

	c.HTML(status, "form", view)
}

func newFormRows(series *types.ForecastSeries) []formRow {
	loc := series.Location()
	rows := make([]formRow, 0, series.Len())
	for _, p := range series.Points {
		rows = append(rows, formRow{
			Time:        p.Timestamp.In(loc).Format("2006-01-02 15:04"),
			Temperature: fmt.Sprintf("%.2f", p.TemperatureCelsius),
			Humidity:    fmt.Sprintf("%.0f", p.HumidityPercent),
			WindSpeed:   fmt.Sprintf("%.2f", p.WindSpeedMps),
		})
	}
	return rows
}
