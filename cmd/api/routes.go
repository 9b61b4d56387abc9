package main

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// registerRoutes sets up all API endpoints
func (app *App) registerRoutes() {
	// Health check endpoint
	huma.Register(app.api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Ping health check",
		Description: "Check if the API is running",
		Tags:        []string{"health"},
	}, app.handlePing)

	huma.Register(app.api, huma.Operation{
		OperationID: "get-forecast",
		Method:      http.MethodGet,
		Path:        "/v1/forecast",
		Summary:     "Get forecast table",
		Description: "Fetch the 5-day / 3-hour forecast for a coordinate",
		Tags:        []string{"forecast"},
	}, app.handleGetForecast)

	huma.Register(app.api, huma.Operation{
		OperationID: "get-forecast-chart",
		Method:      http.MethodGet,
		Path:        "/v1/forecast/chart.png",
		Summary:     "Get forecast chart",
		Description: "Render the forecast for a coordinate as a PNG line chart",
		Tags:        []string{"forecast"},
	}, app.handleGetForecastChart)

	huma.Register(app.api, huma.Operation{
		OperationID: "export-forecast",
		Method:      http.MethodGet,
		Path:        "/v1/forecast/export.xlsx",
		Summary:     "Export forecast workbook",
		Description: "Download the forecast table with a line chart as an XLSX workbook",
		Tags:        []string{"forecast"},
	}, app.handleExportForecast)

	huma.Register(app.api, huma.Operation{
		OperationID: "send-forecast",
		Method:      http.MethodPost,
		Path:        "/v1/forecast/send",
		Summary:     "Email forecast chart",
		Description: "Fetch the forecast, render the chart and email it to one recipient",
		Tags:        []string{"forecast"},
		Middlewares: huma.Middlewares{app.limitSendsHuma},
	}, app.handleSendForecast)

	// Interactive form
	app.router.GET("/", app.handleFormPage)
	app.router.POST("/", app.limitSendsGin, app.handleFormSubmit)
}
