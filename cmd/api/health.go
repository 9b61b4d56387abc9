package main

import (
	"context"
	"time"
)

const serviceName = "forecast-mailer"

// PingOutput reports liveness and which forecast provider the server is wired to
type PingOutput struct {
	Body struct {
		Message  string    `json:"message" example:"pong" doc:"Response message"`
		Service  string    `json:"service" example:"forecast-mailer"`
		Provider string    `json:"provider" example:"openweathermap" doc:"Configured forecast provider"`
		Time     time.Time `json:"time" doc:"Server time in UTC"`
	}
}

func (app *App) handlePing(ctx context.Context, input *struct{}) (*PingOutput, error) {
	resp := &PingOutput{}
	resp.Body.Message = "pong"
	resp.Body.Service = serviceName
	resp.Body.Provider = app.cfg.Weather.Provider
	if resp.Body.Provider == "" {
		resp.Body.Provider = "openweathermap"
	}
	resp.Body.Time = time.Now().UTC()
	return resp, nil
}
