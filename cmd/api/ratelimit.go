package main

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gin-gonic/gin"
)

const rateLimitedMessage = "Too many emails requested, please try again shortly."

func (app *App) limitSendsHuma(ctx huma.Context, next func(huma.Context)) {
	if !app.limiter.Allow() {
		app.logger.Warn("send rate limited", "path", ctx.URL().Path)
		_ = huma.WriteErr(app.api, ctx, http.StatusTooManyRequests, rateLimitedMessage)
		return
	}
	next(ctx)
}

func (app *App) limitSendsGin(c *gin.Context) {
	if !app.limiter.Allow() {
		app.logger.Warn("send rate limited", "path", c.Request.URL.Path)
		view := formViewFromRequest(c)
		view.Notice = rateLimitedMessage
		c.HTML(http.StatusTooManyRequests, "form", view)
		c.Abort()
		return
	}
	c.Next()
}
