// Copyright 2025 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alibaba/opensandbox/vshell/pkg/autocomplete"
	"github.com/alibaba/opensandbox/vshell/pkg/log"
	"github.com/alibaba/opensandbox/vshell/pkg/metrics"
	"github.com/alibaba/opensandbox/vshell/pkg/shell"
	"github.com/alibaba/opensandbox/vshell/pkg/web/controller"
	"github.com/alibaba/opensandbox/vshell/pkg/web/model"
)

// NewRouter builds a Gin engine serving the shell of d.
func NewRouter(accessToken string, d *shell.Dispatcher, engine *autocomplete.Engine) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logMiddleware(), accessTokenMiddleware(accessToken))

	r.GET("/ping", controller.PingHandler)

	withShell := func(fn func(*controller.ShellController)) gin.HandlerFunc {
		return func(ctx *gin.Context) {
			fn(controller.NewShellController(ctx, d, engine))
		}
	}

	command := r.Group("/command")
	{
		command.POST("", withShell(func(c *controller.ShellController) { c.RunCommand() }))
		command.DELETE("", withShell(func(c *controller.ShellController) { c.InterruptCommand() }))
	}

	r.POST("/complete", withShell(func(c *controller.ShellController) { c.Complete() }))
	r.POST("/edit", withShell(func(c *controller.ShellController) { c.Edit() }))

	sess := r.Group("/session")
	{
		sess.GET("", withShell(func(c *controller.ShellController) { c.GetSession() }))
		sess.POST("/save", withShell(func(c *controller.ShellController) { c.SaveSession() }))
		sess.POST("/load", withShell(func(c *controller.ShellController) { c.LoadSession() }))
		sess.DELETE("", withShell(func(c *controller.ShellController) { c.DeleteSession() }))
	}

	r.GET("/terminal", func(ctx *gin.Context) {
		controller.NewTerminalController(ctx, d, engine).Serve()
	})

	metric := r.Group("/metrics")
	{
		metric.GET("", withMetric(d, func(c *controller.MetricController) { c.GetMetrics() }))
		metric.GET("/watch", withMetric(d, func(c *controller.MetricController) { c.WatchMetrics() }))
		metric.GET("/prometheus", gin.WrapH(metrics.Handler()))
	}

	return r
}

func withMetric(d *shell.Dispatcher, fn func(*controller.MetricController)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		fn(controller.NewMetricController(ctx, d))
	}
}

func accessTokenMiddleware(token string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token == "" {
			ctx.Next()
			return
		}

		requestedToken := ctx.GetHeader(model.ApiAccessTokenHeader)
		if requestedToken == "" || requestedToken != token {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, map[string]any{
				"error": "Unauthorized: invalid or missing header " + model.ApiAccessTokenHeader,
			})
			return
		}

		ctx.Next()
	}
}

func logMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		log.Info("Requested: %v - %v", ctx.Request.Method, ctx.Request.URL.String())
		ctx.Next()
	}
}
