package api

import (
	"bytes"
	_ "embed"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-grid/game"
	"github.com/hoshinonyaruko/snake-grid/input"
	"github.com/hoshinonyaruko/snake-grid/render"
	"github.com/hoshinonyaruko/snake-grid/structs"
	"github.com/rs/zerolog"
)

//go:embed web/index.html
var indexHTML []byte

// NewRouter builds the HTTP frontend. Direction requests go through keys so
// they only reach the game while it is running.
func NewRouter(ctrl *game.Controller, keys *input.Queue, board *render.Board, log zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/", IndexHandler())
	// 处理玩家改变方向
	router.GET("/update-direction", UpdateDirection(keys))
	// Play Again
	router.GET("/reset", ResetHandler(ctrl))
	router.GET("/state", StateHandler(ctrl))
	// 渲染函数 直接返回图片
	router.GET("/render-map", RenderMapHandler(ctrl, board))
	router.GET("/events", EventsHandler(ctrl))
	return router
}

func IndexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	}
}

func UpdateDirection(keys *input.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		newDirection := c.Query("direction")

		// 验证是否提供了必要的查询参数
		if newDirection == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: direction"})
			return
		}

		// 其他按键忽略
		if !keys.Push(newDirection) {
			c.JSON(http.StatusOK, gin.H{"ignored": true, "message": "Not a direction key"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Direction updated successfully"})
	}
}

func ResetHandler(ctrl *game.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ctrl.Reset())
	}
}

func StateHandler(ctrl *game.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}

func RenderMapHandler(ctrl *game.Controller, board *render.Board) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := board.EncodePNG(&buf, ctrl.Snapshot()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to render map"})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}

// EventsHandler streams a "state" event with the snapshot after every change,
// starting with the current one. Slow clients skip to the latest snapshot.
func EventsHandler(ctrl *game.Controller) gin.HandlerFunc {
	return func(c *gin.Context) {
		updates := make(chan structs.Snapshot, 1)
		unsubscribe := ctrl.Subscribe(func(s structs.Snapshot) {
			select {
			case <-updates:
			default:
			}
			updates <- s
		})
		defer unsubscribe()

		c.Header("Cache-Control", "no-cache")
		c.SSEvent("state", ctrl.Snapshot())
		c.Writer.Flush()

		c.Stream(func(w io.Writer) bool {
			select {
			case <-c.Request.Context().Done():
				return false
			case s := <-updates:
				c.SSEvent("state", s)
				return true
			}
		})
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "http").Logger()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
