package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/bgeraser/rembg"
	"github.com/chaos-io/bgeraser/session"
	"github.com/chaos-io/bgeraser/util"
	nhttp "github.com/chaos-io/bgeraser/util/http"
)

type Server struct {
	ctl            *session.Controller
	maxUploadBytes int64
}

func New(ctl *session.Controller, maxUploadBytes int64) *Server {
	return &Server{
		ctl:            ctl,
		maxUploadBytes: maxUploadBytes,
	}
}

// Router 注册所有路由，middleware 由调用方决定（日志、recovery 等）
func (s *Server) Router(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(middleware...)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/sessions")
	api.POST("", s.createSession)
	api.GET("/:id", s.getSession)
	api.DELETE("/:id", s.deleteSession)
	api.POST("/:id/image", s.loadImage)
	api.PUT("/:id/threshold", s.setThreshold)
	api.POST("/:id/remove", s.removeBackground)
	api.GET("/:id/result", s.exportResult)

	return r
}

// abort 把领域错误映射成 HTTP 状态码
func abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, nhttp.ErrResponseTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNoImage), errors.Is(err, session.ErrNoResult):
		status = http.StatusConflict
	case errors.Is(err, util.ErrNotImage), errors.Is(err, session.ErrEmptyLoad), errors.Is(err, rembg.ErrEmptyImage):
		status = http.StatusBadRequest
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
