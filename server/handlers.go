package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chaos-io/bgeraser/session"
	"github.com/chaos-io/bgeraser/util"
)

type sessionResp struct {
	ID        string `json:"id"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
	Threshold int    `json:"threshold"`
	HasImage  bool   `json:"has_image"`
	HasResult bool   `json:"has_result"`
}

func toSessionResp(snap session.Snapshot) sessionResp {
	return sessionResp{
		ID:        snap.ID,
		Width:     snap.Width,
		Height:    snap.Height,
		Format:    snap.Format,
		Threshold: snap.Threshold,
		HasImage:  snap.HasImage,
		HasResult: snap.HasResult,
	}
}

type loadURLReq struct {
	URL string `json:"url" binding:"required,url"`
}

type thresholdReq struct {
	Threshold *int `json:"threshold" binding:"required"`
}

type colorResp struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

type rectResp struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

type removeResp struct {
	Background colorResp `json:"background"`
	Threshold  int       `json:"threshold"`
	Removed    int       `json:"removed"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Subject    *rectResp `json:"subject"`
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.ctl.Create()
	c.JSON(http.StatusCreated, toSessionResp(sess.Snapshot()))
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.ctl.Get(c.Param("id"))
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResp(sess.Snapshot()))
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.ctl.Delete(c.Param("id")); err != nil {
		abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// loadImage 支持 multipart 上传（字段 image）或 JSON {"url": "..."}
func (s *Server) loadImage(c *gin.Context) {
	if c.Request.ContentLength > s.maxUploadBytes {
		abort(c, &http.MaxBytesError{Limit: s.maxUploadBytes})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	var cmd session.LoadImage
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			abort(c, err)
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("image field: %v", err)})
			return
		}
		f, err := fh.Open()
		if err != nil {
			abort(c, err)
			return
		}
		defer func() {
			_ = f.Close()
		}()
		cmd.Reader = f
	} else {
		var req loadURLReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cmd.URL = req.URL
	}

	snap, err := s.ctl.LoadImage(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toSessionResp(snap))
}

func (s *Server) setThreshold(c *gin.Context) {
	var req thresholdReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v, err := s.ctl.SetThreshold(c.Param("id"), session.SetThreshold{Value: *req.Threshold})
	if err != nil {
		abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threshold": v})
}

func (s *Server) removeBackground(c *gin.Context) {
	res, err := s.ctl.RemoveBackground(c.Request.Context(), c.Param("id"), session.RemoveBackground{})
	if err != nil {
		abort(c, err)
		return
	}

	resp := removeResp{
		Background: colorResp{R: res.Background.R, G: res.Background.G, B: res.Background.B},
		Threshold:  res.Threshold,
		Removed:    res.Removed,
		Width:      res.Image.Bounds().Dx(),
		Height:     res.Image.Bounds().Dy(),
	}
	if !res.Subject.Empty() {
		resp.Subject = &rectResp{
			MinX: res.Subject.Min.X,
			MinY: res.Subject.Min.Y,
			MaxX: res.Subject.Max.X,
			MaxY: res.Subject.Max.Y,
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) exportResult(c *gin.Context) {
	// 先编码到内存，出错时还能返回 JSON
	var buf bytes.Buffer
	if err := s.ctl.ExportResult(c.Param("id"), session.ExportResult{Writer: &buf}); err != nil {
		abort(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, util.DefaultExportName))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
