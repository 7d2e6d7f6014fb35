// Package server exposes receipt capture, normalization and split payment
// over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wudi/receiptkit/frame"
	"github.com/wudi/receiptkit/normalize"
	"github.com/wudi/receiptkit/observability"
	"github.com/wudi/receiptkit/receipt"
	"github.com/wudi/receiptkit/split"
	"github.com/wudi/receiptkit/surface"
)

// Options configures a Server.
type Options struct {
	Addr            string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	Logger          observability.Logger
	Metrics         *observability.Metrics

	// Limits bounds the decoded size of uploads. Zero fields use the
	// surface defaults.
	Limits surface.Limits
}

// Server serves the capture and split payment routes.
type Server struct {
	opts    Options
	scanner *receipt.Scanner
	norm    *normalize.Normalizer
	store   *receipt.Store
	logger  observability.Logger
	engine  *gin.Engine
}

// New wires the routes. norm is used by the normalize-only endpoint; scans go
// through scanner.
func New(scanner *receipt.Scanner, norm *normalize.Normalizer, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NopLogger{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if norm == nil {
		norm = normalize.New()
	}
	s := &Server{
		opts:    opts,
		scanner: scanner,
		norm:    norm,
		store:   scanner.Store(),
		logger:  opts.Logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	r.GET(CapturePath, s.captureView)
	r.GET(SplitPath, RequireTotal(s.store), s.splitView)

	api := r.Group("/api")
	api.GET("/receipts", s.getReceipt)
	api.POST("/receipts", s.postReceipt)
	api.DELETE("/receipts", s.resetReceipt)
	api.POST("/normalize", s.postNormalize)

	r.GET("/metrics", gin.WrapH(s.opts.Metrics.Handler()))
	return r
}

// ListenAndServe runs until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.opts.Addr,
		Handler:     s.engine,
		ReadTimeout: s.opts.ReadTimeout,
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", observability.String("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			observability.String("method", c.Request.Method),
			observability.String("path", c.FullPath()),
			observability.Int("status", c.Writer.Status()),
			observability.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) captureView(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"view":    "capture",
		"upload":  "/api/receipts",
		"receipt": s.store.Snapshot(),
	})
}

func (s *Server) splitView(c *gin.Context) {
	// The store may have been reset since RequireTotal ran.
	total, ok := s.store.Total()
	if !ok {
		c.Redirect(http.StatusFound, CapturePath)
		return
	}
	people := 2
	if v := c.Query("people"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "people must be an integer"})
			return
		}
		people = n
	}
	shares, err := split.Even(total, people)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"view":   "dutch-pay",
		"total":  total,
		"people": people,
		"shares": shares,
	})
}

func (s *Server) getReceipt(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) resetReceipt(c *gin.Context) {
	s.store.Reset()
	c.Status(http.StatusNoContent)
}

func (s *Server) postReceipt(c *gin.Context) {
	f, ok := s.readFrame(c)
	if !ok {
		return
	}
	rec, err := s.scanner.Scan(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      rec.ID,
		"receipt": s.store.Snapshot(),
	})
}

func (s *Server) postNormalize(c *gin.Context) {
	f, ok := s.readFrame(c)
	if !ok {
		return
	}
	img, err := s.norm.Normalize(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("X-Image-Width", strconv.Itoa(img.Width))
	c.Header("X-Image-Height", strconv.Itoa(img.Height))
	c.Data(http.StatusOK, img.MIMEType(), img.Data)
}

// readFrame accepts either a multipart "image" field or a raw image body.
func (s *Server) readFrame(c *gin.Context) (frame.Frame, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)

	var r io.Reader = c.Request.Body
	if fh, err := c.FormFile("image"); err == nil {
		file, err := fh.Open()
		if err != nil {
			s.fail(c, err)
			return nil, false
		}
		defer file.Close()
		r = file
	} else if !errors.Is(err, http.ErrNotMultipart) && !errors.Is(err, http.ErrMissingFile) {
		s.fail(c, err)
		return nil, false
	}

	data, err := io.ReadAll(r)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	still, err := frame.DecodeLimited(data, s.opts.Limits)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return still, true
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", observability.String("path", c.FullPath()), observability.Error("error", err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, multipart.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, frame.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, frame.ErrNotDecoded), errors.Is(err, normalize.ErrSourceRead):
		return http.StatusUnprocessableEntity
	case errors.Is(err, normalize.ErrAcquisition), errors.Is(err, normalize.ErrEncoding):
		return http.StatusInternalServerError
	case errors.Is(err, receipt.ErrRecognition):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
