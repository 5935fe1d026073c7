package stub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"streamreport/internal/backend"
	"streamreport/internal/report"
	"streamreport/internal/shared/metrics"
	"streamreport/internal/shared/server/middleware"
	"streamreport/internal/shared/server/respond"
	"streamreport/internal/shared/storage/object/local"
	"streamreport/internal/shared/telemetry"
	"streamreport/internal/shared/util"
)

const (
	msgUploadDone       = "ファイルのアップロードが完了しました"
	msgNoFileSelected   = "ファイルが選択されていません"
	msgSessionNotFound  = "セッションが見つかりません"
	msgReportNotFound   = "レポートが見つかりません"
	msgExcelUnsupported = "Excel形式の読み込みには対応していません"

	manifestFile = "manifest.json"
	reportFile   = "report.json"
)

var (
	videoExts = []string{"mp4", "mov", "avi", "mkv"}
	sheetExts = []string{"csv", "xlsx", "xls"}
)

// uploadField describes one required multipart part and its validation messages.
type uploadField struct {
	name       string
	allowed    []string
	missingMsg string
	invalidMsg string
}

var uploadFields = []uploadField{
	{backend.FieldVideo, videoExts, "動画ファイルがアップロードされていません", "動画ファイルの形式が無効です"},
	{backend.FieldData, sheetExts, "配信データがアップロードされていません", "配信データの形式が無効です（CSV/Excelのみ）"},
	{backend.FieldComments, sheetExts, "コメントデータがアップロードされていません", "コメントデータの形式が無効です（CSV/Excelのみ）"},
}

// Options configures the stand-in backend.
type Options struct {
	// Dir is where sessions, reports and chart assets are written.
	Dir            string
	AnalyzeDelay   time.Duration
	Token          string
	AllowedOrigins []string
	Now            func() time.Time
}

// Server is a local stand-in for the analysis backend.
type Server struct {
	store *local.Store
	dir   string
	delay time.Duration
	token string
	cors  []string
	now   func() time.Time
}

// manifest records the stored key of each uploaded part.
type manifest struct {
	SessionID string            `json:"session_id"`
	Files     map[string]string `json:"files"`
}

// New builds a stub server rooted at opts.Dir.
func New(opts Options) *Server {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		store: local.New(opts.Dir),
		dir:   opts.Dir,
		delay: opts.AnalyzeDelay,
		token: opts.Token,
		cors:  origins,
		now:   now,
	}
}

// Router wires the API, static assets and metrics.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logging(), middleware.CORS(s.cors))

	r.GET("/healthz", func(c *gin.Context) { respond.OK(c, gin.H{"status": "ok"}) })
	r.GET("/metrics", metrics.Handler())
	r.Static("/static/uploads", s.dir)

	api := r.Group("/api")
	api.Use(middleware.BearerToken(s.token))
	api.POST("/upload", s.upload)
	api.POST("/analyze/:id", s.analyze)
	api.GET("/report/:id", s.report)
	return r
}

func (s *Server) upload(c *gin.Context) {
	headers := make(map[string]*multipart.FileHeader, len(uploadFields))
	for _, f := range uploadFields {
		fh, err := c.FormFile(f.name)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, f.missingMsg)
			return
		}
		headers[f.name] = fh
	}
	for _, f := range uploadFields {
		if strings.TrimSpace(headers[f.name].Filename) == "" {
			respond.Error(c, http.StatusBadRequest, msgNoFileSelected)
			return
		}
	}
	for _, f := range uploadFields {
		if !hasExt(headers[f.name].Filename, f.allowed) {
			respond.Error(c, http.StatusBadRequest, f.invalidMsg)
			return
		}
	}

	sessionID := s.newSessionID()
	c.Set(middleware.SessionIDKey, sessionID)
	ctx := c.Request.Context()

	m := manifest{SessionID: sessionID, Files: make(map[string]string, len(uploadFields))}
	for _, f := range uploadFields {
		fh := headers[f.name]
		key := path.Join(sessionID, f.name+"."+extOf(fh.Filename))
		if err := s.saveUpload(ctx, key, fh); err != nil {
			respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("アップロードエラー: %v", err))
			return
		}
		m.Files[f.name] = key
	}
	if err := s.saveJSON(ctx, path.Join(sessionID, manifestFile), m); err != nil {
		respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("アップロードエラー: %v", err))
		return
	}

	metrics.IncStubSession()
	telemetry.Info("stub.upload.complete", map[string]any{"session_id": sessionID})
	respond.Success(c, gin.H{
		"session_id": sessionID,
		"message":    msgUploadDone,
	})
}

func (s *Server) analyze(c *gin.Context) {
	sessionID, ok := s.sessionParam(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, msgSessionNotFound)
		return
	}
	ctx := c.Request.Context()

	var m manifest
	if err := s.loadJSON(ctx, path.Join(sessionID, manifestFile), &m); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respond.Error(c, http.StatusNotFound, msgSessionNotFound)
			return
		}
		respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("分析エラー: %v", err))
		return
	}

	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.delay):
		}
	}

	rep, err := s.runAnalysis(ctx, m)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("分析エラー: %v", err))
		return
	}

	metrics.IncStubReport()
	telemetry.Info("stub.analysis.complete", map[string]any{
		"session_id":     sessionID,
		"video_duration": rep.VideoDuration,
	})
	respond.Success(c, gin.H{
		"report_data": rep,
		"session_id":  sessionID,
	})
}

func (s *Server) report(c *gin.Context) {
	sessionID, ok := s.sessionParam(c)
	if !ok {
		respond.Error(c, http.StatusNotFound, msgReportNotFound)
		return
	}

	rc, err := s.store.Open(c.Request.Context(), path.Join(sessionID, reportFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respond.Error(c, http.StatusNotFound, msgReportNotFound)
			return
		}
		respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("レポート取得エラー: %v", err))
		return
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, fmt.Sprintf("レポート取得エラー: %v", err))
		return
	}

	etag := `"` + util.ContentDigest(body) + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (s *Server) runAnalysis(ctx context.Context, m manifest) (report.Report, error) {
	series, err := s.parseSeries(ctx, m.Files[backend.FieldData])
	if err != nil {
		return report.Report{}, fmt.Errorf("配信データ: %w", err)
	}
	comments, err := s.parseComments(ctx, m.Files[backend.FieldComments])
	if err != nil {
		return report.Report{}, fmt.Errorf("コメントデータ: %w", err)
	}

	built := BuildReport(m.SessionID, series, comments, s.now())

	var timeline, pie bytes.Buffer
	if err := WriteTimelineChart(&timeline, series); err != nil {
		return report.Report{}, err
	}
	if err := WriteCommentPieChart(&pie, Classify(comments)); err != nil {
		return report.Report{}, err
	}
	if _, err := s.store.SaveWithKey(ctx, path.Join(m.SessionID, timelineChartFile), "image/png", &timeline); err != nil {
		return report.Report{}, err
	}
	if _, err := s.store.SaveWithKey(ctx, path.Join(m.SessionID, commentPieChartFile), "image/png", &pie); err != nil {
		return report.Report{}, err
	}
	if err := s.saveJSON(ctx, path.Join(m.SessionID, reportFile), built); err != nil {
		return report.Report{}, err
	}
	return built, nil
}

func (s *Server) parseSeries(ctx context.Context, key string) (Series, error) {
	rc, err := s.openSheet(ctx, key)
	if err != nil {
		return Series{}, err
	}
	defer rc.Close()
	return ParseSeries(rc)
}

func (s *Server) parseComments(ctx context.Context, key string) ([]string, error) {
	rc, err := s.openSheet(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ParseComments(rc)
}

func (s *Server) openSheet(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" {
		return nil, errors.New("アップロードされたファイルが不完全です")
	}
	if extOf(key) != "csv" {
		return nil, errors.New(msgExcelUnsupported)
	}
	return s.store.Open(ctx, key)
}

func (s *Server) saveUpload(ctx context.Context, key string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = s.store.SaveWithKey(ctx, key, fh.Header.Get("Content-Type"), f)
	return err
}

func (s *Server) saveJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.store.SaveWithKey(ctx, key, "application/json", bytes.NewReader(body))
	return err
}

func (s *Server) loadJSON(ctx context.Context, key string, v any) error {
	rc, err := s.store.Open(ctx, key)
	if err != nil {
		return err
	}
	defer rc.Close()
	return json.NewDecoder(rc).Decode(v)
}

// sessionParam returns the path session id when it is safe to use as a directory name.
func (s *Server) sessionParam(c *gin.Context) (string, bool) {
	raw := c.Param("id")
	id, err := util.SanitizeFileName(raw)
	if err != nil || id != raw {
		return "", false
	}
	c.Set(middleware.SessionIDKey, id)
	return id, true
}

func (s *Server) newSessionID() string {
	return s.now().Format("20060102_150405") + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

func extOf(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
