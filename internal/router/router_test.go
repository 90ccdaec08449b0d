package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ronsuru/VeriFund-version2-sub003/internal/config"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/middleware"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/model"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/scoring"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/storage"
	"github.com/ronsuru/VeriFund-version2-sub003/internal/testutil"
)

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newMemoryUploader() *memoryUploader {
	return &memoryUploader{objects: map[string][]byte{}}
}

func (u *memoryUploader) Name() string { return "memory" }

func (u *memoryUploader) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	url := "https://files.verifund.test/" + key
	u.objects[url] = data
	return url, nil
}

func (u *memoryUploader) Delete(_ context.Context, fileURL string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, fileURL)
	u.deleted = append(u.deleted, fileURL)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type api struct {
	t    *testing.T
	r    *gin.Engine
	auth config.AuthConfig
}

func newAPI(t *testing.T, db *gorm.DB, uploader storage.Uploader) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:  config.ServerConfig{AllowedOrigins: []string{"*"}},
		Auth:    config.AuthConfig{JWTSecret: "router-test", Issuer: "verifund", TokenTTL: time.Hour},
		Storage: config.StorageConfig{Folder: "reports", ImageMaxEdge: 256, MaxFileSize: 1 << 20},
	}
	return &api{t: t, r: Setup(db, cfg, scoring.DefaultCatalog(), uploader), auth: cfg.Auth}
}

func (a *api) token(userId int64) string {
	token, err := middleware.IssueToken(a.auth, userId, time.Now())
	require.NoError(a.t, err)
	return token
}

func (a *api) send(req *http.Request, userId int64) (int, envelope) {
	a.t.Helper()
	if userId > 0 {
		req.Header.Set("Authorization", "Bearer "+a.token(userId))
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *api) do(method, path string, userId int64, body interface{}) (int, envelope) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return a.send(req, userId)
}

func (a *api) upload(reportId, userId int64, documentType, fileName string, data []byte) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(a.t, mw.WriteField("document_type", documentType))
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(a.t, err)
	_, err = part.Write(data)
	require.NoError(a.t, err)
	require.NoError(a.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/progress-reports/%d/documents/upload", reportId), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.send(req, userId)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(600, 300, color.NRGBA{G: 120, A: 255}), imaging.PNG))
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	a := newAPI(t, testutil.NewDB(t), newMemoryUploader())
	code, _ := a.do(http.MethodGet, "/health", 0, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	db := testutil.NewDB(t)
	uploader := newMemoryUploader()
	a := newAPI(t, db, uploader)

	creator := testutil.CreateUser(t, db)
	admin := testutil.CreateUser(t, db, testutil.AsAdmin())
	support := testutil.CreateUser(t, db, testutil.AsSupport())
	donor := testutil.CreateUser(t, db)

	code, _ := a.do(http.MethodPost, "/api/v1/campaigns", 0, map[string]interface{}{"title": "x"})
	require.Equal(t, http.StatusUnauthorized, code)

	code, env := a.do(http.MethodPost, "/api/v1/campaigns", creator.Id, map[string]interface{}{
		"title": "Water pump for Barangay Uno", "goal_amount": 1000, "minimum_amount": 500, "duration_days": 30,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	campaign := decode[model.CampaignModel](t, env)
	assert.Equal(t, model.CampaignStatusPending, campaign.Status)
	base := fmt.Sprintf("/api/v1/campaigns/%d", campaign.Id)
	adminBase := fmt.Sprintf("/api/v1/admin/campaigns/%d", campaign.Id)

	code, _ = a.do(http.MethodPost, base+"/contributions", support.Id, map[string]interface{}{
		"amount": 100, "payment_reference": "PAY-0",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, adminBase+"/approve", creator.Id, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodPost, adminBase+"/approve", support.Id, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = a.do(http.MethodPost, adminBase+"/claim", support.Id, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = a.do(http.MethodPost, adminBase+"/approve", admin.Id, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, model.CampaignStatusActive, decode[model.CampaignModel](t, env).Status)

	// only staff record confirmed payments, so creators cannot fund themselves
	for _, caller := range []int64{donor.Id, creator.Id} {
		code, _ = a.do(http.MethodPost, base+"/contributions", caller, map[string]interface{}{
			"amount": 600, "payment_reference": "PAY-SELF",
		})
		assert.Equal(t, http.StatusForbidden, code)
	}
	code, _ = a.do(http.MethodPost, base+"/contributions", support.Id, map[string]interface{}{"amount": 600})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodPost, base+"/contributions", support.Id, map[string]interface{}{
		"amount": -5, "payment_reference": "PAY-NEG",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodPost, base+"/contributions", support.Id, map[string]interface{}{
		"amount": 600, "contributor_id": creator.Id, "payment_reference": "PAY-CREATOR",
	})
	assert.Equal(t, http.StatusForbidden, code)
	code, env = a.do(http.MethodGet, base, 0, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0), decode[model.CampaignModel](t, env).CurrentAmount)

	code, _ = a.do(http.MethodPost, base+"/claims", creator.Id, map[string]interface{}{"amount": 1})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodPost, base+"/contributions", support.Id, map[string]interface{}{
		"amount": 600, "contributor_id": donor.Id, "payment_reference": "PAY-1",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	campaign = decode[model.CampaignModel](t, env)
	assert.Equal(t, model.CampaignStatusOnProgress, campaign.Status)
	assert.Equal(t, int64(600), campaign.CurrentAmount)

	code, _ = a.do(http.MethodPost, base+"/cancel", creator.Id, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = a.do(http.MethodPost, base+"/claims", creator.Id, map[string]interface{}{"amount": 1000})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, env = a.do(http.MethodPost, base+"/claims", creator.Id, map[string]interface{}{"amount": 200})
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, int64(200), decode[model.CampaignModel](t, env).ClaimedAmount)

	code, env = a.do(http.MethodPost, base+"/progress-reports", creator.Id, map[string]interface{}{
		"title": "Pump delivered", "description": "Receipts attached",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	report := decode[model.ProgressReportModel](t, env)
	reportBase := fmt.Sprintf("/api/v1/progress-reports/%d", report.Id)

	code, env = a.upload(report.Id, creator.Id, string(model.DocumentTypeImage), "pump.png", pngBytes(t))
	require.Equal(t, http.StatusCreated, code, env.Message)
	attached := decode[struct {
		Document    model.ProgressReportDocumentModel `json:"document"`
		CreditScore model.UserCreditScoreModel        `json:"credit_score"`
	}](t, env)
	assert.Equal(t, "image/png", attached.Document.MimeType)
	assert.True(t, strings.HasPrefix(attached.Document.FileUrl, "https://files.verifund.test/reports/"))
	assert.Equal(t, 13, attached.CreditScore.ScorePercentage)
	assert.Len(t, uploader.objects, 1)

	code, env = a.do(http.MethodPost, reportBase+"/documents", creator.Id, map[string]interface{}{
		"document_type": "official_receipt", "file_name": "or.pdf", "file_url": "https://files.verifund.test/or.pdf",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, _ = a.do(http.MethodPost, reportBase+"/documents", creator.Id, map[string]interface{}{
		"document_type": "selfie", "file_name": "a.jpg", "file_url": "https://files.verifund.test/a.jpg",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = a.do(http.MethodGet, reportBase+"/credit-score", 0, nil)
	require.Equal(t, http.StatusOK, code)
	score := decode[struct {
		Stored   model.UserCreditScoreModel `json:"stored"`
		Computed scoring.Result             `json:"computed"`
		InSync   bool                       `json:"in_sync"`
	}](t, env)
	assert.Equal(t, 25, score.Stored.ScorePercentage)
	assert.True(t, score.InSync)

	var stored model.UserCreditScoreModel
	require.NoError(t, db.Where("progress_report_id = ?", report.Id).First(&stored).Error)
	stored.CompletedDocumentTypes = []model.DocumentType{model.DocumentTypeImage, model.DocumentTypeInvoice}
	require.NoError(t, db.Save(&stored).Error)
	code, env = a.do(http.MethodGet, reportBase+"/credit-score", 0, nil)
	require.Equal(t, http.StatusOK, code)
	drifted := decode[struct {
		Stored model.UserCreditScoreModel `json:"stored"`
		InSync bool                       `json:"in_sync"`
	}](t, env)
	assert.Equal(t, 25, drifted.Stored.ScorePercentage)
	assert.False(t, drifted.InSync)

	code, _ = a.do(http.MethodPost, reportBase+"/ratings", creator.Id, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.do(http.MethodPost, reportBase+"/ratings", donor.Id, map[string]interface{}{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, code)
	code, env = a.do(http.MethodPost, reportBase+"/ratings", donor.Id, map[string]interface{}{"rating": 4})
	require.Equal(t, http.StatusCreated, code, env.Message)
	code, env = a.do(http.MethodPost, reportBase+"/ratings", donor.Id, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, env.Success)
	assert.EqualValues(t, 4, decode[map[string]interface{}](t, env)["existing_rating"])

	code, env = a.do(http.MethodGet, fmt.Sprintf("/api/v1/users/%d/credit-summary", creator.Id), 0, nil)
	require.Equal(t, http.StatusOK, code)
	summary := decode[map[string]interface{}](t, env)
	assert.EqualValues(t, 1, summary["report_count"])
	assert.EqualValues(t, 25, summary["average_score"])
	assert.EqualValues(t, 4, summary["average_rating"])

	code, env = a.do(http.MethodPost, adminBase+"/flag", support.Id, map[string]interface{}{"reason": "duplicate receipts"})
	require.Equal(t, http.StatusOK, code, env.Message)
	code, _ = a.do(http.MethodPost, reportBase+"/documents", creator.Id, map[string]interface{}{
		"document_type": "invoice", "file_name": "inv.pdf", "file_url": "https://files.verifund.test/inv.pdf",
	})
	assert.Equal(t, http.StatusConflict, code)
	code, _ = a.do(http.MethodPost, base+"/claims", creator.Id, map[string]interface{}{"amount": 100})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodPost, adminBase+"/clear-flag", admin.Id, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, model.CampaignStatusOnProgress, decode[model.CampaignModel](t, env).Status)

	code, env = a.do(http.MethodPost, base+"/complete", creator.Id, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.Equal(t, model.CampaignStatusCompleted, decode[model.CampaignModel](t, env).Status)

	code, _ = a.do(http.MethodPost, base+"/progress-reports", creator.Id, map[string]interface{}{"title": "Late"})
	assert.Equal(t, http.StatusConflict, code)

	code, env = a.do(http.MethodGet, base+"/events?page_size=50", 0, nil)
	require.Equal(t, http.StatusOK, code)
	events := decode[struct {
		Events     []model.EventModel `json:"events"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}](t, env)
	assert.Equal(t, int64(len(events.Events)), events.Pagination.Total)
	assert.Equal(t, model.EventCampaignSubmitted, events.Events[0].EventType)

	code, env = a.do(http.MethodGet, base+"/stats", 0, nil)
	require.Equal(t, http.StatusOK, code)
	stats := decode[map[string]interface{}](t, env)
	assert.EqualValues(t, 400, stats["claimable_amount"])
	assert.EqualValues(t, 1, stats["contributor_count"])
}

func TestUploadErrors(t *testing.T) {
	db := testutil.NewDB(t)
	creator := testutil.CreateUser(t, db)
	admin := testutil.CreateUser(t, db, testutil.AsAdmin())
	uploader := newMemoryUploader()
	a := newAPI(t, db, uploader)

	_, env := a.do(http.MethodPost, "/api/v1/campaigns", creator.Id, map[string]interface{}{
		"title": "Clinic", "goal_amount": 1000, "minimum_amount": 100, "duration_days": 10,
	})
	campaign := decode[model.CampaignModel](t, env)
	base := fmt.Sprintf("/api/v1/campaigns/%d", campaign.Id)
	a.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/campaigns/%d/approve", campaign.Id), admin.Id, nil)
	a.do(http.MethodPost, base+"/start-progress", creator.Id, nil)
	code, env := a.do(http.MethodPost, base+"/progress-reports", creator.Id, map[string]interface{}{"title": "Week 1"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	report := decode[model.ProgressReportModel](t, env)

	code, _ = a.upload(report.Id, creator.Id, "image", "notes.txt", []byte("plain text is not a document"))
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.upload(report.Id, creator.Id, "selfie", "pump.png", pngBytes(t))
	assert.Equal(t, http.StatusBadRequest, code)

	stranger := testutil.CreateUser(t, db)
	code, _ = a.upload(report.Id, stranger.Id, "image", "pump.png", pngBytes(t))
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.upload(report.Id+100, creator.Id, "image", "pump.png", pngBytes(t))
	assert.Equal(t, http.StatusNotFound, code)

	// rejected uploads never reach the object store
	assert.Empty(t, uploader.objects)
	assert.Empty(t, uploader.deleted)

	disabled, err := storage.New(context.Background(), config.StorageConfig{})
	require.NoError(t, err)
	code, _ = newAPI(t, db, disabled).upload(report.Id, creator.Id, "image", "pump.png", pngBytes(t))
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestRequestValidation(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db)
	a := newAPI(t, db, newMemoryUploader())

	code, _ := a.do(http.MethodGet, "/api/v1/campaigns/abc", 0, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodGet, "/api/v1/campaigns/999", 0, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.do(http.MethodGet, "/api/v1/campaigns?status=archived", 0, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = a.do(http.MethodPost, "/api/v1/campaigns", user.Id, map[string]interface{}{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := a.do(http.MethodGet, "/api/v1/users/me", user.Id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, user.Email, decode[model.UserModel](t, env).Email)

	code, env = a.do(http.MethodGet, "/api/v1/notifications?unread=true", user.Id, nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	code, _ = a.do(http.MethodPatch, "/api/v1/notifications/12/read", user.Id, nil)
	assert.Equal(t, http.StatusNotFound, code)
}
