package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/application/media"
	domainmedia "github.com/shopfront/backend/internal/domain/media"
	"github.com/shopfront/backend/internal/infrastructure/persistence"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMediaRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db := newTestDB(t, &domainmedia.Asset{})
	svc := media.NewService(persistence.NewGormMediaRepository(db), storage.NewMemoryObjectStorage("https://cdn.shop.test"),
		media.DefaultServiceConfig(), nil)
	h := NewMediaHandler(svc)

	r := gin.New()
	g := r.Group("/admin/media", withClaims(adminClaims("editor")))
	g.GET("", h.List)
	g.POST("", h.InitiateUpload)
	g.POST("/upload", h.Upload)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.UpdateMetadata)
	g.POST("/:id/confirm", h.ConfirmUpload)
	g.GET("/:id/download-url", h.DownloadURL)
	g.DELETE("/:id", h.Delete)
	return r
}

func multipartFile(t *testing.T, name, contentType string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestMediaHandler_PresignedUpload(t *testing.T) {
	r := newMediaRouter(t)

	w := doJSON(t, r, http.MethodPost, "/admin/media", map[string]any{
		"file_name": "Hero Banner.PNG", "content_type": "image/png", "size": 2048, "folder": "banners",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	initiated := decode[media.InitiateUploadResponse](t, w).Data
	assert.NotEmpty(t, initiated.UploadURL)
	assert.Contains(t, initiated.ObjectKey, "banners/")

	w = doJSON(t, r, http.MethodGet, "/admin/media/"+initiated.AssetID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pending", decode[media.AssetResponse](t, w).Data.Status)

	w = doJSON(t, r, http.MethodPost, "/admin/media/"+initiated.AssetID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decode[media.AssetResponse](t, w).Data
	assert.Equal(t, "uploaded", confirmed.Status)
	assert.Contains(t, confirmed.URL, "https://cdn.shop.test/")

	// confirming twice is rejected
	w = doJSON(t, r, http.MethodPost, "/admin/media/"+initiated.AssetID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodGet, "/admin/media/"+initiated.AssetID.String()+"/download-url", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[media.DownloadURLResponse](t, w).Data.URL)

	w = doJSON(t, r, http.MethodDelete, "/admin/media/"+initiated.AssetID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = doJSON(t, r, http.MethodGet, "/admin/media/"+initiated.AssetID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMediaHandler_Upload(t *testing.T) {
	r := newMediaRouter(t)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	tests := []struct {
		name        string
		fileName    string
		contentType string
		data        []byte
		wantStatus  int
		wantCode    string
	}{
		{"png", "logo.png", "image/png", png, http.StatusCreated, ""},
		{"sniffed png", "logo.bin", "application/octet-stream", png, http.StatusCreated, ""},
		{"plain text", "notes.txt", "text/plain", []byte("hello"), http.StatusUnsupportedMediaType, dto.ErrCodeUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartFile(t, tt.fileName, tt.contentType, tt.data, map[string]string{"alt_text": "Shop logo"})
			req := httptest.NewRequest(http.MethodPost, "/admin/media/upload", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[any](t, w).Error.Code)
				return
			}
			asset := decode[media.AssetResponse](t, w).Data
			assert.Equal(t, "uploaded", asset.Status)
			assert.Equal(t, "image/png", asset.ContentType)
			assert.Equal(t, "Shop logo", asset.AltText)
		})
	}

	w := doJSON(t, r, http.MethodPost, "/admin/media", map[string]any{
		"file_name": "setup.exe", "content_type": "application/x-msdownload", "size": 10,
	})
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}
