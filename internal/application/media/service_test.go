package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/media"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*media.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*media.Asset), args.Error(1)
}

func (m *MockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]media.Asset, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]media.Asset), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) FindStalePending(ctx context.Context, cutoff time.Time, limit int) ([]media.Asset, error) {
	args := m.Called(ctx, cutoff, limit)
	return args.Get(0).([]media.Asset), args.Error(1)
}

func (m *MockRepository) Save(ctx context.Context, asset *media.Asset) error {
	return m.Called(ctx, asset).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// fakeStorage keeps objects in a map
type fakeStorage struct {
	objects   map[string][]byte
	deleted   []string
	presign   error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) GenerateUploadURL(_ context.Context, key, _ string, _ int64, expiresIn time.Duration) (string, time.Time, error) {
	if f.presign != nil {
		return "", time.Time{}, f.presign
	}
	return "https://s3.test/" + key + "?X-Amz-Signature=up", time.Now().Add(expiresIn), nil
}

func (f *fakeStorage) GenerateDownloadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://s3.test/" + key + "?X-Amz-Signature=down", time.Now().Add(expiresIn), nil
}

func (f *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) StatObject(_ context.Context, key string) (*ObjectInfo, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, nil
	}
	return &ObjectInfo{Size: int64(len(data))}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) PublicURL(key string) string {
	return "https://cdn.shop.test/" + key
}

func setup() (*Service, *MockRepository, *fakeStorage) {
	repo := new(MockRepository)
	store := newFakeStorage()
	return NewService(repo, store, ServiceConfig{}, nil), repo, store
}

var uploader = uuid.New()

func TestService_InitiateAndConfirm(t *testing.T) {
	ctx := context.Background()
	svc, repo, store := setup()
	repo.On("Save", ctx, mock.AnythingOfType("*media.Asset")).Return(nil)

	resp, err := svc.InitiateUpload(ctx, uploader, InitiateUploadRequest{
		FileName: "Summer Sale.PNG", ContentType: "image/png", Size: 2048, Folder: "banners", AltText: "Sale banner",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ObjectKey, "media/banners/"))
	assert.True(t, strings.HasSuffix(resp.ObjectKey, "-summer-sale.png"))
	assert.Contains(t, resp.UploadURL, resp.ObjectKey)

	asset := repo.Calls[0].Arguments.Get(1).(*media.Asset)
	assert.Equal(t, media.StatusPending, asset.Status)
	assert.Equal(t, "Sale banner", asset.AltText)
	repo.On("FindByID", ctx, asset.ID).Return(asset, nil)

	_, err = svc.ConfirmUpload(ctx, asset.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UPLOAD_NOT_FOUND", domainErr.Code)

	store.objects[asset.ObjectKey] = bytes.Repeat([]byte{1}, 1900)
	confirmed, err := svc.ConfirmUpload(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploaded", confirmed.Status)
	assert.Equal(t, int64(1900), confirmed.Size)
	assert.Equal(t, "https://cdn.shop.test/"+asset.ObjectKey, confirmed.URL)

	_, err = svc.ConfirmUpload(ctx, asset.ID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_UPLOADED", domainErr.Code)
}

func TestService_InitiateUpload_Rejects(t *testing.T) {
	ctx := context.Background()

	t.Run("content type", func(t *testing.T) {
		svc, repo, _ := setup()
		_, err := svc.InitiateUpload(ctx, uploader, InitiateUploadRequest{FileName: "x.exe", ContentType: "application/x-msdownload", Size: 10})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("size", func(t *testing.T) {
		svc, _, _ := setup()
		_, err := svc.InitiateUpload(ctx, uploader, InitiateUploadRequest{FileName: "big.mp4", ContentType: "video/mp4", Size: media.MaxFileSize + 1})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FILE_TOO_LARGE", domainErr.Code)
	})

	t.Run("presign failure removes the pending row", func(t *testing.T) {
		svc, repo, store := setup()
		store.presign = errors.New("no credentials")
		repo.On("Save", ctx, mock.AnythingOfType("*media.Asset")).Return(nil)
		repo.On("Delete", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)

		_, err := svc.InitiateUpload(ctx, uploader, InitiateUploadRequest{FileName: "a.jpg", ContentType: "image/jpeg", Size: 10})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UPLOAD_URL_FAILED", domainErr.Code)
		repo.AssertCalled(t, "Delete", ctx, mock.AnythingOfType("uuid.UUID"))
	})
}

func TestService_Upload(t *testing.T) {
	ctx := context.Background()
	svc, repo, store := setup()
	repo.On("Save", ctx, mock.AnythingOfType("*media.Asset")).Return(nil)

	resp, err := svc.Upload(ctx, uploader, UploadInput{
		FileName: "manual.pdf", ContentType: "application/pdf; charset=binary", Size: 5,
	}, strings.NewReader("%PDF-and-trailing-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploaded", resp.Status)
	assert.Equal(t, "application/pdf", resp.ContentType)
	assert.Equal(t, "%PDF-", string(store.objects[resp.ObjectKey]))
}

func TestService_DownloadURLAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo, store := setup()

	asset, err := media.NewAsset("logo.svg", "image/svg+xml", 300, "", uploader)
	require.NoError(t, err)
	repo.On("FindByID", ctx, asset.ID).Return(asset, nil)

	_, err = svc.DownloadURL(ctx, asset.ID)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UPLOAD_PENDING", domainErr.Code)

	require.NoError(t, asset.ConfirmUpload(300, "https://cdn.shop.test/x"))
	dl, err := svc.DownloadURL(ctx, asset.ID)
	require.NoError(t, err)
	assert.Contains(t, dl.URL, asset.ObjectKey)

	store.deleteErr = errors.New("boom")
	err = svc.Delete(ctx, asset.ID)
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "STORAGE_DELETE_FAILED", domainErr.Code)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)

	store.deleteErr = nil
	repo.On("Delete", ctx, asset.ID).Return(nil)
	require.NoError(t, svc.Delete(ctx, asset.ID))
	assert.Equal(t, []string{asset.ObjectKey}, store.deleted)
}

func TestService_List_DefaultsToUploaded(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := setup()

	match := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["status"] == "uploaded" && f.Filters["content_type"] == "image/" &&
			f.Filters["folder"] == "banners" && f.OrderBy == "created_at"
	})
	repo.On("FindAll", ctx, match).Return([]media.Asset{}, nil)
	repo.On("Count", ctx, match).Return(int64(0), nil)

	page, err := svc.List(ctx, AssetListFilter{ContentType: "IMAGE/", Folder: "/banners/", OrderBy: "drop table"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestService_PurgePendingUploads(t *testing.T) {
	ctx := context.Background()
	svc, repo, store := setup()
	now := time.Date(2026, 5, 2, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a, err := media.NewAsset("a.jpg", "image/jpeg", 10, "", uploader)
	require.NoError(t, err)
	b, err := media.NewAsset("b.jpg", "image/jpeg", 10, "", uploader)
	require.NoError(t, err)

	repo.On("FindStalePending", ctx, now.Add(-24*time.Hour), 200).Return([]media.Asset{*a, *b}, nil)
	repo.On("Delete", ctx, a.ID).Return(nil)
	repo.On("Delete", ctx, b.ID).Return(errors.New("locked"))

	purged, err := svc.PurgePendingUploads(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	assert.Len(t, store.deleted, 2)
}
