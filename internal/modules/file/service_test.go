package file

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"mediavault/internal/domain"
)

type mockFileRepo struct {
	mock.Mock
}

func (m *mockFileRepo) Create(ctx context.Context, f *domain.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *mockFileRepo) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *mockFileRepo) List(ctx context.Context) ([]domain.File, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.File), args.Error(1)
}

func (m *mockFileRepo) Update(ctx context.Context, f *domain.File) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *mockFileRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockLocalStore struct {
	mock.Mock
}

func (m *mockLocalStore) Store(stagedPath, originalName string) (*domain.LocalFileInfo, error) {
	args := m.Called(stagedPath, originalName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LocalFileInfo), args.Error(1)
}

func (m *mockLocalStore) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *mockLocalStore) ResolveURL(filename string) string {
	args := m.Called(filename)
	return args.String(0)
}

type mockMediaStore struct {
	mock.Mock
}

func (m *mockMediaStore) Upload(ctx context.Context, localPath, folder string) (*domain.RemoteFileInfo, error) {
	args := m.Called(ctx, localPath, folder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteFileInfo), args.Error(1)
}

func (m *mockMediaStore) Remove(ctx context.Context, publicID string) error {
	args := m.Called(ctx, publicID)
	return args.Error(0)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func stagedFixture(path string) StagedUpload {
	return StagedUpload{
		FieldName:    "mainFile",
		OriginalName: "photo.jpg",
		Encoding:     "7bit",
		MimeType:     "image/jpeg",
		Size:         1024,
		Path:         path,
	}
}

func TestCreateFile_Local(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	staged := stagedFixture("/tmp/staging/abc.jpg")
	local.On("Store", staged.Path, staged.OriginalName).Return(&domain.LocalFileInfo{
		Destination: "/data/uploads",
		Filename:    "f47ac10b.jpg",
		Path:        "/data/uploads/f47ac10b.jpg",
	}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.File")).Return(nil)

	f, err := service.Create(context.Background(), CreateFileInput{
		Name:    "summer-catalog",
		Backend: domain.BackendLocal,
		Main:    &staged,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.BackendLocal, f.StorageBackend)
	assert.NotNil(t, f.MainFile)
	assert.Equal(t, "f47ac10b.jpg", f.MainFile.Local.Filename)
	assert.Equal(t, int64(1024), f.MainFile.Size)
	assert.Nil(t, f.MainFile.Remote)
	assert.Empty(t, f.AdditionalFiles)
	repo.AssertExpectations(t)
	local.AssertExpectations(t)
}

func TestCreateFile_NoUploads(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	_, err := service.Create(context.Background(), CreateFileInput{
		Name:    "empty",
		Backend: domain.BackendLocal,
	})

	assert.ErrorIs(t, err, ErrNoFiles)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	local.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestCreateFile_NameValidation(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	staged := stagedFixture("/tmp/staging/abc.jpg")
	local.On("Remove", staged.Path).Return(nil)

	_, err := service.Create(context.Background(), CreateFileInput{
		Name:    "",
		Backend: domain.BackendLocal,
		Main:    &staged,
	})
	assert.ErrorIs(t, err, ErrNameRequired)

	long := make([]byte, domain.MaxFileNameLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = service.Create(context.Background(), CreateFileInput{
		Name:    string(long),
		Backend: domain.BackendLocal,
		Main:    &staged,
	})
	assert.ErrorIs(t, err, ErrNameTooLong)

	// staging files are discarded on both rejections
	local.AssertNumberOfCalls(t, "Remove", 2)
}

func TestCreateFile_RemoteWithoutMediaStore(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	staged := stagedFixture("/tmp/staging/abc.jpg")
	local.On("Remove", staged.Path).Return(nil)

	_, err := service.Create(context.Background(), CreateFileInput{
		Name:    "remote-only",
		Backend: domain.BackendRemote,
		Main:    &staged,
	})

	assert.ErrorIs(t, err, ErrRemoteUnavailable)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateFile_RemoteRollbackOnPartialFailure(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	media := new(mockMediaStore)
	service := NewService(repo, local, media, testLogger())

	main := stagedFixture("/tmp/staging/main.jpg")
	extra := StagedUpload{
		FieldName:    "additionalFiles",
		OriginalName: "extra.png",
		MimeType:     "image/png",
		Size:         2048,
		Path:         "/tmp/staging/extra.png",
	}

	media.On("Upload", mock.Anything, main.Path, "gallery/main").Return(&domain.RemoteFileInfo{
		PublicID:  "gallery/main/abc.jpg",
		SecureURL: "https://media.example.com/bucket/gallery/main/abc.jpg",
	}, nil)
	media.On("Upload", mock.Anything, extra.Path, "gallery/additional").
		Return(nil, errors.New("connection reset"))

	// rollback of the object that did make it up
	media.On("Remove", mock.Anything, "gallery/main/abc.jpg").Return(nil)
	// staging cleanup: consumed main path plus the remaining extra
	local.On("Remove", mock.Anything).Return(nil)

	_, err := service.Create(context.Background(), CreateFileInput{
		Name:       "gallery",
		Backend:    domain.BackendRemote,
		Main:       &main,
		Additional: []StagedUpload{extra},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	media.AssertCalled(t, "Remove", mock.Anything, "gallery/main/abc.jpg")
}

func TestGetFile_NotFound(t *testing.T) {
	repo := new(mockFileRepo)
	service := NewService(repo, new(mockLocalStore), nil, testLogger())

	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := service.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func localRecord(id int64) *domain.File {
	return &domain.File{
		ID:             id,
		Name:           "catalog",
		StorageBackend: domain.BackendLocal,
		MainFile: &domain.Attachment{
			FieldName:    "mainFile",
			OriginalName: "cover.jpg",
			MimeType:     "image/jpeg",
			Size:         1024,
			Local: &domain.LocalFileInfo{
				Filename: "cover-1.jpg",
				Path:     "/data/uploads/cover-1.jpg",
			},
		},
		AdditionalFiles: []domain.Attachment{
			{
				FieldName:    "additionalFiles",
				OriginalName: "page1.jpg",
				MimeType:     "image/jpeg",
				Size:         512,
				Local: &domain.LocalFileInfo{
					Filename: "page1-1.jpg",
					Path:     "/data/uploads/page1-1.jpg",
				},
			},
			{
				FieldName:    "additionalFiles",
				OriginalName: "page2.jpg",
				MimeType:     "image/jpeg",
				Size:         512,
				Local: &domain.LocalFileInfo{
					Filename: "page2-1.jpg",
					Path:     "/data/uploads/page2-1.jpg",
				},
			},
		},
	}
}

func TestUpdateFile_NameOnly(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	repo.On("GetByID", mock.Anything, int64(1)).Return(localRecord(1), nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.File")).Return(nil)

	f, err := service.Update(context.Background(), 1, UpdateFileInput{Name: "renamed"})

	assert.NoError(t, err)
	assert.Equal(t, "renamed", f.Name)
	assert.Equal(t, "cover-1.jpg", f.MainFile.Local.Filename)
	assert.Len(t, f.AdditionalFiles, 2)
	local.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	local.AssertNotCalled(t, "Remove", mock.Anything)
}

func TestUpdateFile_ReplaceMain(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	repo.On("GetByID", mock.Anything, int64(1)).Return(localRecord(1), nil)
	local.On("Remove", "/data/uploads/cover-1.jpg").Return(nil)

	staged := stagedFixture("/tmp/staging/new-cover.jpg")
	local.On("Store", staged.Path, staged.OriginalName).Return(&domain.LocalFileInfo{
		Filename: "new-cover-1.jpg",
		Path:     "/data/uploads/new-cover-1.jpg",
	}, nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.File")).Return(nil)

	f, err := service.Update(context.Background(), 1, UpdateFileInput{Main: &staged})

	assert.NoError(t, err)
	assert.Equal(t, "new-cover-1.jpg", f.MainFile.Local.Filename)
	assert.Len(t, f.AdditionalFiles, 2)
	local.AssertExpectations(t)
}

func TestUpdateFile_ReplaceAdditionalRollsBackOnFailure(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	repo.On("GetByID", mock.Anything, int64(1)).Return(localRecord(1), nil)

	first := StagedUpload{OriginalName: "a.jpg", Path: "/tmp/staging/a.jpg", Size: 10}
	second := StagedUpload{OriginalName: "b.jpg", Path: "/tmp/staging/b.jpg", Size: 10}

	local.On("Remove", mock.Anything).Return(nil)
	local.On("Store", first.Path, first.OriginalName).Return(&domain.LocalFileInfo{
		Filename: "a-1.jpg",
		Path:     "/data/uploads/a-1.jpg",
	}, nil)
	local.On("Store", second.Path, second.OriginalName).Return(nil, errors.New("disk full"))

	_, err := service.Update(context.Background(), 1, UpdateFileInput{
		Additional: []StagedUpload{first, second},
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	// the attachment stored before the failure is rolled back
	local.AssertCalled(t, "Remove", "/data/uploads/a-1.jpg")
}

func TestDeleteFile_MissingBytesDoNotBlock(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	service := NewService(repo, local, nil, testLogger())

	repo.On("GetByID", mock.Anything, int64(1)).Return(localRecord(1), nil)
	local.On("Remove", "/data/uploads/cover-1.jpg").Return(errors.New("permission denied"))
	local.On("Remove", "/data/uploads/page1-1.jpg").Return(nil)
	local.On("Remove", "/data/uploads/page2-1.jpg").Return(nil)
	repo.On("Delete", mock.Anything, int64(1)).Return(nil)

	err := service.Delete(context.Background(), 1)

	assert.NoError(t, err)
	repo.AssertCalled(t, "Delete", mock.Anything, int64(1))
	local.AssertExpectations(t)
}

func TestMigrateFile_LocalToRemote(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	media := new(mockMediaStore)
	service := NewService(repo, local, media, testLogger())

	repo.On("GetByID", mock.Anything, int64(1)).Return(localRecord(1), nil)

	media.On("Upload", mock.Anything, "/data/uploads/cover-1.jpg", "catalog/main").Return(&domain.RemoteFileInfo{
		PublicID:  "catalog/main/x.jpg",
		SecureURL: "https://media.example.com/bucket/catalog/main/x.jpg",
	}, nil)
	media.On("Upload", mock.Anything, "/data/uploads/page1-1.jpg", "catalog/additional").Return(&domain.RemoteFileInfo{
		PublicID:  "catalog/additional/y.jpg",
		SecureURL: "https://media.example.com/bucket/catalog/additional/y.jpg",
	}, nil)
	media.On("Upload", mock.Anything, "/data/uploads/page2-1.jpg", "catalog/additional").Return(&domain.RemoteFileInfo{
		PublicID:  "catalog/additional/z.jpg",
		SecureURL: "https://media.example.com/bucket/catalog/additional/z.jpg",
	}, nil)

	local.On("Remove", mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.AnythingOfType("*domain.File")).Return(nil)

	f, err := service.Migrate(context.Background(), 1, domain.BackendRemote)

	assert.NoError(t, err)
	assert.Equal(t, domain.BackendRemote, f.StorageBackend)
	assert.Nil(t, f.MainFile.Local)
	assert.Equal(t, "catalog/main/x.jpg", f.MainFile.Remote.PublicID)
	assert.Len(t, f.AdditionalFiles, 2)
	for _, att := range f.AdditionalFiles {
		assert.Nil(t, att.Local)
		assert.NotNil(t, att.Remote)
	}
	// original sizes and names carry over
	assert.Equal(t, "cover.jpg", f.MainFile.OriginalName)
	assert.Equal(t, int64(1024), f.MainFile.Size)
	local.AssertCalled(t, "Remove", "/data/uploads/cover-1.jpg")
	repo.AssertExpectations(t)
}

func TestMigrateFile_PartialUploadFailureLeavesRecordUntouched(t *testing.T) {
	repo := new(mockFileRepo)
	local := new(mockLocalStore)
	media := new(mockMediaStore)
	service := NewService(repo, local, media, testLogger())

	repo.On("GetByID", mock.Anything, int64(1)).Return(localRecord(1), nil)

	media.On("Upload", mock.Anything, "/data/uploads/cover-1.jpg", "catalog/main").Return(&domain.RemoteFileInfo{
		PublicID: "catalog/main/x.jpg",
	}, nil)
	media.On("Upload", mock.Anything, "/data/uploads/page1-1.jpg", "catalog/additional").Return(&domain.RemoteFileInfo{
		PublicID: "catalog/additional/y.jpg",
	}, nil)
	media.On("Upload", mock.Anything, "/data/uploads/page2-1.jpg", "catalog/additional").
		Return(nil, errors.New("timeout"))

	media.On("Remove", mock.Anything, "catalog/main/x.jpg").Return(nil)
	media.On("Remove", mock.Anything, "catalog/additional/y.jpg").Return(nil)

	_, err := service.Migrate(context.Background(), 1, domain.BackendRemote)

	assert.ErrorIs(t, err, ErrMigration)
	assert.Contains(t, err.Error(), "timeout")
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	local.AssertNotCalled(t, "Remove", mock.Anything)
	media.AssertCalled(t, "Remove", mock.Anything, "catalog/main/x.jpg")
	media.AssertCalled(t, "Remove", mock.Anything, "catalog/additional/y.jpg")
}

func TestMigrateFile_RemoteToLocalNotImplemented(t *testing.T) {
	repo := new(mockFileRepo)
	media := new(mockMediaStore)
	service := NewService(repo, new(mockLocalStore), media, testLogger())

	remote := &domain.File{
		ID:             2,
		Name:           "remote-record",
		StorageBackend: domain.BackendRemote,
		MainFile: &domain.Attachment{
			OriginalName: "cover.jpg",
			Remote:       &domain.RemoteFileInfo{PublicID: "remote-record/main/a.jpg"},
		},
	}
	repo.On("GetByID", mock.Anything, int64(2)).Return(remote, nil)

	_, err := service.Migrate(context.Background(), 2, domain.BackendLocal)

	assert.ErrorIs(t, err, ErrNotImplemented)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestMigrateFile_SameBackendIsNoOp(t *testing.T) {
	repo := new(mockFileRepo)
	media := new(mockMediaStore)
	service := NewService(repo, new(mockLocalStore), media, testLogger())

	repo.On("GetByID", mock.Anything, int64(1)).Return(localRecord(1), nil)

	f, err := service.Migrate(context.Background(), 1, domain.BackendLocal)

	assert.NoError(t, err)
	assert.Equal(t, domain.BackendLocal, f.StorageBackend)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	media.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestMigrateFile_InvalidTarget(t *testing.T) {
	repo := new(mockFileRepo)
	service := NewService(repo, new(mockLocalStore), nil, testLogger())

	_, err := service.Migrate(context.Background(), 1, domain.StorageBackend("tape"))

	assert.ErrorIs(t, err, ErrInvalidBackend)
	repo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
