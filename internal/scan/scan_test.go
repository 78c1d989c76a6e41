package scan

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookscanner/internal/catalog"
	"bookscanner/internal/enrich"
	"bookscanner/internal/ocr"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const gatsbyCover = "THE GREAT GATSBY\nby F. Scott Fitzgerald\nCopyright 1925\nISBN: 9780743273565\nScribner"

type fakeEngine struct {
	text string
	err  error
}

func (f fakeEngine) Name() string { return "fake" }

func (f fakeEngine) Recognize(ctx context.Context, imagePath string) (ocr.Result, error) {
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Text: f.text, Engine: "fake"}, nil
}

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, isbn string) (enrich.Result, error) {
	args := m.Called(ctx, isbn)
	return args.Get(0).(enrich.Result), args.Error(1)
}

func newService(t *testing.T, engine ocr.Engine, lookup Lookup, store Store) *Service {
	t.Helper()
	return NewService(engine, lookup, store, Config{UploadDir: t.TempDir(), Enrich: lookup != nil}, zap.NewNop())
}

func TestProcessFile_ExtractsAndSaves(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)

	var saved *catalog.Book
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *catalog.Book) (int64, error) {
		saved = b
		return 12, nil
	})

	out := newService(t, fakeEngine{text: gatsbyCover}, nil, repo).ProcessFile(context.Background(), "/tmp/cover.jpg")

	assert.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, int64(12), out.BookID)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, "THE GREAT GATSBY", out.Record.Title)
	assert.Equal(t, "F. Scott Fitzgerald", out.Record.Author)
	assert.False(t, out.Enriched)

	require.NotNil(t, saved)
	assert.Equal(t, "cover.jpg", saved.Filename)
	assert.Equal(t, gatsbyCover, saved.OCRText)
	assert.Equal(t, "fake", saved.OCREngine)
	assert.False(t, saved.Enriched)
	assert.Contains(t, saved.Keywords, "gatsby")
}

func TestProcessFile_OCRFailureContinues(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	out := newService(t, fakeEngine{err: ocr.ErrEngineUnavailable}, nil, repo).ProcessFile(context.Background(), "cover.jpg")

	assert.Equal(t, StatusSuccess, out.Status)
	assert.ErrorIs(t, out.OCRErr, ocr.ErrEngineUnavailable)
	assert.Equal(t, "Unknown Title", out.Record.Title)
	assert.Nil(t, out.Record.Year)
	assert.Empty(t, out.Record.Keywords)
	assert.Len(t, out.Warnings, 1)
}

func TestProcessFile_BlankText(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	out := newService(t, fakeEngine{text: "  \n\t "}, nil, repo).ProcessFile(context.Background(), "cover.jpg")

	assert.NoError(t, out.OCRErr)
	assert.Equal(t, []string{ocr.ErrNoText.Error()}, out.Warnings)
}

func TestProcessFile_Enrichment(t *testing.T) {
	year := 2004

	t.Run("found overrides extracted fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := catalog.NewMockRepository(ctrl)
		var saved *catalog.Book
		repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, b *catalog.Book) (int64, error) {
			saved = b
			return 1, nil
		})

		lookup := new(mockLookup)
		lookup.On("Lookup", mock.Anything, "9780743273565").Return(enrich.Result{
			Found:     true,
			Title:     "The Great Gatsby",
			Year:      &year,
			Publisher: "Scribner",
			Source:    enrich.SourceOpenLibrary,
		}, nil)

		out := newService(t, fakeEngine{text: gatsbyCover}, lookup, repo).ProcessFile(context.Background(), "cover.jpg")

		assert.True(t, out.Enriched)
		assert.Equal(t, "The Great Gatsby", out.Record.Title)
		assert.Equal(t, "F. Scott Fitzgerald", out.Record.Author)
		assert.Equal(t, 2004, *out.Record.Year)
		require.NotNil(t, saved)
		assert.True(t, saved.Enriched)
		assert.Equal(t, enrich.SourceOpenLibrary, saved.EnrichmentSource)
		lookup.AssertExpectations(t)
	})

	t.Run("not found keeps extraction", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := catalog.NewMockRepository(ctrl)
		repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(1), nil)

		lookup := new(mockLookup)
		lookup.On("Lookup", mock.Anything, "9780743273565").Return(enrich.Result{Found: false}, nil)

		out := newService(t, fakeEngine{text: gatsbyCover}, lookup, repo).ProcessFile(context.Background(), "cover.jpg")

		assert.False(t, out.Enriched)
		assert.NoError(t, out.LookupErr)
		assert.Equal(t, 1925, *out.Record.Year)
	})

	t.Run("failure is reported not raised", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := catalog.NewMockRepository(ctrl)
		repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(1), nil)

		lookup := new(mockLookup)
		lookup.On("Lookup", mock.Anything, "9780743273565").
			Return(enrich.Result{}, enrich.ErrLookupFailed)

		out := newService(t, fakeEngine{text: gatsbyCover}, lookup, repo).ProcessFile(context.Background(), "cover.jpg")

		assert.Equal(t, StatusSuccess, out.Status)
		assert.ErrorIs(t, out.LookupErr, enrich.ErrLookupFailed)
		assert.Equal(t, "THE GREAT GATSBY", out.Record.Title)
	})

	t.Run("no isbn skips lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := catalog.NewMockRepository(ctrl)
		repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(1), nil)

		lookup := new(mockLookup)
		newService(t, fakeEngine{text: "Some Title\nby Someone"}, lookup, repo).ProcessFile(context.Background(), "cover.jpg")

		lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
	})
}

func TestProcessFile_SaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("disk full"))

	out := newService(t, fakeEngine{text: gatsbyCover}, nil, repo).ProcessFile(context.Background(), "cover.jpg")

	assert.Equal(t, StatusSuccess, out.Status)
	assert.EqualError(t, out.SaveErr, "disk full")
	assert.Zero(t, out.BookID)
	assert.Equal(t, "THE GREAT GATSBY", out.Record.Title)
}

func TestProcess_StoresUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(3), nil)

	svc := newService(t, fakeEngine{text: gatsbyCover}, nil, repo)
	out := svc.Process(context.Background(), Upload{Filename: "../../My Cover.JPG", Body: bytes.NewReader([]byte("img"))})

	require.Equal(t, StatusSuccess, out.Status)
	assert.Equal(t, "../../My Cover.JPG", out.Filename)
	assert.Equal(t, svc.cfg.UploadDir, filepath.Dir(out.StoredPath))
	assert.True(t, strings.HasSuffix(out.StoredPath, "_My_Cover.JPG"))

	content, err := os.ReadFile(out.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, "img", string(content))
}

func TestProcess_RejectsUnsupportedFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)

	out := newService(t, fakeEngine{}, nil, repo).Process(context.Background(), Upload{Filename: "notes.pdf", Body: bytes.NewReader(nil)})

	assert.Equal(t, StatusError, out.Status)
	assert.Contains(t, out.Error, ErrUnsupportedFile.Error())
}

func TestProcessBatch(t *testing.T) {
	t.Run("sequential with summary", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := catalog.NewMockRepository(ctrl)
		gomock.InOrder(
			repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(1), nil),
			repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(2), nil),
		)

		b := newService(t, fakeEngine{text: gatsbyCover}, nil, repo).ProcessBatch(context.Background(), []Upload{
			{Filename: "a.png", Body: bytes.NewReader([]byte("a"))},
			{Filename: "b.txt", Body: bytes.NewReader([]byte("b"))},
			{Filename: "c.jpeg", Body: bytes.NewReader([]byte("c"))},
		})

		assert.Equal(t, 3, b.Processed)
		assert.Equal(t, 2, b.Succeeded)
		assert.Equal(t, 1, b.Failed)
		assert.Equal(t, int64(1), b.Outcomes[0].BookID)
		assert.Equal(t, StatusError, b.Outcomes[1].Status)
		assert.Equal(t, int64(2), b.Outcomes[2].BookID)
		assert.False(t, b.FinishedAt.Before(b.StartedAt))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := catalog.NewMockRepository(ctrl)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		b := newService(t, fakeEngine{text: gatsbyCover}, nil, repo).ProcessBatch(ctx, []Upload{
			{Filename: "a.png", Body: bytes.NewReader([]byte("a"))},
		})

		assert.Equal(t, 1, b.Failed)
		assert.Contains(t, b.Outcomes[0].Error, "canceled")
	})
}

func TestProcessPaths(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(int64(1), nil)

	b := newService(t, fakeEngine{text: gatsbyCover}, nil, repo).ProcessPaths(context.Background(), []string{"covers/a.tif", "covers/readme.md"})

	assert.Equal(t, 1, b.Succeeded)
	assert.Equal(t, 1, b.Failed)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"cover.jpg", "cover.jpg"},
		{"My Cover.JPG", "My_Cover.JPG"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\photos\spine 2.png`, "C_photos_spine_2.png"},
		{"ünïcode.png", "ncode.png"},
		{"...", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestAllowedExtension(t *testing.T) {
	assert.True(t, AllowedExtension("a.JPG"))
	assert.True(t, AllowedExtension("b.webp"))
	assert.False(t, AllowedExtension("c.pdf"))
	assert.False(t, AllowedExtension("noext"))
}
