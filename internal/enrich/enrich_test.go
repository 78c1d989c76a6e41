package enrich

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bookscanner/internal/metadata"
	"bookscanner/internal/platform/openlibrary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockLookuper struct {
	mock.Mock
}

func (m *mockLookuper) LookupISBN(ctx context.Context, isbn string) (*openlibrary.BookDetails, bool, error) {
	args := m.Called(ctx, isbn)
	details, _ := args.Get(0).(*openlibrary.BookDetails)
	return details, args.Bool(1), args.Error(2)
}

func gatsbyDetails() *openlibrary.BookDetails {
	return &openlibrary.BookDetails{
		Title:       "The Great Gatsby",
		Publishers:  []openlibrary.Publisher{{Name: "Scribner"}, {Name: "Penguin"}},
		PublishDate: "September 30, 2004",
		Authors:     []openlibrary.Author{{URL: "/authors/OL27349A", Name: "F. Scott Fitzgerald"}},
	}
}

func TestService_Lookup_Found(t *testing.T) {
	client := new(mockLookuper)
	client.On("LookupISBN", mock.Anything, "9780743273565").Return(gatsbyDetails(), true, nil).Once()

	svc := NewService(client, nil, time.Second, zap.NewNop())
	res, err := svc.Lookup(context.Background(), "9780743273565")

	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "The Great Gatsby", res.Title)
	assert.Equal(t, "F. Scott Fitzgerald", res.Author)
	assert.Equal(t, "Scribner", res.Publisher)
	require.NotNil(t, res.Year)
	assert.Equal(t, 2004, *res.Year)
	assert.Equal(t, SourceOpenLibrary, res.Source)
	client.AssertExpectations(t)
}

func TestService_Lookup_ShortISBNSkipsClient(t *testing.T) {
	client := new(mockLookuper)

	svc := NewService(client, nil, time.Second, zap.NewNop())
	res, err := svc.Lookup(context.Background(), "978074327")

	require.NoError(t, err)
	assert.False(t, res.Found)
	client.AssertNotCalled(t, "LookupISBN", mock.Anything, mock.Anything)
}

func TestService_Lookup_NotFound(t *testing.T) {
	client := new(mockLookuper)
	client.On("LookupISBN", mock.Anything, "0000000000").Return(nil, false, nil)

	res, err := NewService(client, nil, time.Second, zap.NewNop()).Lookup(context.Background(), "0000000000")

	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestService_Lookup_Failure(t *testing.T) {
	client := new(mockLookuper)
	client.On("LookupISBN", mock.Anything, "0306406152").Return(nil, false, context.DeadlineExceeded)

	_, err := NewService(client, nil, time.Second, zap.NewNop()).Lookup(context.Background(), "0306406152")

	assert.ErrorIs(t, err, ErrLookupFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestService_Lookup_AppliesTimeout(t *testing.T) {
	client := new(mockLookuper)
	client.On("LookupISBN", mock.Anything, "0306406152").
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			_, ok := ctx.Deadline()
			assert.True(t, ok)
		}).
		Return(nil, false, nil)

	_, err := NewService(client, nil, 0, zap.NewNop()).Lookup(context.Background(), "0306406152")
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestService_Lookup_UsesCache(t *testing.T) {
	cache, err := OpenBoltCache(filepath.Join(t.TempDir(), "cache", "lookups.db"), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	client := new(mockLookuper)
	client.On("LookupISBN", mock.Anything, "9780743273565").Return(gatsbyDetails(), true, nil).Once()

	svc := NewService(client, cache, time.Second, zap.NewNop())

	first, err := svc.Lookup(context.Background(), "9780743273565")
	require.NoError(t, err)
	second, err := svc.Lookup(context.Background(), "9780743273565")
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Year, second.Year)
	client.AssertNumberOfCalls(t, "LookupISBN", 1)
}

func TestService_Lookup_FailureNotCached(t *testing.T) {
	cache, err := OpenBoltCache(filepath.Join(t.TempDir(), "lookups.db"), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	client := new(mockLookuper)
	client.On("LookupISBN", mock.Anything, "0306406152").Return(nil, false, errors.New("connection refused"))

	svc := NewService(client, cache, time.Second, zap.NewNop())
	_, err = svc.Lookup(context.Background(), "0306406152")
	require.Error(t, err)

	_, ok, err := cache.Get("0306406152")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltCache_TTL(t *testing.T) {
	cache, err := OpenBoltCache(filepath.Join(t.TempDir(), "lookups.db"), time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Put("0306406152", Result{Found: true, Title: "Cached"}))

	got, ok, err := cache.Get("0306406152")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Cached", got.Title)

	now = now.Add(2 * time.Minute)
	_, ok, err = cache.Get("0306406152")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestYearFromPublishDate(t *testing.T) {
	tests := []struct {
		in   string
		want *int
	}{
		{"2004", intPtr(2004)},
		{"May 1, 1925", intPtr(1925)},
		{"n.d.", nil},
		{"", nil},
		{"199", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, yearFromPublishDate(tt.in))
		})
	}
}

func TestApply(t *testing.T) {
	rec := metadata.Extract("THE GREAT GATSBY\nby F. Scott Fitzgerald\nISBN: 0306406152", "x.jpg")
	before := rec.Title

	t.Run("not found leaves record", func(t *testing.T) {
		out := Apply(rec, Result{Found: false, Title: "Ignored"})
		assert.Equal(t, rec, out)
	})

	t.Run("found overrides non-empty fields only", func(t *testing.T) {
		out := Apply(rec, Result{Found: true, Title: "The Great Gatsby", Year: intPtr(2004)})

		assert.Equal(t, "The Great Gatsby", out.Title)
		assert.Equal(t, rec.Author, out.Author)
		assert.Equal(t, 2004, *out.Year)
		assert.Equal(t, rec.Publisher, out.Publisher)
		assert.Equal(t, rec.Keywords, out.Keywords)
		assert.Equal(t, before, rec.Title)
	})
}

func intPtr(v int) *int { return &v }
