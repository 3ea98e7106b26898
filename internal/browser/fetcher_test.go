package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession serves a listing with a fixed number of pages
type fakeSession struct {
	pages       int
	current     int
	url         string
	navigateErr error
	advanceErr  error
	contentErr  map[int]error
	onAdvance   func(page int)
	closed      bool
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	if s.navigateErr != nil {
		return s.navigateErr
	}
	s.url = url
	s.current = 1
	return nil
}

func (s *fakeSession) Content() (string, error) {
	if err := s.contentErr[s.current]; err != nil {
		return "", err
	}
	return fmt.Sprintf("<html><body>page %d</body></html>", s.current), nil
}

func (s *fakeSession) URL() string { return s.url }

func (s *fakeSession) AdvanceTo(ctx context.Context, page int) error {
	if s.onAdvance != nil {
		s.onAdvance(page)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.advanceErr != nil {
		return s.advanceErr
	}
	if page > s.pages {
		return ErrNoMorePages
	}
	s.current = page
	return nil
}

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

type fakeLauncher struct {
	session  *fakeSession
	err      error
	launches int
}

func (l *fakeLauncher) Launch(ctx context.Context) (Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

func TestFetchPaginated(t *testing.T) {
	tests := []struct {
		name      string
		pages     int
		maxPages  int
		wantPages int
	}{
		{name: "single page listing", pages: 1, wantPages: 1},
		{name: "three pages", pages: 3, wantPages: 3},
		{name: "page cap", pages: 10, maxPages: 4, wantPages: 4},
		{name: "cap above listing size", pages: 2, maxPages: 5, wantPages: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{pages: tt.pages}
			f := NewFetcher(&fakeLauncher{session: session}, FetchConfig{MaxPages: tt.maxPages}, zerolog.Nop())

			docs, err := f.Fetch(context.Background(), FetchRequest{URL: "https://boards.greenhouse.io/acme", Paginate: true})
			require.NoError(t, err)
			require.Len(t, docs, tt.wantPages)
			for i, doc := range docs {
				assert.Equal(t, i+1, doc.Page)
				assert.Contains(t, doc.HTML, fmt.Sprintf("page %d", i+1))
				assert.Equal(t, "https://boards.greenhouse.io/acme", doc.URL)
				assert.False(t, doc.FetchedAt.IsZero())
			}
			assert.True(t, session.closed)
		})
	}
}

func TestFetchSinglePageIgnoresPagination(t *testing.T) {
	session := &fakeSession{pages: 5}
	f := NewFetcher(&fakeLauncher{session: session}, FetchConfig{}, zerolog.Nop())

	docs, err := f.Fetch(context.Background(), FetchRequest{URL: "https://boards.greenhouse.io/acme/jobs/1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].Page)
	assert.True(t, session.closed)
}

func TestFetchInitialNavigationFails(t *testing.T) {
	cause := fmt.Errorf("%w: goto", ErrNavigationTimeout)
	session := &fakeSession{navigateErr: cause}
	f := NewFetcher(&fakeLauncher{session: session}, FetchConfig{}, zerolog.Nop())

	docs, err := f.Fetch(context.Background(), FetchRequest{URL: "https://boards.greenhouse.io/acme", Paginate: true})
	require.Error(t, err)
	assert.Nil(t, docs)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "https://boards.greenhouse.io/acme", fetchErr.URL)
	assert.ErrorIs(t, err, ErrNavigationTimeout)
	assert.True(t, session.closed, "session must be closed on failure")
}

func TestFetchInitialContentFails(t *testing.T) {
	session := &fakeSession{pages: 3, contentErr: map[int]error{1: errors.New("target closed")}}
	f := NewFetcher(&fakeLauncher{session: session}, FetchConfig{}, zerolog.Nop())

	_, err := f.Fetch(context.Background(), FetchRequest{URL: "https://boards.greenhouse.io/acme", Paginate: true})
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, session.closed)
}

func TestFetchLaunchFails(t *testing.T) {
	f := NewFetcher(&fakeLauncher{err: errors.New("no chromium")}, FetchConfig{}, zerolog.Nop())

	_, err := f.Fetch(context.Background(), FetchRequest{URL: "https://boards.greenhouse.io/acme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launch browser")
}

func TestFetchAdvanceErrorEndsPagination(t *testing.T) {
	session := &fakeSession{pages: 3, advanceErr: errors.New("element is not visible")}
	f := NewFetcher(&fakeLauncher{session: session}, FetchConfig{}, zerolog.Nop())

	docs, err := f.Fetch(context.Background(), FetchRequest{URL: "https://boards.greenhouse.io/acme", Paginate: true})
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestFetchLaterContentErrorEndsPagination(t *testing.T) {
	session := &fakeSession{pages: 4, contentErr: map[int]error{3: errors.New("detached")}}
	f := NewFetcher(&fakeLauncher{session: session}, FetchConfig{}, zerolog.Nop())

	docs, err := f.Fetch(context.Background(), FetchRequest{URL: "https://boards.greenhouse.io/acme", Paginate: true})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestFetchCancelledDuringPagination(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := &fakeSession{pages: 5}
	session.onAdvance = func(page int) {
		if page == 3 {
			cancel()
		}
	}
	f := NewFetcher(&fakeLauncher{session: session}, FetchConfig{}, zerolog.Nop())

	docs, err := f.Fetch(ctx, FetchRequest{URL: "https://boards.greenhouse.io/acme", Paginate: true})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, docs)
	assert.True(t, session.closed)
}

func TestFetchCancelledBeforeLaunch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	launcher := &fakeLauncher{session: &fakeSession{pages: 1}}
	f := NewFetcher(launcher, FetchConfig{}, zerolog.Nop())

	_, err := f.Fetch(ctx, FetchRequest{URL: "https://boards.greenhouse.io/acme"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, launcher.launches)
}
