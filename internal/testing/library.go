package testing

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/desertthunder/likeswap/internal/services"
	"golang.org/x/oauth2"
)

// FakeLibrary is an in-memory [services.Library].
//
// Pages are sliced from Top and Saved. SaveTracks prepends to Saved and RemoveSavedTracks deletes from it,
// so a replace run can be observed end to end.
type FakeLibrary struct {
	mu sync.Mutex

	Top   []services.SpotifyTrack
	Saved []services.SpotifySavedTrack

	// AlwaysNext advertises a next page on every response, including the last one.
	AlwaysNext bool

	// TopErrAt and SavedErrAt fail the page request at the given offset.
	TopErrAt   map[int]error
	SavedErrAt map[int]error

	// SaveErrAt and RemoveErrAt fail the nth (1-based) mutation call.
	SaveErrAt   map[int]error
	RemoveErrAt map[int]error

	// OnTopPage runs before each top-tracks page is served.
	OnTopPage func(offset int)

	TopRequests   []int // offsets requested
	SavedRequests []int
	Saves         [][]string
	Removes       [][]string
}

func (f *FakeLibrary) TopTracks(ctx context.Context, timeRange services.TimeRange, limit, offset int) (*services.TrackPage, error) {
	if f.OnTopPage != nil {
		f.OnTopPage(offset)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.TopRequests = append(f.TopRequests, offset)
	if err := f.TopErrAt[offset]; err != nil {
		return nil, err
	}

	lo, hi := window(len(f.Top), limit, offset)
	return &services.TrackPage{
		Items:  slices.Clone(f.Top[lo:hi]),
		Total:  len(f.Top),
		Limit:  limit,
		Offset: offset,
		Next:   f.next(hi, len(f.Top)),
	}, nil
}

func (f *FakeLibrary) SavedTracks(ctx context.Context, limit, offset int) (*services.SavedTrackPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SavedRequests = append(f.SavedRequests, offset)
	if err := f.SavedErrAt[offset]; err != nil {
		return nil, err
	}

	lo, hi := window(len(f.Saved), limit, offset)
	return &services.SavedTrackPage{
		Items:  slices.Clone(f.Saved[lo:hi]),
		Total:  len(f.Saved),
		Limit:  limit,
		Offset: offset,
		Next:   f.next(hi, len(f.Saved)),
	}, nil
}

func (f *FakeLibrary) SaveTracks(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Saves = append(f.Saves, slices.Clone(ids))
	if err := f.SaveErrAt[len(f.Saves)]; err != nil {
		return err
	}

	added := make([]services.SpotifySavedTrack, 0, len(ids))
	for _, id := range ids {
		added = append(added, services.SpotifySavedTrack{
			AddedAt: time.Now().UTC().Format(time.RFC3339),
			Track:   &services.SpotifyTrack{ID: id, Name: id},
		})
	}
	f.Saved = append(added, f.Saved...)
	return nil
}

func (f *FakeLibrary) RemoveSavedTracks(ctx context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Removes = append(f.Removes, slices.Clone(ids))
	if err := f.RemoveErrAt[len(f.Removes)]; err != nil {
		return err
	}

	f.Saved = slices.DeleteFunc(f.Saved, func(s services.SpotifySavedTrack) bool {
		return s.Track != nil && slices.Contains(ids, s.Track.ID)
	})
	return nil
}

// SavedIDs returns the ids currently in Saved, skipping null entries.
func (f *FakeLibrary) SavedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ids []string
	for _, s := range f.Saved {
		if s.Track != nil {
			ids = append(ids, s.Track.ID)
		}
	}
	return ids
}

// MutationCount is the number of SaveTracks and RemoveSavedTracks calls.
func (f *FakeLibrary) MutationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Saves) + len(f.Removes)
}

func (f *FakeLibrary) next(hi, total int) *string {
	if f.AlwaysNext || hi < total {
		u := fmt.Sprintf("https://api.example/next?offset=%d", hi)
		return &u
	}
	return nil
}

func window(n, limit, offset int) (int, int) {
	lo := min(offset, n)
	return lo, min(lo+limit, n)
}

// MakeTracks returns n tracks with ids prefix-1 .. prefix-n.
func MakeTracks(prefix string, n int) []services.SpotifyTrack {
	tracks := make([]services.SpotifyTrack, 0, n)
	for i := 1; i <= n; i++ {
		tracks = append(tracks, services.SpotifyTrack{
			ID:         fmt.Sprintf("%s-%d", prefix, i),
			Name:       fmt.Sprintf("%s song %d", prefix, i),
			Artists:    []services.SpotifyArtist{{Name: "Artist " + prefix}},
			Popularity: 100 - i%100,
		})
	}
	return tracks
}

// MakeSaved wraps tracks as liked songs.
func MakeSaved(tracks []services.SpotifyTrack) []services.SpotifySavedTrack {
	saved := make([]services.SpotifySavedTrack, 0, len(tracks))
	for i := range tracks {
		saved = append(saved, services.SpotifySavedTrack{
			AddedAt: "2024-01-01T00:00:00Z",
			Track:   &tracks[i],
		})
	}
	return saved
}

// RecordingWaiter records every requested delay and returns immediately.
type RecordingWaiter struct {
	mu    sync.Mutex
	Waits []time.Duration
}

func (w *RecordingWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.Waits = append(w.Waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

// Count returns how many waits of duration d were requested.
func (w *RecordingWaiter) Count(d time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for _, got := range w.Waits {
		if got == d {
			n++
		}
	}
	return n
}

// FakeOAuthProvider is a [services.OAuthProvider] with canned results.
type FakeOAuthProvider struct {
	mu sync.Mutex

	Token       *oauth2.Token
	ExchangeErr error
	User        *services.SpotifyUser
	ProfileErr  error

	Codes []string // codes passed to Exchange
}

func (p *FakeOAuthProvider) GetAuthURL(state string) string {
	return "https://accounts.example/authorize?state=" + url.QueryEscape(state)
}

func (p *FakeOAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Codes = append(p.Codes, code)
	if p.ExchangeErr != nil {
		return nil, p.ExchangeErr
	}
	return p.Token, nil
}

func (p *FakeOAuthProvider) Profile(ctx context.Context, token *oauth2.Token) (*services.SpotifyUser, error) {
	if p.ProfileErr != nil {
		return nil, p.ProfileErr
	}
	return p.User, nil
}

// ExchangeCount is the number of Exchange calls.
func (p *FakeOAuthProvider) ExchangeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Codes)
}
