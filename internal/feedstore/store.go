// Package feedstore keeps the client-side copy of the explore and following
// feeds, with time-based validity and optimistic post/comment creation.
package feedstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"backend-bandoxanh/internal/feed"
	"backend-bandoxanh/internal/logging"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 30 * time.Second

type Tab string

const (
	Explore   Tab = "explore"
	Following Tab = "following"
)

func (t Tab) Valid() bool {
	return t == Explore || t == Following
}

var (
	ErrCreatePost    = errors.New("could not publish the post, please try again")
	ErrCreateComment = errors.New("could not add the comment, please try again")
	ErrUnknownTab    = errors.New("unknown feed tab")
)

// API is the remote feed. internal/client.Client satisfies it.
type API interface {
	ListPosts(ctx context.Context, tab Tab) ([]feed.Post, error)
	CreatePost(ctx context.Context, input feed.PostInput) (feed.Post, error)
	UpdatePost(ctx context.Context, id string, input feed.PostInput) (feed.Post, error)
	DeletePost(ctx context.Context, id string) error
	LikePost(ctx context.Context, id string) (feed.LikeResult, error)
	CreateComment(ctx context.Context, postID string, input feed.CommentInput) (feed.Comment, error)
	UpdateComment(ctx context.Context, postID, commentID string, input feed.CommentInput) (feed.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID string) error
}

// TabState is one tab's cached slice.
type TabState struct {
	Posts         []feed.Post
	Loading       bool
	LastFetchedAt time.Time
}

func (t TabState) fetched() bool {
	return !t.LastFetchedAt.IsZero()
}

type Store struct {
	api    API
	ttl    time.Duration
	now    func() time.Time
	tempID func() string
	logger *zap.Logger

	group singleflight.Group
	seq   atomic.Uint64

	mu     sync.RWMutex
	tabs   map[Tab]*TabState
	active Tab
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithTempID overrides the generator for optimistic ids.
func WithTempID(gen func() string) Option {
	return func(s *Store) { s.tempID = gen }
}

// New builds the store. Create one per application and share it.
func New(api API, opts ...Option) *Store {
	s := &Store{
		api:    api,
		ttl:    DefaultTTL,
		now:    time.Now,
		active: Explore,
		tabs: map[Tab]*TabState{
			Explore:   {Posts: []feed.Post{}},
			Following: {Posts: []feed.Post{}},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tempID == nil {
		s.tempID = func() string {
			return fmt.Sprintf("temp-%d-%d", s.now().UnixMilli(), s.seq.Add(1))
		}
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

func (s *Store) SetActiveTab(tab Tab) error {
	if !tab.Valid() {
		return ErrUnknownTab
	}
	s.mu.Lock()
	s.active = tab
	s.mu.Unlock()
	return nil
}

func (s *Store) ActiveTab() Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Valid reports whether tab was fetched less than the TTL ago.
func (s *Store) Valid(tab Tab) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.validLocked(tab)
}

func (s *Store) validLocked(tab Tab) bool {
	st, ok := s.tabs[tab]
	if !ok || !st.fetched() {
		return false
	}
	return s.now().Sub(st.LastFetchedAt) < s.ttl
}

func (s *Store) Posts(tab Tab) []feed.Post {
	return s.State(tab).Posts
}

// State returns a deep copy of tab's slice.
func (s *Store) State(tab Tab) TabState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.tabs[tab]
	if !ok {
		return TabState{Posts: []feed.Post{}}
	}
	return TabState{
		Posts:         clonePosts(st.Posts),
		Loading:       st.Loading,
		LastFetchedAt: st.LastFetchedAt,
	}
}

// Fetch loads tab from the API unless the cached slice is still valid.
// Concurrent fetches of one tab share a single request. The shared request
// is detached from any one caller's cancellation: a caller whose ctx ends
// returns ctx.Err() while the others still receive the result.
func (s *Store) Fetch(ctx context.Context, tab Tab, force bool) error {
	if !tab.Valid() {
		return ErrUnknownTab
	}

	s.mu.Lock()
	if !force && s.validLocked(tab) {
		s.mu.Unlock()
		return nil
	}
	s.tabs[tab].Loading = true
	s.mu.Unlock()

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(string(tab), func() (any, error) {
		return nil, s.load(shared, tab)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return errors.Wrapf(res.Err, "fetch %s feed", tab)
		}
		return nil
	case <-ctx.Done():
		return errors.Wrapf(ctx.Err(), "fetch %s feed", tab)
	}
}

// load runs one request and stores its result, whether or not the callers
// that started it are still waiting.
func (s *Store) load(ctx context.Context, tab Tab) error {
	posts, err := s.api.ListPosts(ctx, tab)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.tabs[tab]
	st.Loading = false
	if err != nil {
		s.logger.Warn("feed fetch failed", zap.String("tab", string(tab)), zap.Error(err))
		return err
	}
	st.Posts = clonePosts(posts)
	st.LastFetchedAt = s.now()
	return nil
}

// AddPostOptimistic shows the post at the head of the active tab right away
// and swaps in the server record once it exists. On failure the temporary
// entry is removed and ErrCreatePost returned.
func (s *Store) AddPostOptimistic(ctx context.Context, input feed.PostInput, author feed.Author) (feed.Post, error) {
	s.mu.Lock()
	tab := s.active
	temp := feed.Post{
		ID:        s.tempID(),
		Content:   input.Content,
		Images:    append(feed.Images{}, input.Images...),
		CreatedAt: s.now(),
		Author:    author,
		Comments:  []feed.Comment{},
	}
	st := s.tabs[tab]
	st.Posts = append([]feed.Post{clonePost(temp)}, st.Posts...)
	s.mu.Unlock()

	created, err := s.api.CreatePost(ctx, input)

	s.mu.Lock()
	defer s.mu.Unlock()
	st = s.tabs[tab]
	idx := indexOfPost(st.Posts, temp.ID)

	if err != nil {
		if idx >= 0 {
			st.Posts = removePost(st.Posts, idx)
		}
		s.logger.Warn("create post failed", zap.String("tab", string(tab)), zap.Error(err))
		return feed.Post{}, ErrCreatePost
	}

	switch {
	case idx >= 0:
		st.Posts[idx] = clonePost(created)
	case indexOfPost(st.Posts, created.ID) < 0:
		// a refresh replaced the list while the request was in flight
		st.Posts = append([]feed.Post{clonePost(created)}, st.Posts...)
	}
	return clonePost(created), nil
}

// AddCommentOptimistic appends a temporary comment to postID in the active
// tab. A failed request triggers a forced refresh of that tab and returns
// ErrCreateComment.
func (s *Store) AddCommentOptimistic(ctx context.Context, postID, content string, author feed.Author) (feed.Comment, error) {
	s.mu.Lock()
	tab := s.active
	temp := feed.Comment{
		ID:        s.tempID(),
		PostID:    postID,
		Content:   content,
		CreatedAt: s.now(),
		Author:    author,
	}
	st := s.tabs[tab]
	if i := indexOfPost(st.Posts, postID); i >= 0 {
		p := &st.Posts[i]
		p.Comments = append(p.Comments, temp)
		p.CommentsCount++
	}
	s.mu.Unlock()

	created, err := s.api.CreateComment(ctx, postID, feed.CommentInput{Content: content})
	if err != nil {
		s.logger.Warn("create comment failed, refreshing feed",
			zap.String("tab", string(tab)), zap.String("post_id", postID), zap.Error(err))
		if ferr := s.Fetch(ctx, tab, true); ferr != nil {
			s.logger.Warn("refresh after comment failure failed", zap.Error(ferr))
		}
		return feed.Comment{}, ErrCreateComment
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchPost(s.tabs[tab], postID, func(p *feed.Post) {
		if j := indexOfComment(p.Comments, temp.ID); j >= 0 {
			p.Comments[j] = created
		}
	})
	return created, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, input feed.PostInput) (feed.Post, error) {
	updated, err := s.api.UpdatePost(ctx, id, input)
	if err != nil {
		return feed.Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchPost(s.tabs[s.active], id, func(p *feed.Post) {
		*p = clonePost(updated)
	})
	return clonePost(updated), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := s.api.DeletePost(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.tabs[s.active]
	if i := indexOfPost(st.Posts, id); i >= 0 {
		st.Posts = removePost(st.Posts, i)
	}
	return nil
}

// ToggleLike flips the caller's like on id and stores the new count.
func (s *Store) ToggleLike(ctx context.Context, id string) (feed.LikeResult, error) {
	res, err := s.api.LikePost(ctx, id)
	if err != nil {
		return feed.LikeResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchPost(s.tabs[s.active], id, func(p *feed.Post) {
		p.LikesCount = res.LikesCount
	})
	return res, nil
}

func (s *Store) UpdateComment(ctx context.Context, postID, commentID, content string) (feed.Comment, error) {
	updated, err := s.api.UpdateComment(ctx, postID, commentID, feed.CommentInput{Content: content})
	if err != nil {
		return feed.Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchPost(s.tabs[s.active], postID, func(p *feed.Post) {
		if j := indexOfComment(p.Comments, commentID); j >= 0 {
			p.Comments[j] = updated
		}
	})
	return updated, nil
}

func (s *Store) DeleteComment(ctx context.Context, postID, commentID string) error {
	if err := s.api.DeleteComment(ctx, postID, commentID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patchPost(s.tabs[s.active], postID, func(p *feed.Post) {
		if j := indexOfComment(p.Comments, commentID); j >= 0 {
			p.Comments = append(p.Comments[:j:j], p.Comments[j+1:]...)
			if p.CommentsCount > 0 {
				p.CommentsCount--
			}
		}
	})
	return nil
}

// patchPost must be called with s.mu held.
func (s *Store) patchPost(st *TabState, id string, fn func(*feed.Post)) {
	if i := indexOfPost(st.Posts, id); i >= 0 {
		fn(&st.Posts[i])
	}
}
