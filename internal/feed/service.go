package feed

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"backend-bandoxanh/internal/db"
	"backend-bandoxanh/internal/logging"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("only the author can change this")
)

const exploreCacheKey = "feed:explore"

// Cache is the explore-list cache. internal/cache.Redis satisfies it.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Publisher fans feed events out to websocket subscribers.
type Publisher interface {
	Broadcast(topic string, payload []byte)
}

type Service struct {
	db       db.Querier
	cache    Cache
	cacheTTL time.Duration
	events   Publisher
	logger   *zap.Logger

	// bumped on every mutation; Explore skips the cache write when it moved
	generation atomic.Uint64
}

type Option func(*Service)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(db db.Querier, opts ...Option) *Service {
	s := &Service{db: db}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.OrNop(s.logger)
	return s
}

const postColumns = `
	SELECT p.id, p.content, COALESCE(p.images, ''), p.created_at,
	       u.id, COALESCE(NULLIF(u.full_name, ''), u.username), u.email, COALESCE(u.avatar_url, ''),
	       (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id)
	FROM posts p
	JOIN users u ON u.id = p.user_id
`

// Explore returns every post, newest first.
func (s *Service) Explore(ctx context.Context) ([]Post, error) {
	gen := s.generation.Load()
	if s.cache != nil {
		var cached []Post
		ok, err := s.cache.Get(ctx, exploreCacheKey, &cached)
		if err != nil {
			s.logger.Warn("explore cache read failed", zap.Error(err))
		}
		if ok {
			return cached, nil
		}
	}

	posts, err := s.queryPosts(ctx, postColumns+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && s.generation.Load() == gen {
		if err := s.cache.Set(ctx, exploreCacheKey, posts, s.cacheTTL); err != nil {
			s.logger.Warn("explore cache write failed", zap.Error(err))
		}
	}
	return posts, nil
}

// Following returns posts by authors userID follows, newest first.
func (s *Service) Following(ctx context.Context, userID string) ([]Post, error) {
	return s.queryPosts(ctx, postColumns+`
		WHERE p.user_id IN (SELECT following_id FROM user_follows WHERE follower_id=$1)
		ORDER BY p.created_at DESC
	`, userID)
}

func (s *Service) Post(ctx context.Context, id string) (Post, error) {
	posts, err := s.queryPosts(ctx, postColumns+` WHERE p.id=$1`, id)
	if err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, ErrNotFound
	}
	return posts[0], nil
}

func (s *Service) CreatePost(ctx context.Context, userID string, input PostInput) (Post, error) {
	post := Post{
		ID:       uuid.NewString(),
		Content:  input.Content,
		Images:   input.Images,
		Comments: []Comment{},
	}
	if post.Images == nil {
		post.Images = Images{}
	}

	row := s.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO posts (id, user_id, content, images)
			VALUES ($1,$2,$3,$4)
			RETURNING user_id, created_at
		)
		SELECT i.created_at, u.id, COALESCE(NULLIF(u.full_name, ''), u.username), u.email, COALESCE(u.avatar_url, '')
		FROM inserted i JOIN users u ON u.id = i.user_id
	`, post.ID, userID, post.Content, post.Images.String())
	if err := row.Scan(&post.CreatedAt, &post.Author.ID, &post.Author.Name, &post.Author.Email, &post.Author.Avatar); err != nil {
		return Post{}, errors.Wrap(err, "insert post")
	}

	s.changed(ctx, Event{Type: EventPostCreated, PostID: post.ID})
	return post, nil
}

func (s *Service) UpdatePost(ctx context.Context, id, userID string, input PostInput) (Post, error) {
	if err := s.ensurePostAuthor(ctx, id, userID); err != nil {
		return Post{}, err
	}

	images := input.Images
	if images == nil {
		images = Images{}
	}
	if _, err := s.db.Exec(ctx, `
		UPDATE posts SET content=$2, images=$3, updated_at=now()
		WHERE id=$1
	`, id, input.Content, images.String()); err != nil {
		return Post{}, errors.Wrap(err, "update post")
	}

	s.changed(ctx, Event{Type: EventPostUpdated, PostID: id})
	return s.Post(ctx, id)
}

func (s *Service) DeletePost(ctx context.Context, id, userID string) error {
	if err := s.ensurePostAuthor(ctx, id, userID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id); err != nil {
		return errors.Wrap(err, "delete post")
	}
	s.changed(ctx, Event{Type: EventPostDeleted, PostID: id})
	return nil
}

func (s *Service) AddComment(ctx context.Context, postID, userID string, input CommentInput) (Comment, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM posts WHERE id=$1)`, postID).Scan(&exists); err != nil {
		return Comment{}, errors.Wrap(err, "lookup post")
	}
	if !exists {
		return Comment{}, ErrNotFound
	}

	comment := Comment{
		ID:      uuid.NewString(),
		PostID:  postID,
		Content: input.Content,
	}
	row := s.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO post_comments (id, post_id, user_id, content)
			VALUES ($1,$2,$3,$4)
			RETURNING user_id, created_at
		)
		SELECT i.created_at, u.id, COALESCE(NULLIF(u.full_name, ''), u.username), u.email, COALESCE(u.avatar_url, '')
		FROM inserted i JOIN users u ON u.id = i.user_id
	`, comment.ID, postID, userID, comment.Content)
	if err := row.Scan(&comment.CreatedAt, &comment.Author.ID, &comment.Author.Name, &comment.Author.Email, &comment.Author.Avatar); err != nil {
		return Comment{}, errors.Wrap(err, "insert comment")
	}

	s.changed(ctx, Event{Type: EventCommentCreated, PostID: postID, CommentID: comment.ID})
	return comment, nil
}

func (s *Service) UpdateComment(ctx context.Context, postID, commentID, userID string, input CommentInput) (Comment, error) {
	if err := s.ensureCommentAuthor(ctx, postID, commentID, userID); err != nil {
		return Comment{}, err
	}

	comment := Comment{ID: commentID, PostID: postID, Content: input.Content}
	row := s.db.QueryRow(ctx, `
		WITH updated AS (
			UPDATE post_comments SET content=$3
			WHERE id=$1 AND post_id=$2
			RETURNING user_id, created_at
		)
		SELECT up.created_at, u.id, COALESCE(NULLIF(u.full_name, ''), u.username), u.email, COALESCE(u.avatar_url, '')
		FROM updated up JOIN users u ON u.id = up.user_id
	`, commentID, postID, input.Content)
	if err := row.Scan(&comment.CreatedAt, &comment.Author.ID, &comment.Author.Name, &comment.Author.Email, &comment.Author.Avatar); err != nil {
		return Comment{}, errors.Wrap(err, "update comment")
	}

	s.changed(ctx, Event{Type: EventCommentUpdated, PostID: postID, CommentID: commentID})
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, postID, commentID, userID string) error {
	if err := s.ensureCommentAuthor(ctx, postID, commentID, userID); err != nil {
		return err
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM post_comments WHERE id=$1 AND post_id=$2`, commentID, postID); err != nil {
		return errors.Wrap(err, "delete comment")
	}
	s.changed(ctx, Event{Type: EventCommentDeleted, PostID: postID, CommentID: commentID})
	return nil
}

// ToggleLike likes the post, or removes the like if userID already liked it.
func (s *Service) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM post_likes WHERE post_id=$1 AND user_id=$2`, postID, userID)
	if err != nil {
		return false, 0, errors.Wrap(err, "unlike post")
	}
	liked := false
	if tag.RowsAffected() == 0 {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, postID, userID); err != nil {
			if isForeignKeyViolation(err) {
				return false, 0, ErrNotFound
			}
			return false, 0, errors.Wrap(err, "like post")
		}
		liked = true
	}

	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id=$1`, postID).Scan(&count); err != nil {
		return false, 0, errors.Wrap(err, "count likes")
	}

	s.changed(ctx, Event{Type: EventPostLiked, PostID: postID})
	return liked, count, nil
}

func (s *Service) Follow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_follows (follower_id, following_id)
		VALUES ($1,$2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID)
	if isForeignKeyViolation(err) {
		return ErrNotFound
	}
	return errors.Wrap(err, "follow")
}

func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM user_follows WHERE follower_id=$1 AND following_id=$2`, followerID, followingID)
	return errors.Wrap(err, "unfollow")
}

// isForeignKeyViolation reports a reference to a missing post or user.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func (s *Service) ensurePostAuthor(ctx context.Context, postID, userID string) error {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id=$1`, postID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "lookup post")
	}
	if authorID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) ensureCommentAuthor(ctx context.Context, postID, commentID, userID string) error {
	var authorID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM post_comments WHERE id=$1 AND post_id=$2`, commentID, postID).Scan(&authorID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "lookup comment")
	}
	if authorID != userID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) queryPosts(ctx context.Context, sql string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query posts")
	}
	defer rows.Close()

	posts := []Post{}
	var ids []string
	for rows.Next() {
		var (
			p      Post
			images string
		)
		if err := rows.Scan(&p.ID, &p.Content, &images, &p.CreatedAt,
			&p.Author.ID, &p.Author.Name, &p.Author.Email, &p.Author.Avatar, &p.LikesCount); err != nil {
			return nil, errors.Wrap(err, "scan post")
		}
		p.Images = ParseImages(images)
		ids = append(ids, p.ID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	comments, err := s.loadComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Comments = comments[posts[i].ID]
		if posts[i].Comments == nil {
			posts[i].Comments = []Comment{}
		}
		posts[i].CommentsCount = len(posts[i].Comments)
	}
	return posts, nil
}

func (s *Service) loadComments(ctx context.Context, postIDs []string) (map[string][]Comment, error) {
	if len(postIDs) == 0 {
		return map[string][]Comment{}, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, c.content, c.created_at,
		       u.id, COALESCE(NULLIF(u.full_name, ''), u.username), u.email, COALESCE(u.avatar_url, '')
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at
	`, postIDs)
	if err != nil {
		return nil, errors.Wrap(err, "query comments")
	}
	defer rows.Close()

	comments := map[string][]Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.CreatedAt,
			&c.Author.ID, &c.Author.Name, &c.Author.Email, &c.Author.Avatar); err != nil {
			return nil, errors.Wrap(err, "scan comment")
		}
		comments[c.PostID] = append(comments[c.PostID], c)
	}
	return comments, rows.Err()
}

// changed drops the explore cache and announces the mutation.
func (s *Service) changed(ctx context.Context, ev Event) {
	s.generation.Add(1)
	if s.cache != nil {
		if err := s.cache.Delete(ctx, exploreCacheKey); err != nil {
			s.logger.Warn("explore cache invalidation failed", zap.Error(err))
		}
	}
	if s.events != nil {
		payload, _ := json.Marshal(ev)
		s.events.Broadcast(FeedTopic, payload)
	}
}

// FeedTopic is the stream topic feed events are broadcast on.
const FeedTopic = "feed"
