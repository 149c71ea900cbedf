package feed

import (
	"encoding/json"
	"strings"
	"time"
)

type Author struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Images        Images    `json:"images"`
	CreatedAt     time.Time `json:"createdAt"`
	Author        Author    `json:"author"`
	Comments      []Comment `json:"comments"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`
}

type PostInput struct {
	Content string `json:"content" validate:"required,max=5000"`
	Images  Images `json:"images" validate:"max=10,dive,url"`
}

type CommentInput struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

// Event is published on every feed mutation.
type Event struct {
	Type      string `json:"type"`
	PostID    string `json:"postId"`
	CommentID string `json:"commentId,omitempty"`
}

const (
	EventPostCreated    = "post.created"
	EventPostUpdated    = "post.updated"
	EventPostDeleted    = "post.deleted"
	EventPostLiked      = "post.liked"
	EventCommentCreated = "comment.created"
	EventCommentUpdated = "comment.updated"
	EventCommentDeleted = "comment.deleted"
)

// Images is an ordered list of image URLs. Stored and sometimes sent as
// JSON text, sometimes as a bare URL; both decode to a list.
type Images []string

// ParseImages accepts a JSON array, JSON text holding an array or a
// string, or a single URL. Anything else is an empty list.
func ParseImages(raw string) Images {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return Images{}
	}

	switch raw[0] {
	case '[':
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return Images{}
		}
		return compact(list)
	case '"':
		var inner string
		if err := json.Unmarshal([]byte(raw), &inner); err != nil {
			return Images{}
		}
		return ParseImages(inner)
	case '{':
		return Images{}
	}
	return Images{raw}
}

func compact(list []string) Images {
	out := Images{}
	for _, u := range list {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// String is the JSON text stored in the images column.
func (im Images) String() string {
	if im == nil {
		return "[]"
	}
	raw, _ := json.Marshal([]string(im))
	return string(raw)
}

func (im Images) MarshalJSON() ([]byte, error) {
	return []byte(im.String()), nil
}

// UnmarshalJSON never fails: malformed values become an empty list.
func (im *Images) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		*im = Images{}
		return nil
	}
	switch raw[0] {
	case '[', '"':
		*im = ParseImages(raw)
	default:
		*im = Images{}
	}
	return nil
}
