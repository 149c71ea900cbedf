package feed

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func asUser(id string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", id)
		return c.Next()
	}
}

func newApp(svc *Service, userID string) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app.Group("/api"), svc, asUser(userID))
	return app
}

func TestFeedHandlers(t *testing.T) {
	mock := newMock(t)
	createdAt := time.Now()

	mock.ExpectQuery(`INSERT INTO posts`).
		WithArgs(pgxmock.AnyArg(), "user-1", "Trồng cây cuối tuần", "[]").
		WillReturnRows(pgxmock.NewRows(authorCols).AddRow(createdAt, "user-1", "Lan", "lan@example.com", ""))

	mock.ExpectQuery(`ORDER BY p.created_at DESC`).
		WillReturnRows(pgxmock.NewRows(postCols).
			AddRow("post-1", "Trồng cây cuối tuần", "[]", createdAt, "user-1", "Lan", "lan@example.com", "", 0))
	mock.ExpectQuery(`FROM post_comments c`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(commentCols))

	app := newApp(NewService(mock), "user-1")

	body, _ := json.Marshal(PostInput{Content: "Trồng cây cuối tuần"})
	req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("create post status: %v %d", err, resp.StatusCode)
	}

	var created Post
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Author.ID != "user-1" {
		t.Fatalf("unexpected post %+v", created)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("explore status: %v", err)
	}
	var posts []Post
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "post-1" {
		t.Fatalf("unexpected explore %+v", posts)
	}
}

func TestFollowingHandlerWrapsPosts(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`FROM user_follows`).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(postCols))

	app := newApp(NewService(mock), "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/posts/following", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("following status: %v", err)
	}
	var out struct {
		Posts []Post `json:"posts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Posts == nil {
		t.Fatalf("expected posts key with empty list")
	}
}

func TestCreatePostValidation(t *testing.T) {
	app := newApp(NewService(nil), "user-1")

	cases := []string{
		`{}`,
		`{"content":""}`,
		`{"content":"ok","images":["not a url"]}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
	}
}

func TestPostNotFound(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`WHERE p.id=\$1`).WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(postCols))

	app := newApp(NewService(mock), "user-1")

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/missing", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDeletePostForbidden(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT user_id FROM posts`).WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow("user-2"))

	app := newApp(NewService(mock), "user-1")

	resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/posts/post-1", nil))
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCommentAndLikeHandlers(t *testing.T) {
	mock := newMock(t)
	createdAt := time.Now()

	mock.ExpectQuery(`SELECT EXISTS`).WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO post_comments`).
		WithArgs(pgxmock.AnyArg(), "post-1", "user-1", "Ủng hộ").
		WillReturnRows(pgxmock.NewRows(authorCols).AddRow(createdAt, "user-1", "Lan", "lan@example.com", ""))
	mock.ExpectExec(`DELETE FROM post_likes`).WithArgs("post-1", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO post_likes`).WithArgs("post-1", "user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM post_likes`).WithArgs("post-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	app := newApp(NewService(mock), "user-1")

	body, _ := json.Marshal(CommentInput{Content: "Ủng hộ"})
	req := httptest.NewRequest(http.MethodPost, "/api/posts/post-1/comment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("comment status: %v %d", err, resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/api/posts/post-1/like", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("like status: %v", err)
	}
	var like struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likesCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&like); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !like.Liked || like.LikesCount != 1 {
		t.Fatalf("unexpected like %+v", like)
	}
}

func TestFollowHandlers(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`INSERT INTO user_follows`).WithArgs("user-1", "user-2").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM user_follows`).WithArgs("user-1", "user-2").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	app := newApp(NewService(mock), "user-1")

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/users/user-1/follow", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected self-follow rejected, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/api/users/user-2/follow", nil))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodDelete, "/api/users/user-2/follow", nil))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestLikeAndFollowMissingTargets(t *testing.T) {
	mock := newMock(t)

	mock.ExpectExec(`DELETE FROM post_likes`).WithArgs("missing", "user-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO post_likes`).WithArgs("missing", "user-1").
		WillReturnError(errForeignKey)
	mock.ExpectExec(`INSERT INTO user_follows`).WithArgs("user-1", "ghost").
		WillReturnError(errForeignKey)

	app := newApp(NewService(mock), "user-1")

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/posts/missing/like", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 liking a missing post, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest(http.MethodPost, "/api/users/ghost/follow", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 following a missing user, got %d", resp.StatusCode)
	}
}
