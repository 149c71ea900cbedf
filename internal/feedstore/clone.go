package feedstore

import "backend-bandoxanh/internal/feed"

func clonePosts(posts []feed.Post) []feed.Post {
	out := make([]feed.Post, len(posts))
	for i, p := range posts {
		out[i] = clonePost(p)
	}
	return out
}

func clonePost(p feed.Post) feed.Post {
	if p.Images != nil {
		p.Images = append(feed.Images{}, p.Images...)
	}
	if p.Comments != nil {
		p.Comments = append([]feed.Comment{}, p.Comments...)
	}
	return p
}

func indexOfPost(posts []feed.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfComment(comments []feed.Comment, id string) int {
	for i := range comments {
		if comments[i].ID == id {
			return i
		}
	}
	return -1
}

// removePost returns posts without index i, in a fresh backing array.
func removePost(posts []feed.Post, i int) []feed.Post {
	out := make([]feed.Post, 0, len(posts)-1)
	out = append(out, posts[:i]...)
	return append(out, posts[i+1:]...)
}
