package main

import (
	"fmt"
	"io"
	"strings"

	"backend-bandoxanh/internal/feed"
	"backend-bandoxanh/internal/feedstore"

	"github.com/spf13/cobra"
)

func newFeedCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:       "feed [explore|following]",
		Short:     "Show a community feed tab",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(feedstore.Explore), string(feedstore.Following)},
		RunE: func(cmd *cobra.Command, args []string) error {
			tab := feedstore.Explore
			if len(args) == 1 {
				tab = feedstore.Tab(args[0])
			}
			if !tab.Valid() {
				return feedstore.ErrUnknownTab
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			store := a.store(c)
			if err := store.Fetch(cmd.Context(), tab, force); err != nil {
				return err
			}
			printPosts(cmd.OutOrStdout(), store.Posts(tab))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache")
	return cmd
}

func newPostCmd(a *app) *cobra.Command {
	var images []string

	cmd := &cobra.Command{
		Use:   "post <content>",
		Short: "Publish a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			store := a.store(c)
			post, err := store.AddPostOptimistic(cmd.Context(), feed.PostInput{
				Content: args[0],
				Images:  feed.Images(images),
			}, feed.Author{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "posted %s\n", post.ID)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&images, "image", nil, "image URL, repeatable")
	return cmd
}

func newCommentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <postID> <content>",
		Short: "Comment on a post",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			store := a.store(c)
			comment, err := store.AddCommentOptimistic(cmd.Context(), args[0], args[1], feed.Author{})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "commented %s\n", comment.ID)
			return nil
		},
	}
}

func printPosts(w io.Writer, posts []feed.Post) {
	if len(posts) == 0 {
		fmt.Fprintln(w, "no posts yet")
		return
	}
	for _, p := range posts {
		fmt.Fprintf(w, "%s  %s  %s\n", p.ID, p.Author.Name, p.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(p.Content, "\n", "\n  "))
		for _, img := range p.Images {
			fmt.Fprintf(w, "  [img] %s\n", img)
		}
		fmt.Fprintf(w, "  ♥ %d  💬 %d\n", p.LikesCount, p.CommentsCount)
	}
}
