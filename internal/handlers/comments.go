// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/pagination"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Comment listing parameters.
const (
	commentsPerPage = 15
	commentsSpan    = 4
	commentsCap     = 100
)

// Comments groups comment creation, the full comment listing, and
// comment deletion.
type Comments struct {
	renderer *render.Renderer
	posts    *store.PostStore
	comments *store.CommentStore
}

// NewComments creates a new Comments handler group.
func NewComments(renderer *render.Renderer, posts *store.PostStore, comments *store.CommentStore) *Comments {
	return &Comments{renderer: renderer, posts: posts, comments: comments}
}

// findPost resolves the {post_id} parameter, rendering a 404 for
// missing posts.
func (c *Comments) findPost(w http.ResponseWriter, r *http.Request, param string) *models.Post {
	id, ok := parseID(r, param)
	if !ok {
		c.renderer.Error(w, r, http.StatusNotFound)
		return nil
	}
	post, err := c.posts.FindByID(id)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		c.renderer.Error(w, r, http.StatusNotFound)
		return nil
	}
	return post
}

// CommentPage renders the comment composition form.
func (c *Comments) CommentPage(w http.ResponseWriter, r *http.Request) {
	post := c.findPost(w, r, "post_id")
	if post == nil {
		return
	}
	c.renderer.Page(w, r, "comment", &render.PageData{
		Title: post.Title,
		Data:  map[string]any{"Post": post},
	})
}

// CommentSubmit attaches a new comment to a post.
func (c *Comments) CommentSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	post := c.findPost(w, r, "post_id")
	if post == nil {
		return
	}

	content := r.FormValue("content")
	if msg := validateComment(content); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, fmt.Sprintf("/user/comment/%d", post.ID), http.StatusSeeOther)
		return
	}

	if _, err := c.comments.Create(post.ID, content, user.ID); err != nil {
		slog.Error("comment create failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "Success, your comment has been posted.")
	http.Redirect(w, r, fmt.Sprintf("/user/visit_post/%d", post.ID), http.StatusSeeOther)
}

// AllComments renders the windowed listing of every comment on a post,
// oldest first. An empty page bounces back to the post with a notice.
func (c *Comments) AllComments(w http.ResponseWriter, r *http.Request) {
	post := c.findPost(w, r, "post_id")
	if post == nil {
		return
	}

	chunk, offset := pagination.ComputeOffset(r.URL.Query().Get("chunk"))

	count, err := c.comments.CountForPost(post.ID)
	if err != nil {
		slog.Error("comment count failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	count -= offset
	if count <= 0 {
		session.AddFlash(w, r, "danger", "No comment to display so far, be the first one to leave a comment.")
		http.Redirect(w, r, fmt.Sprintf("/user/visit_post/%d", post.ID), http.StatusSeeOther)
		return
	}

	moreComments := false
	if count > commentsCap {
		count = commentsCap
		moreComments = true
	}

	window := pagination.ComputeWindow(r.URL.Query().Get("page"), commentsSpan, count/commentsPerPage)

	batch, err := c.comments.ListChunkForPost(post.ID, pagination.ChunkSize, offset)
	if err != nil {
		slog.Error("comment listing failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	comments := pagination.Page(batch, window.Index, commentsPerPage)
	if len(comments) == 0 {
		session.AddFlash(w, r, "danger", "No comment to display so far, be the first one to leave a comment.")
		http.Redirect(w, r, fmt.Sprintf("/user/visit_post/%d", post.ID), http.StatusSeeOther)
		return
	}

	c.renderer.Page(w, r, "all_comments", &render.PageData{
		Title: post.Title,
		Data: map[string]any{
			"Post":         post,
			"Comments":     comments,
			"Window":       window,
			"Chunk":        chunk,
			"NextChunk":    chunk + 1,
			"MoreComments": moreComments,
		},
	})
}

// DeleteComment removes a comment. Allowed for the comment's author and
// the post's author; anyone else gets a 404 so the route never confirms
// who owns what. A comment that does not belong to the named post is a
// 400, as is a missing cid parameter.
func (c *Comments) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	post := c.findPost(w, r, "post_id")
	if post == nil {
		return
	}

	cid, err := strconv.ParseInt(r.URL.Query().Get("cid"), 10, 64)
	if err != nil || cid <= 0 {
		c.renderer.Error(w, r, http.StatusBadRequest)
		return
	}

	comment, err := c.comments.FindByID(cid)
	if err != nil {
		slog.Error("comment lookup failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	if comment == nil {
		c.renderer.Error(w, r, http.StatusNotFound)
		return
	}

	if user.ID != comment.AuthorID && user.ID != post.AuthorID {
		c.renderer.Error(w, r, http.StatusNotFound)
		return
	}

	if comment.PostID != post.ID {
		c.renderer.Error(w, r, http.StatusBadRequest)
		return
	}

	if err := c.comments.Delete(comment.ID); err != nil {
		slog.Error("comment delete failed", "error", err)
		c.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "The comment was deleted correctly.")
	http.Redirect(w, r, fmt.Sprintf("/user/visit_post/%d", post.ID), http.StatusSeeOther)
}
