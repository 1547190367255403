// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/pagination"
	"inkwell/internal/render"
	"inkwell/internal/session"
	"inkwell/internal/store"
)

// Blog listing parameters. A chunk of 100 posts is read per page set;
// at most 99 are windowed so the listing can signal an older chunk.
const (
	blogPerPage = 7
	blogSpan    = 4
	blogCap     = 99
)

// Posts groups the public listing pages and admin post management.
type Posts struct {
	renderer *render.Renderer
	posts    *store.PostStore
	comments *store.CommentStore
}

// NewPosts creates a new Posts handler group.
func NewPosts(renderer *render.Renderer, posts *store.PostStore, comments *store.CommentStore) *Posts {
	return &Posts{renderer: renderer, posts: posts, comments: comments}
}

// Home renders the landing page with the seven most recent posts.
func (p *Posts) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := p.posts.ListRecent(blogPerPage)
	if err != nil {
		slog.Error("home listing failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	p.renderer.Page(w, r, "index", &render.PageData{
		Title: "Home",
		Data:  map[string]any{"Posts": posts},
	})
}

// Blog renders the windowed post listing. The page index comes from the
// "page" query parameter and the chunk from "chunk"; both default to 0
// on missing or malformed values.
func (p *Posts) Blog(w http.ResponseWriter, r *http.Request) {
	chunk, offset := pagination.ComputeOffset(r.URL.Query().Get("chunk"))

	count, err := p.posts.Count()
	if err != nil {
		slog.Error("blog count failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	count -= offset
	if count <= 0 {
		if offset > 0 {
			session.AddFlash(w, r, "danger", "There aren't any more posts.")
			http.Redirect(w, r, "/blog", http.StatusSeeOther)
			return
		}
		p.renderer.Page(w, r, "blog", &render.PageData{Title: "Blog", Data: map[string]any{}})
		return
	}

	morePosts := false
	if count > blogCap {
		count = blogCap
		morePosts = true
	}

	window := pagination.ComputeWindow(r.URL.Query().Get("page"), blogSpan, count/blogPerPage)

	batch, err := p.posts.ListChunk(pagination.ChunkSize, offset)
	if err != nil {
		slog.Error("blog listing failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	posts := pagination.Page(batch, window.Index, blogPerPage)

	p.renderer.Page(w, r, "blog", &render.PageData{
		Title: "Blog",
		Data: map[string]any{
			"Posts":     posts,
			"Window":    window,
			"Chunk":     chunk,
			"NextChunk": chunk + 1,
			"MorePosts": morePosts,
		},
	})
}

// VisitPost renders a single post with its seven newest comments.
func (p *Posts) VisitPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound)
		return
	}

	post, err := p.posts.FindByID(id)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	if post == nil {
		p.renderer.Error(w, r, http.StatusNotFound)
		return
	}

	comments, err := p.comments.ListRecentForPost(post.ID, 7)
	if err != nil {
		slog.Error("comment listing failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "visit_post", &render.PageData{
		Title: post.Title,
		Data:  map[string]any{"Post": post, "Comments": comments},
	})
}

// NewPostPage renders the post composition form. Admin-only by routing.
func (p *Posts) NewPostPage(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "new_post", &render.PageData{Title: "New Post"})
}

// NewPostSubmit publishes a new post.
func (p *Posts) NewPostSubmit(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	title := r.FormValue("title")
	content := r.FormValue("content")

	if msg := validatePost(title, content); msg != "" {
		session.AddFlash(w, r, "danger", msg)
		http.Redirect(w, r, "/user/new_post", http.StatusSeeOther)
		return
	}

	if _, err := p.posts.Create(title, content, user.ID); err != nil {
		slog.Error("post create failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", fmt.Sprintf("The post %q has been published.", title))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// DeletePost removes a post and all of its comments in one transaction.
// Only the post's author may delete it; any other admin gets a 404 so
// the route never confirms another author's ownership.
func (p *Posts) DeletePost(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())

	id, ok := parseID(r, "id")
	if !ok {
		p.renderer.Error(w, r, http.StatusNotFound)
		return
	}

	post, err := p.posts.FindByID(id)
	if err != nil {
		slog.Error("post lookup failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}
	if post == nil || post.AuthorID != user.ID {
		p.renderer.Error(w, r, http.StatusNotFound)
		return
	}

	if err := p.posts.DeleteWithComments(post.ID); err != nil {
		slog.Error("post delete failed", "error", err)
		p.renderer.Error(w, r, http.StatusInternalServerError)
		return
	}

	session.AddFlash(w, r, "success", "The post was removed correctly.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
