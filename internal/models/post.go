// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Post represents a blog entry authored by an admin.
type Post struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	AuthorID int64     `json:"author_id"`
	Posted   time.Time `json:"posted"`

	// Author is the denormalized author username, populated by listing
	// queries that join against users.
	Author string `json:"author,omitempty"`
}

// Comment represents a reader comment attached to a post.
type Comment struct {
	ID       int64     `json:"id"`
	PostID   int64     `json:"post_id"`
	Content  string    `json:"content"`
	AuthorID int64     `json:"author_id"`
	Written  time.Time `json:"written"`

	// Author is the denormalized author username, populated by listing queries.
	Author string `json:"author,omitempty"`
}
