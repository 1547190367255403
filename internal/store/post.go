// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"inkwell/internal/models"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// Create inserts a new post and returns it with the generated id.
func (s *PostStore) Create(title, content string, authorID int64) (*models.Post, error) {
	p := &models.Post{}
	err := s.db.QueryRow(`
		INSERT INTO posts (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, title, content, author_id, posted
	`, title, content, authorID).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Posted)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// FindByID retrieves a post with its author's username. Returns nil if not found.
func (s *PostStore) FindByID(id int64) (*models.Post, error) {
	p := &models.Post{}
	err := s.db.QueryRow(`
		SELECT posts.id, posts.title, posts.content, posts.author_id, posts.posted, users.username
		FROM posts JOIN users ON users.id = posts.author_id
		WHERE posts.id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Posted, &p.Author)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// ListRecent returns the newest posts up to limit, ordered by recency with
// id as the tiebreak.
func (s *PostStore) ListRecent(limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT posts.id, posts.title, posts.content, posts.author_id, posts.posted, users.username
		FROM posts JOIN users ON users.id = posts.author_id
		ORDER BY posts.posted DESC, posts.id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent posts: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// ListChunk returns up to limit posts starting at offset, ordered by
// recency with id as the tiebreak. Listing handlers page the result
// further in memory.
func (s *PostStore) ListChunk(limit, offset int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT posts.id, posts.title, posts.content, posts.author_id, posts.posted, users.username
		FROM posts JOIN users ON users.id = posts.author_id
		ORDER BY posts.posted DESC, posts.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list posts chunk: %w", err)
	}
	defer rows.Close()
	return collectPosts(rows)
}

// Count returns the total number of posts.
func (s *PostStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(id) FROM posts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// DeleteWithComments removes a post and every comment referencing it in
// one transaction; on any failure nothing is applied.
func (s *PostStore) DeleteWithComments(postID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete post: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM comments WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete post comments: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete post: commit: %w", err)
	}
	return nil
}

func collectPosts(rows *sql.Rows) ([]models.Post, error) {
	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.Posted, &p.Author); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
