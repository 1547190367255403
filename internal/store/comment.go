// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"inkwell/internal/models"
)

// CommentStore handles all comment-related database operations.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create inserts a new comment and returns it with the generated id.
func (s *CommentStore) Create(postID int64, content string, authorID int64) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, content, author_id, written
	`, postID, content, authorID).Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorID, &c.Written)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return c, nil
}

// FindByID retrieves a comment by id. Returns nil if not found.
func (s *CommentStore) FindByID(id int64) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		SELECT id, post_id, content, author_id, written FROM comments WHERE id = $1
	`, id).Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorID, &c.Written)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// ListRecentForPost returns the newest comments for a post up to limit.
func (s *CommentStore) ListRecentForPost(postID int64, limit int) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT comments.id, comments.post_id, comments.content, comments.author_id, comments.written, users.username
		FROM comments JOIN users ON users.id = comments.author_id
		WHERE comments.post_id = $1
		ORDER BY comments.written DESC, comments.id DESC
		LIMIT $2
	`, postID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent comments: %w", err)
	}
	defer rows.Close()
	return collectComments(rows)
}

// ListChunkForPost returns up to limit comments for a post starting at
// offset. The full listing reads oldest first, unlike the recent-comment
// preview on the post page.
func (s *CommentStore) ListChunkForPost(postID int64, limit, offset int) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT comments.id, comments.post_id, comments.content, comments.author_id, comments.written, users.username
		FROM comments JOIN users ON users.id = comments.author_id
		WHERE comments.post_id = $1
		ORDER BY comments.written ASC, comments.id ASC
		LIMIT $2 OFFSET $3
	`, postID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list comments chunk: %w", err)
	}
	defer rows.Close()
	return collectComments(rows)
}

// CountForPost returns the number of comments on a post.
func (s *CommentStore) CountForPost(postID int64) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(id) FROM comments WHERE post_id = $1`, postID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}

// Delete removes a comment by id.
func (s *CommentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func collectComments(rows *sql.Rows) ([]models.Comment, error) {
	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorID, &c.Written, &c.Author); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
