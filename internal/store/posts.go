package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertPost stores a new candidate feed post.
func (s *Store) InsertPost(ctx context.Context, candidateID uuid.UUID, body, visibility string) (*Post, error) {
	var p Post
	err := s.pool.QueryRow(ctx,
		`INSERT INTO posts (candidate_id, body, visibility, status)
		 VALUES ($1, $2, $3, 'visible')
		 RETURNING id, candidate_id, body, visibility, status, created_at`,
		candidateID, body, visibility,
	).Scan(&p.ID, &p.CandidateID, &p.Body, &p.Visibility, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert post: %w", err)
	}
	return &p, nil
}

// ListPostsByCandidate retrieves a candidate's own posts, newest first.
func (s *Store) ListPostsByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, body, visibility, status, created_at
		 FROM posts WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	return scanPosts(rows, err)
}

// ListPublicFeed retrieves visible public posts for the shared feed.
func (s *Store) ListPublicFeed(ctx context.Context, limit int) ([]Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, body, visibility, status, created_at
		 FROM posts WHERE visibility = 'public' AND status = 'visible'
		 ORDER BY created_at DESC LIMIT $1`, limit)
	return scanPosts(rows, err)
}

// ListAllPosts retrieves every post regardless of status, for moderation.
func (s *Store) ListAllPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, body, visibility, status, created_at
		 FROM posts ORDER BY created_at DESC`)
	return scanPosts(rows, err)
}

func scanPosts(rows pgx.Rows, err error) ([]Post, error) {
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.CandidateID, &p.Body, &p.Visibility, &p.Status, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ModeratePost sets a post's status to "visible" or "hidden".
func (s *Store) ModeratePost(ctx context.Context, postID uuid.UUID, status string) (*Post, error) {
	var p Post
	err := s.pool.QueryRow(ctx,
		`UPDATE posts SET status = $2 WHERE id = $1
		 RETURNING id, candidate_id, body, visibility, status, created_at`,
		postID, status,
	).Scan(&p.ID, &p.CandidateID, &p.Body, &p.Visibility, &p.Status, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &ErrNotFound{Kind: "post", ID: postID.String()}
		}
		return nil, fmt.Errorf("failed to moderate post: %w", err)
	}
	return &p, nil
}

// InsertNotification records a per-user event. Callers on best-effort
// paths should log and continue when this fails.
func (s *Store) InsertNotification(ctx context.Context, userID uuid.UUID, kind string, data map[string]any) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (user_id, type, data) VALUES ($1, $2, $3)`,
		userID, kind, data)
	if err != nil && !isMissingTable(err) {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications retrieves a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID uuid.UUID) ([]Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, type, COALESCE(data, '{}'), read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Data, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags one notification as read. The bool reports
// whether the row existed and belonged to the user.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		if isMissingTable(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertBookmark saves a recruiter's bookmark on a candidate.
func (s *Store) InsertBookmark(ctx context.Context, recruiterID, candidateID uuid.UUID, note string) (*Bookmark, error) {
	var b Bookmark
	err := s.pool.QueryRow(ctx,
		`INSERT INTO bookmarks (recruiter_id, candidate_id, note)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (recruiter_id, candidate_id) DO UPDATE SET note = $3
		 RETURNING id, recruiter_id, candidate_id, COALESCE(note, ''), created_at`,
		recruiterID, candidateID, note,
	).Scan(&b.ID, &b.RecruiterID, &b.CandidateID, &b.Note, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert bookmark: %w", err)
	}
	return &b, nil
}

// ListBookmarks retrieves a recruiter's bookmarks, newest first.
func (s *Store) ListBookmarks(ctx context.Context, recruiterID uuid.UUID) ([]Bookmark, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, recruiter_id, candidate_id, COALESCE(note, ''), created_at
		 FROM bookmarks WHERE recruiter_id = $1 ORDER BY created_at DESC`, recruiterID)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []Bookmark
	for rows.Next() {
		var b Bookmark
		if err := rows.Scan(&b.ID, &b.RecruiterID, &b.CandidateID, &b.Note, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

// InsertNote records a recruiter's note on a candidate.
func (s *Store) InsertNote(ctx context.Context, candidateID, authorID uuid.UUID, note string) (*Note, error) {
	var n Note
	err := s.pool.QueryRow(ctx,
		`INSERT INTO notes (candidate_id, author_id, note)
		 VALUES ($1, $2, $3)
		 RETURNING id, candidate_id, author_id, note, created_at`,
		candidateID, authorID, note,
	).Scan(&n.ID, &n.CandidateID, &n.AuthorID, &n.Note, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note: %w", err)
	}
	return &n, nil
}

// ListNotesByCandidate retrieves notes on a candidate, newest first.
func (s *Store) ListNotesByCandidate(ctx context.Context, candidateID uuid.UUID) ([]Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, candidate_id, author_id, note, created_at
		 FROM notes WHERE candidate_id = $1 ORDER BY created_at DESC`, candidateID)
	if err != nil {
		if isMissingTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.CandidateID, &n.AuthorID, &n.Note, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
