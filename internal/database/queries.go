package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"khabar/internal/domain"
)

const articleColumns = `id, title, description, content, url, image_url,
	published_at, source_id, source_name, language, category, summary,
	audio_url, created_at, updated_at`

// InsertArticle stores an article unless its URL is already present.
// It reports whether a new row was written.
func (d *Database) InsertArticle(ctx context.Context, a *domain.Article) (bool, error) {
	title := strings.TrimSpace(a.Title)
	if title == "" {
		return false, errors.New("article title is empty")
	}

	description := strings.TrimSpace(a.Description)
	if description == "" {
		return false, errors.New("article description is empty")
	}

	content := strings.TrimSpace(a.Content)
	if content == "" {
		content = description
	}

	sourceName := strings.TrimSpace(a.Source.Name)
	if sourceName == "" {
		sourceName = "Unknown"
	}

	query := `insert or ignore into articles
	(title, description, content, url, image_url, published_at,
	source_id, source_name, language, category)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := d.db.ExecContext(ctx, query,
		title, description, content, a.URL, a.ImageURL, a.PublishedAt,
		a.Source.ID, sourceName, a.Language, a.Category)
	if err != nil {
		return false, fmt.Errorf("failed to execute query: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to fetch affected rows: %w", err)
	}

	return rows > 0, nil
}

type ArticleFilter struct {
	Language string
	Category string
	Search   string
	Page     int
	Limit    int
}

// ListArticles returns one page of articles newest-first together with
// the total match count.
func (d *Database) ListArticles(
	ctx context.Context,
	filter ArticleFilter,
) ([]domain.Article, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	where := "where title != '' and description != ''"
	var args []any

	if filter.Language != "" {
		where += " and language = ?"
		args = append(args, filter.Language)
	}
	if filter.Category != "" {
		where += " and category = ?"
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		where += " and (title like ? or description like ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	countQuery := "select count(*) from articles " + where
	if err := d.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	query := fmt.Sprintf(`select %s from articles %s
	order by published_at desc, created_at desc
	limit ? offset ?`, articleColumns, where)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	articles, err := d.queryArticles(ctx, "ListArticles", query, args...)
	if err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

// TrendingArticles returns the newest articles across all filters.
func (d *Database) TrendingArticles(ctx context.Context, limit int) ([]domain.Article, error) {
	if limit < 1 {
		limit = 10
	}

	query := fmt.Sprintf(`select %s from articles
	where title != '' and description != ''
	order by published_at desc
	limit ?`, articleColumns)

	return d.queryArticles(ctx, "TrendingArticles", query, limit)
}

// GetArticle returns the article with the given id, or nil when absent.
func (d *Database) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	query := fmt.Sprintf("select %s from articles where id = ?", articleColumns)

	articles, err := d.queryArticles(ctx, "GetArticle", query, id)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}

	return &articles[0], nil
}

// UpdateSummary persists a generated summary and its optional audio
// reference against an article.
func (d *Database) UpdateSummary(
	ctx context.Context,
	articleID int64,
	summary string,
	audioURL string,
) error {
	query := `update articles
	set summary = ?, audio_url = ?, updated_at = current_timestamp
	where id = ?`

	_, err := d.db.ExecContext(ctx, query, summary, audioURL, articleID)

	return err
}

// DeleteArticlesBefore removes articles created before the cutoff and
// reports how many were deleted.
func (d *Database) DeleteArticlesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := "delete from articles where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	return res.RowsAffected()
}

func (d *Database) UpsertPushToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("push token is empty")
	}

	query := `insert into push_tokens (token)
	values (?)
	on conflict (token) do update
	set updated_at = current_timestamp`

	_, err := d.db.ExecContext(ctx, query, token)

	return err
}

// DeletePushToken reports whether the token existed.
func (d *Database) DeletePushToken(ctx context.Context, token string) (bool, error) {
	query := "delete from push_tokens where token = ?"

	res, err := d.db.ExecContext(ctx, query, token)
	if err != nil {
		return false, fmt.Errorf("failed to execute query: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to fetch affected rows: %w", err)
	}

	return rows > 0, nil
}

// DeletePushTokens removes tokens the push service rejected.
func (d *Database) DeletePushTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(tokens))
	query := fmt.Sprintf("delete from push_tokens where token in (%s)",
		placeholders[:len(placeholders)-1])

	args := make([]any, len(tokens))
	for i, t := range tokens {
		args[i] = t
	}

	_, err := d.db.ExecContext(ctx, query, args...)

	return err
}

func (d *Database) CountPushTokens(ctx context.Context) (int, error) {
	var count int
	if err := d.db.QueryRowContext(ctx, "select count(*) from push_tokens").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	return count, nil
}

func (d *Database) ListPushTokens(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, "select token from push_tokens")
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", "ListPushTokens")
		}
	}()

	var tokens []string
	for rows.Next() {
		var t string
		if err = rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		t = strings.TrimSpace(t)
		if t != "" {
			tokens = append(tokens, t)
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return tokens, nil
}

func (d *Database) queryArticles(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) ([]domain.Article, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", operation)
		}
	}()

	var articles []domain.Article
	for rows.Next() {
		a, scanErr := scanArticle(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan row: %w", scanErr)
		}

		articles = append(articles, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return articles, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var a domain.Article

	err := rows.Scan(
		&a.ID, &a.Title, &a.Description, &a.Content, &a.URL, &a.ImageURL,
		&a.PublishedAt, &a.Source.ID, &a.Source.Name, &a.Language,
		&a.Category, &a.Summary, &a.AudioURL, &a.CreatedAt, &a.UpdatedAt)

	return a, err
}
