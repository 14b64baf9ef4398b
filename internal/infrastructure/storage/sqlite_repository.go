package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"MarketSentiment/internal/domain"
	"MarketSentiment/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	company TEXT NOT NULL,
	title TEXT NOT NULL,
	source TEXT,
	url TEXT NOT NULL,
	content TEXT,
	published_at TEXT,
	sentiment_label TEXT,
	sentiment_score REAL,
	sentiment_probas TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(url, company)
);
CREATE INDEX IF NOT EXISTS idx_articles_company ON articles(company);
CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at DESC);
`

var articleColumns = []string{
	"id", "company", "title", "source", "url", "content",
	"published_at", "sentiment_label", "sentiment_score", "sentiment_probas",
}

// SQLiteRepository persists canonical articles. The UNIQUE(url, company)
// constraint makes concurrent inserts of the same key resolve at the data
// layer as one insert plus one duplicate, so no application-level pre-check
// is needed.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ports.ArticleStore = (*SQLiteRepository)(nil)

// Open creates the database file (and its directory) if needed and ensures
// the schema. busy_timeout retries lock contention at connection level; a
// single writer connection keeps each mutation atomic.
func Open(path string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close releases the underlying connection pool.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// Save inserts the article unless its (url, company) key already exists.
// Articles without a resolvable URL cannot be deduplicated and are rejected.
// The first stored record always wins; later scrapes of the same key never
// overwrite it.
func (r *SQLiteRepository) Save(ctx context.Context, article domain.Article) (domain.SaveOutcome, error) {
	if strings.TrimSpace(article.URL) == "" {
		return domain.SaveRejected, nil
	}

	label, score, probas, err := sentimentFields(article.Sentiment)
	if err != nil {
		return domain.SaveRejected, err
	}

	query, args, err := sq.Insert("articles").
		Columns("company", "title", "source", "url", "content", "published_at",
			"sentiment_label", "sentiment_score", "sentiment_probas").
		Values(article.Company, article.Title, article.Source, article.URL,
			article.Content, article.PublishedAt, label, score, probas).
		Suffix("ON CONFLICT(url, company) DO NOTHING").
		ToSql()
	if err != nil {
		return domain.SaveRejected, fmt.Errorf("build insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.SaveRejected, fmt.Errorf("insert article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return domain.SaveRejected, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.SaveDuplicate, nil
	}
	return domain.SaveInserted, nil
}

// UpdateSentiment fills the classification fields of one stored record,
// keyed by row id rather than the dedup key. Repeating the update with the
// same values is a no-op.
func (r *SQLiteRepository) UpdateSentiment(ctx context.Context, id int64, sentiment domain.Sentiment) error {
	probas, err := json.Marshal(sentiment.Distribution)
	if err != nil {
		return fmt.Errorf("marshal distribution: %w", err)
	}

	query, args, err := sq.Update("articles").
		Set("sentiment_label", string(sentiment.Label)).
		Set("sentiment_score", sentiment.Confidence).
		Set("sentiment_probas", string(probas)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update sentiment %d: %w", id, err)
	}
	return nil
}

// FetchAll returns every stored article ordered by recency.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]domain.Article, error) {
	return r.query(ctx, r.selectArticles())
}

// FetchByCompany returns the stored articles for one company, newest first.
func (r *SQLiteRepository) FetchByCompany(ctx context.Context, company string) ([]domain.Article, error) {
	return r.query(ctx, r.selectArticles().Where(sq.Eq{"company": company}))
}

// FetchPending returns articles that have not been classified yet, oldest
// first so incremental classification catches up in insertion order.
func (r *SQLiteRepository) FetchPending(ctx context.Context) ([]domain.Article, error) {
	builder := sq.Select(articleColumns...).
		From("articles").
		Where("sentiment_label IS NULL").
		OrderBy("id ASC")
	return r.query(ctx, builder)
}

func (r *SQLiteRepository) selectArticles() sq.SelectBuilder {
	return sq.Select(articleColumns...).
		From("articles").
		OrderBy("published_at DESC", "id DESC")
}

func (r *SQLiteRepository) query(ctx context.Context, builder sq.SelectBuilder) ([]domain.Article, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

func scanArticle(rows *sql.Rows) (domain.Article, error) {
	var (
		article domain.Article
		source  sql.NullString
		content sql.NullString
		pubAt   sql.NullString
		label   sql.NullString
		score   sql.NullFloat64
		probas  sql.NullString
	)

	err := rows.Scan(&article.ID, &article.Company, &article.Title, &source,
		&article.URL, &content, &pubAt, &label, &score, &probas)
	if err != nil {
		return domain.Article{}, fmt.Errorf("scan article: %w", err)
	}

	article.Source = source.String
	article.Content = content.String
	article.PublishedAt = pubAt.String

	if label.Valid && score.Valid {
		sentiment := domain.Sentiment{
			Label:      domain.Label(label.String),
			Confidence: score.Float64,
		}
		if probas.Valid && probas.String != "" {
			if err := json.Unmarshal([]byte(probas.String), &sentiment.Distribution); err != nil {
				return domain.Article{}, fmt.Errorf("decode distribution for %d: %w", article.ID, err)
			}
		}
		article.Sentiment = &sentiment
	}

	return article, nil
}

// sentimentFields converts an optional classification to its column values.
// A nil sentiment stores NULLs in all three columns, never a partial set.
func sentimentFields(s *domain.Sentiment) (any, any, any, error) {
	if s == nil {
		return nil, nil, nil, nil
	}
	probas, err := json.Marshal(s.Distribution)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal distribution: %w", err)
	}
	return string(s.Label), s.Confidence, string(probas), nil
}
