package local

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"ideation-orchestrator/internal/application/port/output"
	"ideation-orchestrator/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ output.MemoryPort = (*Store)(nil)

type memoryModel struct {
	ID        string         `gorm:"primaryKey;size:36"`
	UserID    string         `gorm:"index;size:128"`
	Type      string         `gorm:"index;size:64"`
	Memory    string         `gorm:"type:text"`
	Metadata  map[string]any `gorm:"serializer:json"`
	Embedding []float32      `gorm:"serializer:json"`
	CreatedAt time.Time      `gorm:"index"`
}

func (memoryModel) TableName() string { return "memories" }

// Store is a MemoryPort backed by SQLite. Search ranks by cosine similarity
// when an embedder is configured and by token overlap otherwise.
type Store struct {
	db       *gorm.DB
	embedder output.EmbedderPort
	log      output.LoggerPort
	now      func() time.Time
}

type Option func(*Store)

func WithEmbedder(e output.EmbedderPort) Option {
	return func(s *Store) { s.embedder = e }
}

// Open creates the database file (and its directory) when missing.
func Open(path string, log output.LoggerPort, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("memory store: path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("memory store: create dir: %w", err)
		}
	}
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("memory store: open: %w", err)
	}
	if err := db.AutoMigrate(&memoryModel{}); err != nil {
		return nil, fmt.Errorf("memory store: migrate: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	s := &Store{db: db, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Add(ctx context.Context, in entity.MemoryInput) (string, error) {
	if strings.TrimSpace(in.Text) == "" {
		return "", fmt.Errorf("memory text is empty")
	}
	m := memoryModel{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Memory:    in.Text,
		Metadata:  in.Metadata,
		CreatedAt: s.now().UTC(),
	}
	if t, ok := in.Metadata["type"].(string); ok {
		m.Type = t
	}
	if s.embedder != nil {
		vecs, err := s.embedder.Embed(ctx, []string{in.Text})
		if err != nil {
			s.log.Warn("Embedding failed, storing without vector", "error", err)
		} else if len(vecs) == 1 {
			m.Embedding = vecs[0]
		}
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return "", fmt.Errorf("insert memory: %w", err)
	}
	return m.ID, nil
}

func (s *Store) List(ctx context.Context, opts entity.SearchOptions) ([]entity.MemoryRecord, error) {
	rows, err := s.candidates(ctx, opts)
	if err != nil {
		return nil, err
	}
	out := make([]entity.MemoryRecord, 0, len(rows))
	for _, m := range rows {
		if !matches(m.Metadata, opts.Filters) {
			continue
		}
		out = append(out, toRecord(m, 0))
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) Search(ctx context.Context, query string, opts entity.SearchOptions) ([]entity.MemoryRecord, error) {
	rows, err := s.candidates(ctx, opts)
	if err != nil {
		return nil, err
	}

	var queryVec []float32
	if s.embedder != nil {
		vecs, err := s.embedder.Embed(ctx, []string{query})
		if err != nil {
			s.log.Warn("Query embedding failed, using token overlap", "error", err)
		} else if len(vecs) == 1 {
			queryVec = vecs[0]
		}
	}
	queryTokens := tokenize(query)

	out := make([]entity.MemoryRecord, 0, len(rows))
	for _, m := range rows {
		if !matches(m.Metadata, opts.Filters) {
			continue
		}
		var score float64
		if queryVec != nil && len(m.Embedding) == len(queryVec) {
			score = cosine(queryVec, m.Embedding)
		} else {
			score = overlap(queryTokens, tokenize(m.Memory))
		}
		if score <= 0 {
			continue
		}
		out = append(out, toRecord(m, score))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *Store) candidates(ctx context.Context, opts entity.SearchOptions) ([]memoryModel, error) {
	q := s.db.WithContext(ctx).Model(&memoryModel{}).Order("created_at DESC")
	if opts.UserID != "" {
		q = q.Where("user_id = ?", opts.UserID)
	}
	if t, ok := opts.Filters["type"].(string); ok {
		q = q.Where("type = ?", t)
	}
	var rows []memoryModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	return rows, nil
}

func toRecord(m memoryModel, score float64) entity.MemoryRecord {
	return entity.MemoryRecord{
		ID:        m.ID,
		Memory:    m.Memory,
		UserID:    m.UserID,
		Metadata:  m.Metadata,
		Score:     score,
		CreatedAt: m.CreatedAt,
	}
}

// matches reports whether meta holds every filter value. Values are compared
// by their printed form since JSON round trips turn ints into float64.
func matches(meta map[string]any, filters map[string]any) bool {
	for k, want := range filters {
		got, ok := meta[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// overlap is the share of query tokens present in the document.
func overlap(query map[string]struct{}, doc map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hit := 0
	for t := range query {
		if _, ok := doc[t]; ok {
			hit++
		}
	}
	return float64(hit) / float64(len(query))
}

func tokenize(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if len(w) < 3 || stopwords[w] {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "are": true, "from": true, "into": true, "who": true,
}
