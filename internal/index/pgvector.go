package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/sitelens/sitelens/internal/domain"
)

// PGVector is the Postgres-backed Index. Chunks live in the chunks table with
// a pgvector embedding column; similarity is cosine distance mapped into
// (0,1] so higher is better.
type PGVector struct {
	pool *pgxpool.Pool
}

func NewPGVector(pool *pgxpool.Pool) *PGVector {
	return &PGVector{pool: pool}
}

func (p *PGVector) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		siteContext, err := marshalSiteContext(c.SiteContext)
		if err != nil {
			return domain.NewIndexUnavailable(err)
		}
		_, err = p.pool.Exec(ctx,
			`INSERT INTO chunks
				(id, document_id, text, position, start_offset, strategy, site_context, embedding)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (id) DO UPDATE SET
				document_id = EXCLUDED.document_id,
				text = EXCLUDED.text,
				position = EXCLUDED.position,
				start_offset = EXCLUDED.start_offset,
				strategy = EXCLUDED.strategy,
				site_context = EXCLUDED.site_context,
				embedding = EXCLUDED.embedding`,
			c.ID,
			c.DocumentID,
			c.Text,
			c.Position,
			c.StartOffset,
			string(c.Strategy),
			siteContext,
			pgvector.NewVector(c.Embedding),
		)
		if err != nil {
			return domain.NewIndexUnavailable(err)
		}
	}
	return nil
}

func (p *PGVector) DeleteDocument(ctx context.Context, documentID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID)
	if err != nil {
		return domain.NewIndexUnavailable(err)
	}
	return nil
}

func (p *PGVector) Search(ctx context.Context, vector []float32, topK int) ([]Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}

	rows, err := p.pool.Query(ctx,
		`SELECT id, document_id, text, position, start_offset, strategy, site_context,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM chunks
		 ORDER BY score DESC, id
		 LIMIT $2`,
		pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, domain.NewIndexUnavailable(err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var (
			cand     Candidate
			strategy string
			rawCtx   []byte
		)
		if err := rows.Scan(
			&cand.Chunk.ID,
			&cand.Chunk.DocumentID,
			&cand.Chunk.Text,
			&cand.Chunk.Position,
			&cand.Chunk.StartOffset,
			&strategy,
			&rawCtx,
			&cand.Score,
		); err != nil {
			return nil, domain.NewIndexUnavailable(err)
		}
		cand.Chunk.Strategy = domain.ChunkStrategy(strategy)
		if len(rawCtx) > 0 {
			var sc domain.SiteContext
			if err := json.Unmarshal(rawCtx, &sc); err != nil {
				return nil, domain.NewIndexUnavailable(fmt.Errorf("decode site_context for chunk %s: %w", cand.Chunk.ID, err))
			}
			cand.Chunk.SiteContext = &sc
		}
		out = append(out, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewIndexUnavailable(err)
	}
	return out, nil
}

func (p *PGVector) Count(ctx context.Context) (int, error) {
	var n int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, domain.NewIndexUnavailable(err)
	}
	return n, nil
}

func (p *PGVector) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `TRUNCATE chunks`); err != nil {
		return domain.NewIndexUnavailable(err)
	}
	return nil
}

func marshalSiteContext(sc *domain.SiteContext) ([]byte, error) {
	if sc == nil {
		return nil, nil
	}
	return json.Marshal(sc)
}
