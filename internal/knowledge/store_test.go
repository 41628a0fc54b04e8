package knowledge

import (
	"context"
	"strings"
	"testing"

	"github.com/pgvector/pgvector-go"

	"github.com/awaqi/supportbot/internal/log"
)

// AddBatch validation runs before any database work, so these cases need
// no live pool.
func TestAddBatch_Validation(t *testing.T) {
	s := &Store{logger: log.NewNop()}
	ctx := context.Background()
	chunk := Chunk{Content: "c", Metadata: map[string]string{MetaBotID: "bot-1"}}

	t.Run("count mismatch", func(t *testing.T) {
		err := s.AddBatch(ctx, []Chunk{chunk}, nil)
		if err == nil || !strings.Contains(err.Error(), "mismatch") {
			t.Errorf("AddBatch() error = %v, want count mismatch", err)
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		if err := s.AddBatch(ctx, nil, nil); err == nil {
			t.Error("AddBatch() accepted an empty batch")
		}
	})

	t.Run("wrong vector dimension", func(t *testing.T) {
		short := pgvector.NewVector([]float32{0.1, 0.2, 0.3})
		err := s.AddBatch(ctx, []Chunk{chunk}, []pgvector.Vector{short})
		if err == nil || !strings.Contains(err.Error(), "dimension") {
			t.Errorf("AddBatch() error = %v, want dimension error", err)
		}
	})
}
