package steps

import (
	"context"
	"fmt"

	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
)

// Memory appends the finished run to the history log.
type Memory struct {
	Log ports.MemoryLog
}

func (s *Memory) Name() string   { return domain.StepMemory }
func (s *Memory) Owns() []string { return []string{domain.FieldSavedToMemory} }

func (s *Memory) Execute(ctx context.Context, rec domain.Record) domain.Update {
	if rec.EditedContent == "" {
		return domain.Fail("no content to save")
	}
	if err := s.Log.Append(ctx, domain.NewMemoryEntry(&rec)); err != nil {
		return domain.Fail(fmt.Sprintf("memory error: %v", err))
	}
	return domain.Update{domain.FieldSavedToMemory: true}
}
