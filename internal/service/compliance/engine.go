package compliance

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/collegiumai/governance-backend/internal/domain/compliance"
	apperrors "github.com/collegiumai/governance-backend/internal/errors"
)

// Engine is the framework registry. It routes assessment runs to the
// registered assessors, owns the submitted evidence, and keeps the
// per-framework assessment history in memory.
type Engine struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	assessors map[string]FrameworkAssessor
	evidence  map[string]EvidenceIndex
	history   map[string][]*compliance.Assessment
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger:    logger.Named("compliance"),
		assessors: make(map[string]FrameworkAssessor),
		evidence:  make(map[string]EvidenceIndex),
		history:   make(map[string][]*compliance.Assessment),
	}
}

// Register adds an assessor to the registry, replacing any previous
// assessor for the same framework.
func (e *Engine) Register(assessor FrameworkAssessor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.assessors[assessor.Name()] = assessor
	if e.evidence[assessor.Name()] == nil {
		e.evidence[assessor.Name()] = make(EvidenceIndex)
	}
}

// Frameworks lists registered framework names, sorted.
func (e *Engine) Frameworks() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.assessors))
	for name := range e.assessors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Standards returns the standard set of a registered framework, or nil
// for an unknown one.
func (e *Engine) Standards(framework string) []*compliance.Standard {
	e.mu.RLock()
	defer e.mu.RUnlock()
	assessor, ok := e.assessors[framework]
	if !ok {
		return nil
	}
	return assessor.Standards()
}

// SubmitEvidence attaches evidence to a framework standard. Returns
// false when the framework is unregistered or the standard id is not
// part of its standard set.
func (e *Engine) SubmitEvidence(framework string, ev *compliance.Evidence) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	assessor, ok := e.assessors[framework]
	if !ok {
		e.logger.Warn("evidence submitted for unknown framework", zap.String("framework", framework))
		return false
	}

	var std *compliance.Standard
	for _, s := range assessor.Standards() {
		if s.ID == ev.StandardID {
			std = s
			break
		}
	}
	if std == nil {
		e.logger.Warn("evidence submitted for unknown standard",
			zap.String("framework", framework),
			zap.String("standard_id", ev.StandardID),
		)
		return false
	}
	if !std.AcceptsEvidence(ev.Type) {
		e.logger.Warn("evidence kind not accepted by standard",
			zap.String("standard_id", std.ID),
			zap.String("kind", ev.Type.String()),
		)
		return false
	}

	e.evidence[framework][ev.StandardID] = append(e.evidence[framework][ev.StandardID], ev)
	return true
}

// VerifyEvidence marks a submitted evidence item as verified. False on
// unknown framework or evidence id.
func (e *Engine) VerifyEvidence(framework string, evidenceID uuid.UUID, verifier string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	index, ok := e.evidence[framework]
	if !ok {
		return false
	}
	for _, items := range index {
		for _, ev := range items {
			if ev.ID == evidenceID {
				if err := ev.Verify(verifier); err != nil {
					e.logger.Warn("evidence verification rejected", zap.Error(err))
					return false
				}
				return true
			}
		}
	}
	return false
}

// AssessFramework runs one assessment for the named framework and
// appends the result to history. The assessor works on a snapshot of
// the evidence index so a concurrent SubmitEvidence or VerifyEvidence
// never races with the scoring pass.
func (e *Engine) AssessFramework(ctx context.Context, framework string, input AssessmentInput) (*compliance.Assessment, error) {
	e.mu.RLock()
	assessor, ok := e.assessors[framework]
	var evidence EvidenceIndex
	if ok {
		evidence = snapshotEvidence(e.evidence[framework])
	}
	e.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewUnknownFrameworkError(framework)
	}

	assessment, err := assessor.Assess(ctx, evidence, input)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.history[framework] = append(e.history[framework], assessment)
	e.mu.Unlock()

	return assessment, nil
}

// AssessAllFrameworks runs every registered assessor. One framework's
// failure never aborts the others; failures are logged and the
// successes returned.
func (e *Engine) AssessAllFrameworks(ctx context.Context, input AssessmentInput) map[string]*compliance.Assessment {
	results := make(map[string]*compliance.Assessment)
	for _, framework := range e.Frameworks() {
		assessment, err := e.AssessFramework(ctx, framework, input)
		if err != nil {
			e.logger.Error("framework assessment failed",
				zap.String("framework", framework),
				zap.Error(err),
			)
			continue
		}
		results[framework] = assessment
	}
	return results
}

// snapshotEvidence copies the index and every evidence record in it.
// Callers hold at least a read lock.
func snapshotEvidence(index EvidenceIndex) EvidenceIndex {
	snapshot := make(EvidenceIndex, len(index))
	for standardID, items := range index {
		copies := make([]*compliance.Evidence, len(items))
		for i, ev := range items {
			c := *ev
			copies[i] = &c
		}
		snapshot[standardID] = copies
	}
	return snapshot
}

// Summary reduces the history to the most recent assessment per
// framework. Older assessments stay in history but are excluded here.
func (e *Engine) Summary() map[string]*compliance.Assessment {
	e.mu.RLock()
	defer e.mu.RUnlock()

	latest := make(map[string]*compliance.Assessment)
	for framework, assessments := range e.history {
		for _, a := range assessments {
			current, ok := latest[framework]
			if !ok || a.AssessedAt.After(current.AssessedAt) {
				latest[framework] = a
			}
		}
	}
	return latest
}

// History returns the full assessment history of one framework, oldest
// first.
func (e *Engine) History(framework string) []*compliance.Assessment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	history := e.history[framework]
	out := make([]*compliance.Assessment, len(history))
	copy(out, history)
	return out
}
