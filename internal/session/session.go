// Package session holds the state of one company-research conversation:
// the stage it is in, the transcript, and the analyses it produced.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/pipeline"
	"github.com/sells-group/company-intel/internal/report"
)

// Stage is where a conversation stands.
type Stage string

const (
	// StageIdle waits for a company name.
	StageIdle Stage = "idle"
	// StageSourcesFound waits for the user to confirm the sources.
	StageSourcesFound Stage = "sources_found"
	// StageAnalyzed has a quick analysis; downloads and deep analysis are
	// available.
	StageAnalyzed Stage = "analyzed"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	Time    time.Time `json:"time"`
}

// WelcomeMessage opens every conversation.
const WelcomeMessage = `👋 Welcome! I can help you analyze companies, just type a company name (e.g., "Madkudu")

I'll analyze the company and provide insights about:
- Company overview and description
- Products and services
- Target market and customer segments
- Sales approach and go-to-market strategy
- Company size and location
- And more!

What company would you like to analyze?`

// User-side prompts recorded when the user confirms an action.
const (
	AnalyzePrompt = "Yes, analyze these sources"
	DeepPrompt    = "Create deep website analysis"
)

// Runner performs the analysis steps. *pipeline.Pipeline satisfies it.
type Runner interface {
	FindSources(ctx context.Context, company string) (model.Sources, error)
	Analyze(ctx context.Context, src model.Sources, mode pipeline.Mode) (*pipeline.Result, error)
	Deepen(ctx context.Context, prev *pipeline.Result) (*pipeline.Result, error)
}

var (
	// ErrWrongStage reports an action the current stage does not allow.
	ErrWrongStage = errors.New("action not allowed in current stage")
	// ErrBusy reports an action started while another is still running.
	ErrBusy = errors.New("another action is in progress")
	// ErrNotFound reports an unknown session id.
	ErrNotFound = errors.New("session not found")
)

// Session is one conversation. Actions are serialized; reads may happen
// while an action runs.
type Session struct {
	ID        string
	CreatedAt time.Time

	runner Runner
	run    sync.Mutex

	mu        sync.RWMutex
	stage     Stage
	busy      bool
	messages  []Message
	sources   model.Sources
	quick     *pipeline.Result
	deep      *pipeline.Result
	updatedAt time.Time
}

// New starts a conversation with the welcome message.
func New(runner Runner) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		runner:    runner,
		stage:     StageIdle,
		updatedAt: now,
	}
	s.appendLocked(RoleAssistant, WelcomeMessage)
	return s
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID        string           `json:"id"`
	Stage     Stage            `json:"stage"`
	Busy      bool             `json:"busy"`
	Messages  []Message        `json:"messages"`
	Sources   model.Sources    `json:"sources"`
	Quick     *pipeline.Result `json:"quick,omitempty"`
	Deep      *pipeline.Result `json:"deep,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return Snapshot{
		ID:        s.ID,
		Stage:     s.stage,
		Busy:      s.busy,
		Messages:  msgs,
		Sources:   s.sources,
		Quick:     s.quick,
		Deep:      s.deep,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

// Stage returns the current stage.
func (s *Session) Stage() Stage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stage
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	return s.Snapshot().Messages
}

// Search looks up a company's sources. It is allowed only when idle; on
// success the session moves to StageSourcesFound. When nothing is found
// the session stays idle and the returned error wraps model.ErrNoSources.
func (s *Session) Search(ctx context.Context, company string) (model.Sources, error) {
	company = strings.TrimSpace(company)
	if company == "" {
		return model.Sources{}, eris.New("session: company name is required")
	}
	if err := s.begin(StageIdle); err != nil {
		return model.Sources{}, err
	}
	defer s.end()

	s.append(RoleUser, company)
	src, err := s.runner.FindSources(ctx, company)
	if err != nil {
		if errors.Is(err, model.ErrNoSources) {
			s.append(RoleAssistant, "No website or LinkedIn profile found for this company.")
		} else {
			s.append(RoleAssistant, "Search failed: "+err.Error())
		}
		return src, err
	}

	s.mu.Lock()
	s.sources = src
	s.stage = StageSourcesFound
	s.mu.Unlock()
	s.append(RoleAssistant, report.FormatSources(src))
	return src, nil
}

// Analyze runs the quick analysis of the found sources and moves the
// session to StageAnalyzed.
func (s *Session) Analyze(ctx context.Context) (*pipeline.Result, error) {
	if err := s.begin(StageSourcesFound); err != nil {
		return nil, err
	}
	defer s.end()

	s.append(RoleUser, AnalyzePrompt)
	s.mu.RLock()
	src := s.sources
	s.mu.RUnlock()

	res, err := s.runner.Analyze(ctx, src, pipeline.ModeQuick)
	if err != nil {
		s.append(RoleAssistant, "Analysis failed: "+err.Error())
		return nil, err
	}

	s.mu.Lock()
	s.quick = res
	s.stage = StageAnalyzed
	s.mu.Unlock()
	s.append(RoleAssistant, report.FormatSummary(res.Summary))
	return res, nil
}

// Deepen runs the deep website analysis. It needs a quick analysis with a
// website and can run once per analysis; the session stays in
// StageAnalyzed.
func (s *Session) Deepen(ctx context.Context) (*pipeline.Result, error) {
	if err := s.begin(StageAnalyzed); err != nil {
		return nil, err
	}
	defer s.end()

	s.mu.RLock()
	quick, deep := s.quick, s.deep
	s.mu.RUnlock()
	if deep != nil {
		return deep, nil
	}
	if quick == nil || quick.Sources.Website == "" {
		return nil, eris.Wrap(ErrWrongStage, "session: deep analysis needs a website")
	}

	s.append(RoleUser, DeepPrompt)
	res, err := s.runner.Deepen(ctx, quick)
	if err != nil {
		s.append(RoleAssistant, "Deep analysis failed: "+err.Error())
		return nil, err
	}

	s.mu.Lock()
	s.deep = res
	s.mu.Unlock()
	s.append(RoleAssistant, report.FormatSummary(res.Summary))
	return res, nil
}

// Downloads returns the artifacts produced so far.
func (s *Session) Downloads(f report.Format) ([]report.Download, error) {
	s.mu.RLock()
	quick, deep := s.quick, s.deep
	s.mu.RUnlock()
	if quick == nil {
		return nil, eris.Wrap(ErrWrongStage, "session: nothing to download yet")
	}
	return report.Downloads(quick, deep, f)
}

// Reset discards results and returns to StageIdle, keeping the ID. The
// transcript restarts with the welcome message.
func (s *Session) Reset() error {
	if !s.run.TryLock() {
		return ErrBusy
	}
	defer s.run.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = StageIdle
	s.sources = model.Sources{}
	s.quick = nil
	s.deep = nil
	s.messages = nil
	s.appendLocked(RoleAssistant, WelcomeMessage)
	zap.L().Debug("session: reset", zap.String("session_id", s.ID))
	return nil
}

func (s *Session) begin(want Stage) error {
	if !s.run.TryLock() {
		return ErrBusy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != want {
		s.run.Unlock()
		return eris.Wrapf(ErrWrongStage, "session: stage is %s, want %s", s.stage, want)
	}
	s.busy = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
	s.run.Unlock()
}

func (s *Session) append(role Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(role, content)
}

func (s *Session) appendLocked(role Role, content string) {
	now := time.Now().UTC()
	s.messages = append(s.messages, Message{Role: role, Content: content, Time: now})
	s.updatedAt = now
}
