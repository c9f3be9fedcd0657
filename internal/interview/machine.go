package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crisphire/crisp/internal/logger"
	"github.com/crisphire/crisp/internal/oracle"
)

const (
	// TimeoutAnswer is recorded when a round's budget expires with no
	// input.
	TimeoutAnswer = "(Timed out - no answer)"

	startBanner = "Interview starting with 6 resume-based questions..."

	// Seed markers keep self-heal question sets distinguishable from the
	// initial fallback set for the same resume and session.
	healMarker    = "fallback"
	restoreMarker = "restore"
)

// Default oracle call policies. Question generation and profile
// extraction get the longer budget; judging and summaries the shorter.
var (
	DefaultGenerationPolicy = oracle.Policy{Timeout: 12 * time.Second, Retries: 2}
	DefaultJudgingPolicy    = oracle.Policy{Timeout: 10 * time.Second, Retries: 1}
)

// Persister saves the whitelisted state: the active session and the
// candidate archive. Implementations must not persist anything else.
type Persister interface {
	Persist(session *Session, candidates []Candidate) error
}

// Round describes one question/answer round to the caller driving the
// flow.
type Round struct {
	Index    int
	Question string
	Budget   time.Duration
}

// Deps wires the machine's collaborators. Oracle and Persister may be
// nil; the machine then runs fully degraded (fallback questions, zero
// scores, in-memory state).
type Deps struct {
	Logger     *zap.Logger
	Bank       *Bank
	Oracle     oracle.Oracle
	Persister  Persister
	Generation oracle.Policy
	Judging    oracle.Policy
}

// Machine drives a single interview session through
// upload -> collect -> interview -> finished, persisting after every
// mutation and recovering oracle failures with deterministic fallbacks.
type Machine struct {
	logger    *zap.Logger
	bank      *Bank
	persister Persister

	extractor  *ProfileExtractor
	generator  *Generator
	judge      *Judge
	summarizer *Summarizer

	session    *Session
	candidates []Candidate

	// resumeText seeds skill detection and fallback generation. It is
	// deliberately not persisted: after a restart rebuilds seed from the
	// session id alone.
	resumeText string
	profile    Profile
	missing    []string
}

// NewMachine builds a machine over the given dependencies.
func NewMachine(deps Deps) *Machine {
	log := logger.OrNop(deps.Logger)

	o := deps.Oracle
	if o == nil {
		o = oracle.Unavailable()
	}

	generation := deps.Generation
	if generation.Timeout <= 0 {
		generation = DefaultGenerationPolicy
	}
	judging := deps.Judging
	if judging.Timeout <= 0 {
		judging = DefaultJudgingPolicy
	}

	genCaller := oracle.NewCaller(o, generation, log)
	judgeCaller := oracle.NewCaller(o, judging, log)

	return &Machine{
		logger:     log,
		bank:       deps.Bank,
		persister:  deps.Persister,
		extractor:  NewProfileExtractor(genCaller, log),
		generator:  NewGenerator(genCaller, log),
		judge:      NewJudge(judgeCaller, log),
		summarizer: NewSummarizer(judgeCaller, log),
	}
}

// Restore seeds the machine from persisted state. The session is never
// silently discarded: an in-progress interview resumes at its recorded
// index, rebuilding the question list first when it is absent or short.
func (m *Machine) Restore(session *Session, candidates []Candidate) {
	m.candidates = candidates

	if session == nil {
		return
	}

	m.session = session
	m.profile = session.Profile

	if !m.InProgress() {
		return
	}

	if len(session.Questions) < RoundCount || session.CurrentQuestionIndex >= len(session.Questions) {
		seed := HashSeed(m.resumeText + session.ID + restoreMarker)
		session.Questions = BuildFallbackQuestions(m.bank, m.resumeText, seed)
		session.CurrentQuestionIndex = 0
		m.ensureRoundSlices()
		m.save()

		m.logger.Warn("restored session had a short question list; rebuilt it",
			zap.String("session_id", session.ID),
		)
	}

	m.ensureRoundSlices()

	m.logger.Info("previous interview session restored",
		zap.String("session_id", session.ID),
		zap.Int("round", session.CurrentQuestionIndex),
	)
}

// InProgress reports whether a persisted interview can be resumed.
func (m *Machine) InProgress() bool {
	return m.session != nil && m.session.Step == StepInterview && !m.session.Finished
}

// Discard drops the active session so a fresh candidate can start.
func (m *Machine) Discard() {
	m.session = nil
	m.resumeText = ""
	m.profile = Profile{}
	m.missing = nil
	m.save()
}

// Session exposes the active session for rendering. It may be nil.
func (m *Machine) Session() *Session {
	return m.session
}

// Candidates returns the archive of finished candidates.
func (m *Machine) Candidates() []Candidate {
	return m.candidates
}

// Step reports the current state machine position.
func (m *Machine) Step() Step {
	if m.session == nil {
		return StepUpload
	}
	return m.session.Step
}

// SubmitResume accepts extracted resume text, runs profile extraction
// and advances to collect or straight to the interview.
func (m *Machine) SubmitResume(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("resume text is empty")
	}

	m.resumeText = text
	m.session = &Session{Step: StepUpload}

	m.profile = m.extractor.Extract(ctx, text)
	m.session.Profile = m.profile
	m.missing = MissingFields(m.profile)

	if len(m.missing) > 0 {
		m.session.Step = StepCollect
		m.say(SenderBot, collectPrompt(m.missing[0]))
		m.save()
		return nil
	}

	return m.beginInterview(ctx)
}

// MissingField returns the profile field currently being collected, or
// an empty string when collection is complete.
func (m *Machine) MissingField() string {
	if len(m.missing) == 0 {
		return ""
	}
	return m.missing[0]
}

// CollectField validates and stores one missing profile field. A
// ValidationError leaves the machine unchanged and must be reported
// inline.
func (m *Machine) CollectField(ctx context.Context, value string) error {
	if m.session == nil || m.session.Step != StepCollect || len(m.missing) == 0 {
		return errors.New("no field is being collected")
	}

	field := m.missing[0]
	value = strings.TrimSpace(value)
	if err := ValidateField(field, value); err != nil {
		return err
	}

	setProfileField(&m.profile, field, value)
	m.session.Profile = m.profile
	m.missing = m.missing[1:]
	m.say(SenderUser, value)

	if len(m.missing) > 0 {
		m.say(SenderBot, collectPrompt(m.missing[0]))
		m.save()
		return nil
	}

	return m.beginInterview(ctx)
}

// beginInterview assigns a fresh session id, resets the round state,
// generates the six questions (oracle first, deterministic fallback on
// any failure) and persists them.
func (m *Machine) beginInterview(ctx context.Context) error {
	id := uuid.NewString()
	m.session = &Session{
		ID:      id,
		Profile: m.profile,
		Step:    StepInterview,
	}
	m.say(SenderBot, startBanner)
	m.save()

	questions, err := m.generator.Generate(ctx, m.resumeText)
	if err != nil || len(questions) != RoundCount {
		seed := HashSeed(m.resumeText + id)
		questions = BuildFallbackQuestions(m.bank, m.resumeText, seed)
		m.logger.Warn("using skill-based questions (oracle unavailable)", zap.Error(err))
	}

	m.session.Questions = questions
	m.ensureRoundSlices()
	m.save()

	m.logger.Info("interview started",
		zap.String("session_id", id),
		zap.Int("questions", len(questions)),
	)

	return nil
}

// StartRound opens the round at the current index: self-heals a short or
// missing question list, posts the question to the transcript and
// returns the round with its timer budget.
func (m *Machine) StartRound(ctx context.Context) (Round, error) {
	if m.session == nil || m.session.Step != StepInterview {
		return Round{}, errors.New("no interview in progress")
	}

	idx := m.session.CurrentQuestionIndex
	if idx >= RoundCount {
		return Round{}, errors.New("all rounds are complete")
	}

	// Self-heal: a missing or short list is rebuilt and persisted before
	// the same index is retried, never failing the round.
	if len(m.session.Questions) < RoundCount || m.session.Questions[idx] == "" {
		seed := HashSeed(m.resumeText + m.session.ID + healMarker)
		m.session.Questions = BuildFallbackQuestions(m.bank, m.resumeText, seed)
		m.ensureRoundSlices()
		m.save()

		m.logger.Warn("question list was missing or short; rebuilt it",
			zap.String("session_id", m.session.ID),
			zap.Int("round", idx),
		)
	}

	question := m.session.Questions[idx]
	m.say(SenderBot, question)
	m.save()

	return Round{Index: idx, Question: question, Budget: TimerBudget(idx)}, nil
}

// SubmitAnswer records the answer for the open round, scores it and
// advances the index. An empty answer records the timeout marker. The
// auto flag only marks submissions triggered by the countdown.
func (m *Machine) SubmitAnswer(ctx context.Context, text string, auto bool) error {
	if m.session == nil || m.session.Step != StepInterview {
		return errors.New("no interview in progress")
	}

	idx := m.session.CurrentQuestionIndex
	if idx >= RoundCount || idx >= len(m.session.Questions) {
		return errors.New("no round is open")
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		answer = TimeoutAnswer
	}
	if auto {
		m.logger.Warn("time is up, answer submitted automatically", zap.Int("round", idx))
	}

	m.say(SenderUser, answer)
	m.save()

	sessionID := m.session.ID
	score := m.judge.Score(ctx, m.session.Questions[idx], answer)

	// A stale score arriving after the session changed is dropped.
	if m.session == nil || m.session.ID != sessionID {
		m.logger.Debug("discarding score for a stale session", zap.String("session_id", sessionID))
		return nil
	}

	m.ensureRoundSlices()
	m.session.Answers[idx] = answer
	m.session.Scores[idx] = &score
	m.session.CurrentQuestionIndex = idx + 1
	m.save()

	m.logger.Info("answer recorded",
		zap.String("session_id", sessionID),
		zap.Int("round", idx),
		zap.Int("score", score),
	)

	return nil
}

// InterviewDone reports whether every round has been answered.
func (m *Machine) InterviewDone() bool {
	return m.session != nil &&
		m.session.Step == StepInterview &&
		m.session.CurrentQuestionIndex >= RoundCount
}

// Finish computes the final score, generates the summary, archives the
// candidate record and clears the session for the next candidate.
func (m *Machine) Finish(ctx context.Context) (Candidate, error) {
	if m.session == nil || m.session.Step != StepInterview {
		return Candidate{}, errors.New("no interview in progress")
	}

	session := m.session
	session.Step = StepFinished
	session.Finished = true

	total := MeanScore(session.Scores)
	summary := m.summarizer.Summarize(ctx, session.Questions, session.Scores)

	candidate := Candidate{
		ID:           session.ID,
		Profile:      session.Profile,
		Questions:    session.Questions,
		Answers:      session.Answers,
		Scores:       session.Scores,
		ChatMessages: append([]ChatMessage(nil), session.ChatMessages...),
		Score:        total,
		Summary:      summary,
		Finished:     true,
	}

	m.candidates = append(m.candidates, candidate)
	m.session = nil
	m.resumeText = ""
	m.profile = Profile{}
	m.missing = nil
	m.save()

	m.logger.Info("interview finished",
		zap.String("session_id", candidate.ID),
		zap.Float64("score", total),
	)

	return candidate, nil
}

func (m *Machine) say(sender Sender, text string) {
	if m.session == nil {
		return
	}
	m.session.ChatMessages = append(m.session.ChatMessages, ChatMessage{Sender: sender, Text: text})
}

// ensureRoundSlices keeps answers and scores index-aligned with the
// question list.
func (m *Machine) ensureRoundSlices() {
	s := m.session
	if s == nil {
		return
	}
	for len(s.Answers) < len(s.Questions) {
		s.Answers = append(s.Answers, "")
	}
	for len(s.Scores) < len(s.Questions) {
		s.Scores = append(s.Scores, nil)
	}
}

// save persists after a mutation. Persistence failures are non-fatal:
// the flow continues in memory.
func (m *Machine) save() {
	if m.persister == nil {
		return
	}
	if err := m.persister.Persist(m.session, m.candidates); err != nil {
		m.logger.Warn("persisting state failed; continuing in memory", zap.Error(err))
	}
}

func collectPrompt(field string) string {
	return fmt.Sprintf("Please provide your %s.", field)
}
