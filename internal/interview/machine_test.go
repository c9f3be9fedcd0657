package interview

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/crisphire/crisp/internal/oracle"
)

// routingOracle answers by prompt kind so one stub can drive a whole
// interview. Empty entries mean "fail this kind of call".
type routingOracle struct {
	profile  string
	question func(n int) string
	scores   []string
	summary  string

	questionCalls int
	judgeCalls    int
}

func (r *routingOracle) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.HasPrefix(prompt, "Extract name"):
		if r.profile == "" {
			return "", errors.New("profile extraction unavailable")
		}
		return r.profile, nil
	case strings.HasPrefix(prompt, "Generate ONE"):
		r.questionCalls++
		if r.question == nil {
			return "", errors.New("generation unavailable")
		}
		return r.question(r.questionCalls), nil
	case strings.HasPrefix(prompt, "Score the candidate"):
		r.judgeCalls++
		if r.judgeCalls > len(r.scores) {
			return "", errors.New("judging unavailable")
		}
		return r.scores[r.judgeCalls-1], nil
	default:
		if r.summary == "" {
			return "", errors.New("summary unavailable")
		}
		return r.summary, nil
	}
}

// memPersister records every persisted snapshot.
type memPersister struct {
	session    *Session
	candidates []Candidate
	saves      int
	fail       bool
}

func (m *memPersister) Persist(session *Session, candidates []Candidate) error {
	if m.fail {
		return errors.New("disk full")
	}
	m.session = session
	m.candidates = candidates
	m.saves++
	return nil
}

func newTestMachine(t *testing.T, o oracle.Oracle, p Persister) *Machine {
	t.Helper()

	return NewMachine(Deps{
		Logger:     zap.NewNop(),
		Bank:       mustLoadBank(t),
		Oracle:     o,
		Persister:  p,
		Generation: oracle.Policy{Timeout: time.Second, Retries: 1},
		Judging:    oracle.Policy{Timeout: time.Second, Retries: 1},
	})
}

func completeProfileJSON() string {
	return `{"name": "Ada Lovelace", "email": "ada@example.com", "phone": "9876543210"}`
}

func TestSubmitResumeCollectsMissingFields(t *testing.T) {
	o := &routingOracle{profile: `{"name": "Ada Lovelace", "email": "", "phone": ""}`}
	m := newTestMachine(t, o, &memPersister{})

	if err := m.SubmitResume(context.Background(), "resume mentioning react"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.Step() != StepCollect {
		t.Fatalf("expected the collect step, got %s", m.Step())
	}
	if got := m.MissingField(); got != "email" {
		t.Fatalf("expected email to be collected first, got %q", got)
	}

	session := m.Session()
	last := session.ChatMessages[len(session.ChatMessages)-1]
	if last.Sender != SenderBot || last.Text != "Please provide your email." {
		t.Fatalf("expected the email prompt, got %+v", last)
	}
}

func TestCollectFieldValidationLeavesTranscriptUntouched(t *testing.T) {
	o := &routingOracle{profile: `{"name": "Ada", "email": "", "phone": "9876543210"}`}
	m := newTestMachine(t, o, &memPersister{})

	if err := m.SubmitResume(context.Background(), "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := len(m.Session().ChatMessages)

	err := m.CollectField(context.Background(), "not-an-email")
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected a ValidationError, got %v", err)
	}

	if got := len(m.Session().ChatMessages); got != before {
		t.Fatalf("rejected input changed the transcript: %d -> %d", before, got)
	}
	if m.MissingField() != "email" {
		t.Fatalf("expected email to still be pending")
	}
}

func TestCollectFieldAdvancesToInterview(t *testing.T) {
	o := &routingOracle{profile: `{"name": "Ada", "email": "", "phone": "9876543210"}`}
	p := &memPersister{}
	m := newTestMachine(t, o, p)

	if err := m.SubmitResume(context.Background(), "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.CollectField(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := m.Session()
	if session.Step != StepInterview {
		t.Fatalf("expected the interview step, got %s", session.Step)
	}
	if session.Profile.Email != "ada@example.com" {
		t.Fatalf("collected email not stored: %+v", session.Profile)
	}
	if session.ID == "" {
		t.Fatalf("expected a session id once the interview starts")
	}
	if len(session.Questions) != RoundCount {
		t.Fatalf("expected %d questions, got %d", RoundCount, len(session.Questions))
	}

	found := false
	for _, msg := range session.ChatMessages {
		if msg.Text == startBanner {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the start banner in the transcript")
	}
	if p.saves == 0 {
		t.Fatalf("expected the session to be persisted")
	}
}

func TestInterviewFallsBackWhenGenerationFails(t *testing.T) {
	o := &routingOracle{profile: completeProfileJSON()}
	m := newTestMachine(t, o, &memPersister{})

	if err := m.SubmitResume(context.Background(), "react and python developer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := m.Session()
	if len(session.Questions) != RoundCount {
		t.Fatalf("expected %d fallback questions, got %d", RoundCount, len(session.Questions))
	}

	round, err := m.StartRound(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if round.Index != 0 {
		t.Fatalf("expected round 0, got %d", round.Index)
	}
	if round.Budget != 20*time.Second {
		t.Fatalf("expected a 20s budget for round 0, got %s", round.Budget)
	}
	if round.Question != session.Questions[0] {
		t.Fatalf("round question does not match the list")
	}
}

func TestOracleQuestionsAreUsedWhenAvailable(t *testing.T) {
	o := &routingOracle{
		profile: completeProfileJSON(),
		question: func(n int) string {
			return "Question number " + strconv.Itoa(n) + " about the resume?"
		},
	}
	m := newTestMachine(t, o, &memPersister{})

	if err := m.SubmitResume(context.Background(), "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := m.Session()
	if session.Questions[0] != "Question number 1 about the resume?" {
		t.Fatalf("expected oracle questions, got %q", session.Questions[0])
	}
	if o.questionCalls != RoundCount {
		t.Fatalf("expected %d generation calls, got %d", RoundCount, o.questionCalls)
	}
}

func TestSubmitAnswerRecordsTimeout(t *testing.T) {
	o := &routingOracle{profile: completeProfileJSON()}
	m := newTestMachine(t, o, &memPersister{})

	if err := m.SubmitResume(context.Background(), "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.StartRound(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := m.SubmitAnswer(context.Background(), "   ", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := m.Session()
	if session.Answers[0] != TimeoutAnswer {
		t.Fatalf("expected the timeout marker, got %q", session.Answers[0])
	}
	if session.Scores[0] == nil || *session.Scores[0] != 0 {
		t.Fatalf("expected a zero score for the timed-out round, got %v", session.Scores[0])
	}
	if session.CurrentQuestionIndex != 1 {
		t.Fatalf("expected the index to advance, got %d", session.CurrentQuestionIndex)
	}
}

func TestFullInterviewProducesCandidate(t *testing.T) {
	o := &routingOracle{
		profile: completeProfileJSON(),
		scores:  []string{"8", "4", "6", "0", "10", "7"},
		summary: "Solid fundamentals overall.",
	}
	p := &memPersister{}
	m := newTestMachine(t, o, p)

	ctx := context.Background()
	if err := m.SubmitResume(ctx, "react and node resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for !m.InterviewDone() {
		if _, err := m.StartRound(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := m.SubmitAnswer(ctx, "an answer", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	candidate, err := m.Finish(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := (8.0 + 4 + 6 + 0 + 10 + 7) / 6.0
	if candidate.Score != want {
		t.Fatalf("expected score %v, got %v", want, candidate.Score)
	}
	if candidate.Summary != "Solid fundamentals overall." {
		t.Fatalf("unexpected summary: %q", candidate.Summary)
	}
	if !candidate.Finished {
		t.Fatalf("expected the candidate to be marked finished")
	}

	if m.Session() != nil {
		t.Fatalf("expected the session to be cleared after finishing")
	}
	if len(m.Candidates()) != 1 {
		t.Fatalf("expected one archived candidate, got %d", len(m.Candidates()))
	}
	if p.session != nil {
		t.Fatalf("expected the cleared session to be persisted as nil")
	}
}

func TestFinishFallsBackOnSummaryFailure(t *testing.T) {
	o := &routingOracle{profile: completeProfileJSON()}
	m := newTestMachine(t, o, &memPersister{})

	ctx := context.Background()
	if err := m.SubmitResume(ctx, "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for !m.InterviewDone() {
		if _, err := m.StartRound(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := m.SubmitAnswer(ctx, "answer", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	candidate, err := m.Finish(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidate.Summary != FallbackSummary {
		t.Fatalf("expected the fallback summary, got %q", candidate.Summary)
	}
}

func TestRestoreResumesMidInterview(t *testing.T) {
	o := &routingOracle{profile: completeProfileJSON()}
	p := &memPersister{}
	first := newTestMachine(t, o, p)

	ctx := context.Background()
	if err := first.SubmitResume(ctx, "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := first.StartRound(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := first.SubmitAnswer(ctx, "answer", false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	second := newTestMachine(t, o, &memPersister{})
	second.Restore(p.session, p.candidates)

	if !second.InProgress() {
		t.Fatalf("expected the restored interview to be in progress")
	}

	round, err := second.StartRound(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if round.Index != 3 {
		t.Fatalf("expected to resume at round 3, got %d", round.Index)
	}
	if round.Budget != 60*time.Second {
		t.Fatalf("expected a 60s budget for round 3, got %s", round.Budget)
	}
}

func TestRestoreRebuildsShortQuestionList(t *testing.T) {
	session := &Session{
		ID:      "session-short",
		Step:    StepInterview,
		Profile: Profile{Name: "Ada"},

		Questions:            []string{"only one question"},
		CurrentQuestionIndex: 3,
	}

	m := newTestMachine(t, &routingOracle{}, &memPersister{})
	m.Restore(session, nil)

	if len(session.Questions) != RoundCount {
		t.Fatalf("expected the question list rebuilt to %d, got %d", RoundCount, len(session.Questions))
	}
	if session.CurrentQuestionIndex != 0 {
		t.Fatalf("expected the index reset to 0, got %d", session.CurrentQuestionIndex)
	}
}

func TestStartRoundSelfHealsEmptyQuestion(t *testing.T) {
	o := &routingOracle{profile: completeProfileJSON()}
	m := newTestMachine(t, o, &memPersister{})

	ctx := context.Background()
	if err := m.SubmitResume(ctx, "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Session().Questions[0] = ""

	round, err := m.StartRound(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if round.Question == "" {
		t.Fatalf("expected a rebuilt question for round 0")
	}
	if len(m.Session().Questions) != RoundCount {
		t.Fatalf("expected a full question list after healing")
	}
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	o := &routingOracle{profile: completeProfileJSON()}
	m := newTestMachine(t, o, &memPersister{fail: true})

	if err := m.SubmitResume(context.Background(), "resume"); err != nil {
		t.Fatalf("expected the flow to continue in memory, got %v", err)
	}
	if m.Step() != StepInterview {
		t.Fatalf("expected the interview step despite persist failures, got %s", m.Step())
	}
}

func TestDiscardClearsSession(t *testing.T) {
	o := &routingOracle{profile: completeProfileJSON()}
	p := &memPersister{}
	m := newTestMachine(t, o, p)

	if err := m.SubmitResume(context.Background(), "resume"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.Discard()

	if m.Session() != nil {
		t.Fatalf("expected no session after discarding")
	}
	if m.Step() != StepUpload {
		t.Fatalf("expected the upload step after discarding, got %s", m.Step())
	}
	if p.session != nil {
		t.Fatalf("expected the discard to be persisted")
	}
}
