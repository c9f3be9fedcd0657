package interview

import "time"

// Step identifies the state machine position of a session.
type Step string

const (
	StepUpload    Step = "upload"
	StepCollect   Step = "collect"
	StepInterview Step = "interview"
	StepFinished  Step = "finished"
)

// Sender identifies who produced a chat message.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// ChatMessage is a single entry of the interview transcript.
type ChatMessage struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Profile holds the candidate contact details extracted from the resume
// or collected interactively. Fields stay empty until known.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Session is the single in-progress interview. It is mutated by the
// state machine and persisted after every mutation.
type Session struct {
	ID      string  `json:"id"`
	Profile Profile `json:"profile"`
	Step    Step    `json:"step"`

	// Questions holds exactly RoundCount entries once the interview step
	// is entered. Answers and Scores are index-aligned with Questions and
	// filled in as rounds complete; a nil score means the round was never
	// judged.
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
	Scores    []*int   `json:"scores"`

	ChatMessages         []ChatMessage `json:"chatMessages"`
	CurrentQuestionIndex int           `json:"currentQuestionIndex"`
	Finished             bool          `json:"finished"`
}

// Candidate is the immutable archived snapshot of a finished session.
type Candidate struct {
	ID           string        `json:"id"`
	Profile      Profile       `json:"profile"`
	Questions    []string      `json:"questions"`
	Answers      []string      `json:"answers"`
	Scores       []*int        `json:"scores"`
	ChatMessages []ChatMessage `json:"chatMessages"`
	Score        float64       `json:"score"`
	Summary      string        `json:"summary"`
	Finished     bool          `json:"finished"`
}

// Difficulty is a question difficulty tier.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// RoundCount is the fixed number of question/answer rounds per interview.
const RoundCount = 6

// difficultySlots is the fixed difficulty multiset of the six rounds.
var difficultySlots = [RoundCount]Difficulty{Easy, Easy, Medium, Medium, Hard, Hard}

// timerBudgets holds the per-round answer budgets in seconds, aligned
// with difficultySlots.
var timerBudgets = [RoundCount]int{20, 20, 60, 60, 120, 120}

// SlotDifficulty returns the difficulty of round index i.
func SlotDifficulty(i int) Difficulty {
	if i < 0 || i >= RoundCount {
		return Medium
	}
	return difficultySlots[i]
}

// TimerBudget returns the answer time budget of round index i.
func TimerBudget(i int) time.Duration {
	if i < 0 || i >= RoundCount {
		return 30 * time.Second
	}
	return time.Duration(timerBudgets[i]) * time.Second
}

// MeanScore returns the arithmetic mean of the recorded (non-nil) scores.
// Unscored rounds are excluded from the denominator, which never drops
// below one.
func MeanScore(scores []*int) float64 {
	sum := 0
	count := 0
	for _, s := range scores {
		if s == nil {
			continue
		}
		sum += *s
		count++
	}
	if count == 0 {
		count = 1
	}
	return float64(sum) / float64(count)
}
