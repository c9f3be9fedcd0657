package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/crisphire/crisp/internal/extract"
	"github.com/crisphire/crisp/internal/interview"
	"github.com/crisphire/crisp/internal/logger"
	"github.com/crisphire/crisp/internal/oracle"
	"github.com/crisphire/crisp/internal/oracle/gemini"
	"github.com/crisphire/crisp/internal/secrets"
	"github.com/crisphire/crisp/internal/store"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptContinue   = "Continue previous interview"
	PromptStartNew   = "Start a new interview"
	PromptResumeFile = "Resume file (.pdf or .docx)"
	PromptPasteText  = "Paste resume text"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive mock interview",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("state-file", "s", "", "file holding the session and candidate archive")

	viper.BindPFlag("state-file", runCmd.Flags().Lookup("state-file"))
}

// run drives one interview end to end: resume upload, profile
// collection, six timed rounds, scoring and the final summary.
func run(_ *cobra.Command) {
	ctx := context.Background()

	// A .env file is a convenient place for GEMINI_API_KEY.
	_ = godotenv.Load()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting crisp", zap.String("version", version))

	st := store.New(viper.GetString("state-file"), logger)

	state, err := st.Load()
	if err != nil {
		logger.Warn("state file could not be loaded, starting fresh", zap.Error(err))
		state = store.State{}
	}

	bank, err := interview.LoadBank()
	if err != nil {
		logger.Fatal("loading the question bank", zap.Error(err))
	}

	machine := interview.NewMachine(interview.Deps{
		Logger:     logger,
		Bank:       bank,
		Oracle:     buildOracle(ctx, config, logger),
		Persister:  st,
		Generation: generationPolicy(config),
		Judging:    judgingPolicy(config),
	})
	machine.Restore(state.Session, state.Candidates)

	if machine.InProgress() {
		if !promptContinue(logger) {
			machine.Discard()
		}
	}

	printed := 0

	if !machine.InProgress() {
		text := promptResume(logger)
		if err := machine.SubmitResume(ctx, text); err != nil {
			logger.Fatal("accepting the resume", zap.Error(err))
		}

		printed = flushTranscript(machine, printed)

		for machine.Step() == interview.StepCollect {
			field := machine.MissingField()
			value := promptField(field, logger)
			if err := machine.CollectField(ctx, value); err != nil {
				fmt.Println(err)
				continue
			}
			printed = flushTranscript(machine, printed)
		}
	}

	// Stdin is handed to the round reader only once the prompts are done
	// with it.
	lines := lineReader(bufio.NewReader(os.Stdin))

	for !machine.InterviewDone() {
		round, err := machine.StartRound(ctx)
		if err != nil {
			logger.Fatal("starting a round", zap.Error(err))
		}

		printed = flushTranscript(machine, printed)
		fmt.Printf("(question %d of %d, %s to answer)\n", round.Index+1, interview.RoundCount, round.Budget)

		answer, timedOut := readAnswer(lines, round.Budget)
		if timedOut {
			fmt.Println("Time's up!")
		}

		if err := machine.SubmitAnswer(ctx, answer, timedOut); err != nil {
			logger.Fatal("submitting an answer", zap.Error(err))
		}
		printed = flushTranscript(machine, printed)
	}

	candidate, err := machine.Finish(ctx)
	if err != nil {
		logger.Fatal("finishing the interview", zap.Error(err))
	}

	fmt.Printf("\nInterview complete, %s!\n", candidate.DisplayName())
	fmt.Printf("Final score: %.2f / 10\n", candidate.Score)
	fmt.Printf("Summary: %s\n", candidate.Summary)
}

// buildOracle returns the configured provider, or a disabled oracle so
// the interview still runs on deterministic fallbacks.
func buildOracle(ctx context.Context, config *Config, logger *zap.Logger) oracle.Oracle {
	var oracleCfg *OracleConfig
	if config != nil {
		oracleCfg = config.Oracle
	}

	provider := "gemini"
	model := ""
	keyFile := ""
	if oracleCfg != nil {
		if p := strings.TrimSpace(strings.ToLower(oracleCfg.Provider)); p != "" {
			provider = p
		}
		if oracleCfg.Gemini != nil {
			model = oracleCfg.Gemini.Model
			keyFile = oracleCfg.Gemini.APIKeyFile
		}
	}

	if provider != "gemini" {
		logger.Warn("unsupported oracle provider, running without AI", zap.String("provider", provider))
		return oracle.Unavailable()
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Warn("running without AI: questions, scores and summary fall back to built-ins",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or oracle.gemini.api-key-file"),
		)
		return oracle.Unavailable()
	}

	client, err := gemini.New(ctx, apiKey, model, logger)
	if err != nil {
		logger.Warn("gemini client could not be created, running without AI", zap.Error(err))
		return oracle.Unavailable()
	}

	logger.Info("oracle ready", zap.String("provider", provider), zap.String("model", client.Model()))
	return client
}

func generationPolicy(config *Config) oracle.Policy {
	p := interview.DefaultGenerationPolicy
	if config == nil || config.Oracle == nil {
		return p
	}
	if d, err := time.ParseDuration(config.Oracle.GenerationTimeout); err == nil && d > 0 {
		p.Timeout = d
	}
	if config.Oracle.GenerationRetries > 0 {
		p.Retries = config.Oracle.GenerationRetries
	}
	return p
}

func judgingPolicy(config *Config) oracle.Policy {
	p := interview.DefaultJudgingPolicy
	if config == nil || config.Oracle == nil {
		return p
	}
	if d, err := time.ParseDuration(config.Oracle.JudgeTimeout); err == nil && d > 0 {
		p.Timeout = d
	}
	if config.Oracle.JudgeRetries > 0 {
		p.Retries = config.Oracle.JudgeRetries
	}
	return p
}

// promptContinue asks whether to resume the interrupted interview.
func promptContinue(logger *zap.Logger) bool {
	prompt := promptui.Select{
		Label: "Welcome back! An interview is in progress",
		Items: []string{PromptContinue, PromptStartNew},
	}

	_, choice, err := prompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	return choice == PromptContinue
}

// promptResume obtains resume text from a file or pasted input, retrying
// until something usable arrives.
func promptResume(logger *zap.Logger) string {
	for {
		source := promptui.Select{
			Label: "How would you like to provide the resume?",
			Items: []string{PromptResumeFile, PromptPasteText},
		}

		_, choice, err := source.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if choice == PromptPasteText {
			fmt.Println("Paste the resume text, then finish with an empty line:")
			text := readUntilBlank(os.Stdin)
			if strings.TrimSpace(text) == "" {
				fmt.Println("No text received, let's try again.")
				continue
			}
			return text
		}

		path := promptui.Prompt{Label: "Path to the resume file"}
		p, err := path.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		text, err := extract.Text(strings.TrimSpace(p))
		if err != nil {
			logger.Warn("resume could not be read", zap.Error(err))
			fmt.Println("That file could not be read, let's try again.")
			continue
		}

		return text
	}
}

// promptField collects one missing contact field with inline validation.
func promptField(field string, logger *zap.Logger) string {
	prompt := promptui.Prompt{
		Label: "Your " + field,
		Validate: func(s string) error {
			return interview.ValidateField(field, s)
		},
	}

	value, err := prompt.Run()
	if err != nil {
		logger.Fatal("exiting", zap.Error(err))
	}

	return value
}

// lineReader feeds stdin lines to rounds so a timed-out read does not
// lose the terminal.
func lineReader(r *bufio.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		for {
			line, err := r.ReadString('\n')
			if len(line) == 0 && err != nil {
				close(lines)
				return
			}
			lines <- strings.TrimRight(line, "\r\n")
			if err != nil {
				close(lines)
				return
			}
		}
	}()
	return lines
}

// readAnswer waits for one input line within the budget, printing a
// short countdown near the end. It returns the line and whether the
// budget expired first.
func readAnswer(lines <-chan string, budget time.Duration) (string, bool) {
	deadline := time.NewTimer(budget)
	defer deadline.Stop()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	remaining := int(budget / time.Second)

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return "", true
			}
			return line, false
		case <-deadline.C:
			return "", true
		case <-ticker.C:
			remaining--
			if remaining == 10 || (remaining > 0 && remaining <= 5) {
				fmt.Printf("(%d seconds left)\n", remaining)
			}
		}
	}
}

func readUntilBlank(f *os.File) string {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var b strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// flushTranscript prints chat messages added since the last flush.
func flushTranscript(machine *interview.Machine, printed int) int {
	session := machine.Session()
	if session == nil {
		return printed
	}

	for ; printed < len(session.ChatMessages); printed++ {
		msg := session.ChatMessages[printed]
		switch msg.Sender {
		case interview.SenderBot:
			fmt.Printf("\nInterviewer: %s\n", msg.Text)
		default:
			fmt.Printf("You: %s\n", msg.Text)
		}
	}
	return printed
}
