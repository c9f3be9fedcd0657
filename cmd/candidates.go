package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/crisphire/crisp/internal/interview"
	"github.com/crisphire/crisp/internal/logger"
	"github.com/crisphire/crisp/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List interviewed candidates, best score first",
	Run: func(cmd *cobra.Command, _ []string) {
		listCandidates(cmd)
	},
}

var candidatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one candidate's profile, transcript and summary",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		showCandidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(candidatesCmd)
	candidatesCmd.AddCommand(candidatesShowCmd)

	candidatesCmd.PersistentFlags().StringP("output", "o", "text", "output format: text or json")
}

func loadCandidates() ([]interview.Candidate, *zap.Logger) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	st := store.New(viper.GetString("state-file"), logger)
	state, err := st.Load()
	if err != nil {
		logger.Fatal("loading the candidate archive", zap.Error(err))
	}

	return state.Candidates, logger
}

func listCandidates(cmd *cobra.Command) {
	candidates, _ := loadCandidates()
	ranked := interview.RankCandidates(candidates)

	if cmd.Flag("output").Value.String() == "json" {
		pretty, _ := json.MarshalIndent(ranked, "", "  ")
		fmt.Println(string(pretty))
		return
	}

	if len(ranked) == 0 {
		fmt.Println("No candidates interviewed yet.")
		return
	}

	for i, c := range ranked {
		fmt.Printf("%d. %s (%.2f / 10) %s\n", i+1, c.DisplayName(), c.Score, c.ID)
	}
}

func showCandidate(cmd *cobra.Command, id string) {
	candidates, logger := loadCandidates()

	candidate, ok := interview.FindCandidate(candidates, id)
	if !ok {
		logger.Fatal("candidate not found", zap.String("id", id))
	}

	if cmd.Flag("output").Value.String() == "json" {
		pretty, _ := json.MarshalIndent(candidate, "", "  ")
		fmt.Println(string(pretty))
		return
	}

	fmt.Printf("Candidate: %s\n", candidate.DisplayName())
	fmt.Printf("Email:     %s\n", candidate.Profile.Email)
	fmt.Printf("Phone:     %s\n", candidate.Profile.Phone)
	fmt.Printf("Score:     %.2f / 10\n\n", candidate.Score)

	for i, q := range candidate.Questions {
		score := 0
		if i < len(candidate.Scores) && candidate.Scores[i] != nil {
			score = *candidate.Scores[i]
		}
		answer := ""
		if i < len(candidate.Answers) {
			answer = candidate.Answers[i]
		}
		fmt.Printf("Q%d (%d/10): %s\n", i+1, score, q)
		fmt.Printf("A%d: %s\n\n", i+1, answer)
	}

	fmt.Printf("Summary: %s\n", candidate.Summary)
}
