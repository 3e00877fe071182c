package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hupe1980/agentcrew/evaluation"
	"github.com/spf13/cobra"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run a turn-bounded competency assessment",
	Long: `Asks up to the configured number of evaluation questions, analyzes
each answer, and finishes with a competency level plus the strengths and
weaknesses observed across the whole run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		crew, cleanup, err := buildCrew()
		if err != nil {
			return err
		}
		defer cleanup()

		sessionID := uuid.NewString()
		run, question, err := crew.StartEvaluation(cmd.Context(), sessionID)
		if err != nil {
			return err
		}

		color.Cyan("Competency assessment (up to %d questions). Empty answer aborts.", run.MaxQuestions())

		questionLabel := color.New(color.FgMagenta, color.Bold)
		scanner := bufio.NewScanner(os.Stdin)

		for {
			questionLabel.Printf("\nQ%d: ", run.QuestionCount())
			color.White("%s", question)

			color.New(color.FgGreen, color.Bold).Print("you> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			answer := strings.TrimSpace(scanner.Text())
			if answer == "" {
				color.Yellow("Assessment aborted.")
				return nil
			}

			step, err := crew.AdvanceEvaluation(cmd.Context(), run, answer)
			if err != nil {
				return err
			}
			if step.Done {
				printReport(step.Report)
				return nil
			}
			question = step.Question
		}
	},
}

func printReport(report *evaluation.Report) {
	color.Cyan("\nAssessment complete after %d questions.", report.QuestionsAsked)
	color.New(color.FgWhite, color.Bold).Printf("Level: %s (confidence %.2f)\n", report.Level, report.Confidence)

	if len(report.Strengths) > 0 {
		color.Green("Strengths:")
		for _, s := range report.Strengths {
			color.Green("  + %s", s)
		}
	}
	if len(report.Weaknesses) > 0 {
		color.Yellow("Weaknesses:")
		for _, w := range report.Weaknesses {
			color.Yellow("  - %s", w)
		}
	}
	if len(report.Recommendations) > 0 {
		color.Cyan("Recommendations:")
		for _, r := range report.Recommendations {
			color.Cyan("  * %s", r)
		}
	}
}
