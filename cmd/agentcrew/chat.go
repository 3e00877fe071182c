package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/hupe1980/agentcrew"
	"github.com/spf13/cobra"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat routed through the agent registry",
	Long: `Starts a read-eval loop. Each message is classified, routed to the
matching specialist agent and answered. Commands inside the loop:

  /history   show the session's conversation history
  /clear     reset the session's conversation history
  /exit      leave the chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		crew, cleanup, err := buildCrew()
		if err != nil {
			return err
		}
		defer cleanup()

		sessionID := chatSessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		if err := crew.RestoreSession(cmd.Context(), sessionID); err != nil {
			color.Yellow("Could not restore session history: %v", err)
		}

		color.Cyan("AgentCrew chat (session %s). Type /exit to quit.", sessionID)

		scanner := bufio.NewScanner(os.Stdin)
		prompt := color.New(color.FgGreen, color.Bold)
		agentLabel := color.New(color.FgMagenta, color.Bold)

		for {
			prompt.Print("you> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				continue
			}

			switch input {
			case "/exit":
				return nil
			case "/clear":
				if err := crew.ClearHistory(sessionID); err != nil {
					color.Yellow("%v", err)
				} else {
					color.Cyan("History cleared.")
				}
				continue
			case "/history":
				printHistory(crew, sessionID)
				continue
			}

			result, err := crew.SubmitTask(cmd.Context(), input, sessionID)
			if err != nil {
				color.Red("Error: %v", err)
				continue
			}

			agentLabel.Printf("%s> ", result.AgentUsed)
			fmt.Println(result.Payload)
		}
	},
}

func printHistory(crew *agentcrew.Crew, sessionID string) {
	history, err := crew.History(sessionID)
	if err != nil {
		color.Yellow("%v", err)
		return
	}
	for _, msg := range history {
		fmt.Printf("%3d %-5s %s\n", msg.Order, msg.Role, msg.Content)
	}
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session id to resume (default: a fresh session)")
}
