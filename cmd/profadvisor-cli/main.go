package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"profadvisor/internal/chatclient"
	"profadvisor/internal/tui"
)

func main() {
	_ = godotenv.Load()

	defaultURL := os.Getenv("PROFADVISOR_SERVER_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	serverURL := flag.String("server", defaultURL, "Professor Advisor server base URL")
	flag.Parse()

	client := chatclient.NewClient(*serverURL)
	program := tea.NewProgram(tui.New(client), tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
