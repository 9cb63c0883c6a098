package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	// A .env file can carry CHARTSCRIBE_OLLAMA_URL in development setups.
	_ = godotenv.Load()

	dataDir := "data"
	if len(os.Args) > 1 {
		dataDir = os.Args[1]
	}

	p := tea.NewProgram(NewModel(dataDir), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
