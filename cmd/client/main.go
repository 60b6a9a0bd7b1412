package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"parley/internal/client"
	"parley/internal/config"
)

func main() {
	var (
		serverAddr string
		username   string
	)
	flag.StringVar(&serverAddr, "addr", "", "server address as host[:port][/channel]")
	flag.StringVar(&username, "user", "", "username to join with")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if serverAddr != "" {
		cfg.ServerAddr = serverAddr
	}
	if username != "" {
		cfg.Username = username
	}
	if cfg.Username == "" {
		fmt.Fprintln(os.Stderr, "a username is required: pass -user or set PARLEY_USERNAME")
		os.Exit(1)
	}

	app, err := client.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init client: %v\n", err)
		os.Exit(1)
	}

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "client exited with error: %v\n", err)
		os.Exit(1)
	}
}
