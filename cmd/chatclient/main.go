package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var (
	serverURL = flag.String("server", "ws://localhost:8080/ws/sessions", "Session WebSocket URL")
	language  = flag.String("lang", "en", "Conversation language (en or hi)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger = zap.NewNop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := NewChatClient(*serverURL, *language, os.Stdout, logger)
	if err := client.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", *serverURL, err)
		os.Exit(1)
	}
	defer client.Close()

	fmt.Println("Symptom assistant. Describe how you feel.")
	fmt.Println("Commands: /lang <en|hi>, /quit")
	fmt.Println("")

	if err := client.Run(ctx, os.Stdin); err != nil {
		logger.Debug("Session ended", zap.Error(err))
	}
}
