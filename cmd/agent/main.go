package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-advisor/internal/application/port/input"
	"stock-advisor/internal/di"
	"stock-advisor/internal/infrastructure/env"
	"stock-advisor/internal/infrastructure/userinteraction"
)

func main() {
	envService := env.NewEnvService()
	console := userinteraction.NewConsole(os.Stdin, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stock, err := console.AskQuestion(ctx, "Which stock should I analyze?")
	if err != nil {
		log.Fatalf("failed to read input: %v", err)
	}

	cfg, err := di.ConfigFromEnv(envService)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	cfg.Progress = console
	if cfg.LogFile == "" {
		cfg.LogFile = "log/agent.log"
	}
	// console output already shows every step
	if envService.Get("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	result, err := container.Advisor.Analyze(ctx, input.AnalyzeRequest{
		APIKey: envService.MustGet("OPENAI_API_KEY"),
		Stock:  stock,
	})
	if err != nil {
		container.Logger.Error("Analysis failed", "error", err)
		fmt.Printf("\nAnalysis failed: %v\n", err)
		container.Close()
		os.Exit(1)
	}

	container.Logger.Info("Analysis completed", "iterations", result.Iterations, "recommendation", result.Recommendation)
}
