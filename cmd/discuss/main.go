package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ankitcoder135/AI-Voice-Agent/internal/api/assistant"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/entity"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/apiclient"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/assemblyai"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/log"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/microphone"
	"github.com/ankitcoder135/AI-Voice-Agent/pkg/speaker"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Fatalf("Error loading .env file: %v", err)
	}

	apiURL := flag.String("api", envOr("API_BASE_URL", "http://localhost:3000/api/v1"), "voice agent API base URL")
	accessToken := flag.String("token", os.Getenv("ACCESS_TOKEN"), "bearer token of the signed in user")
	roomID := flag.String("room", "", "discussion room id")
	notes := flag.Bool("notes", true, "generate notes after disconnecting")
	flag.Parse()

	if *roomID == "" || *accessToken == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.New(*apiURL, *accessToken)

	room, err := client.GetRoom(ctx, *roomID)
	if err != nil {
		logger.Fatalf("Failed to load discussion room: %v", err)
	}

	option, ok := entity.CoachingOptionByName(room.CoachingOption)
	if !ok {
		logger.Fatalf("Unknown coaching option %q", room.CoachingOption)
	}

	out := newTerminalObserver(os.Stdout)
	controller := voice.NewController(
		voice.RoomConfig{
			RoomID:         room.ID,
			Topic:          room.Topic,
			CoachingOption: room.CoachingOption,
			ExpertName:     room.ExpertName,
			Prompt:         option.Prompt(room.Topic),
		},
		voice.Dependencies{
			Tokens:      client,
			Transcriber: assemblyai.NewTranscriber(assemblyai.ConfigFromEnv(), logger),
			Microphone:  microphone.New(voice.BlockSize, logger),
			Responder:   client,
			Synthesizer: client,
			Player:      speaker.New(speaker.DefaultSampleRate),
			Store:       client,
			Observer:    out,
			Log:         logger,
		},
		voice.WithInitialHistory(room.Conversation),
	)

	fmt.Fprintf(os.Stdout, "%s with %s on %q. Press Ctrl-C to end the session.\n", room.CoachingOption, room.ExpertName, room.Topic)
	out.replay(room.Conversation)

	if err := controller.Connect(ctx); err != nil {
		logger.Fatalf("Failed to connect: %v", err)
	}

	<-ctx.Done()
	fmt.Fprintln(os.Stdout)

	teardownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := controller.Disconnect(teardownCtx); err != nil {
		logger.Errorf("Disconnect failed: %v", err)
	}

	if !*notes {
		return
	}

	fmt.Fprintln(os.Stdout, "Generating notes...")
	res, err := client.GenerateNotes(teardownCtx, assistant.GenerateNotesRequest{
		RoomID:         room.ID,
		Topic:          room.Topic,
		CoachingOption: room.CoachingOption,
		ExpertName:     room.ExpertName,
		Conversation:   controller.History(),
	})
	if err != nil {
		logger.Fatalf("Failed to generate notes: %v", err)
	}
	out.feedback(res)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
