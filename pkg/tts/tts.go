package tts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/ankitcoder135/AI-Voice-Agent/internal/voice"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
)

const (
	MimeTypeMP3    = "audio/mpeg"
	LanguageCode   = "en-US"
	MaleVoice      = "en-US-Neural2-D"
	FemaleVoice    = "en-US-Neural2-F"
	SpeakingRate   = 1.5
	EffectsProfile = "headphone-class-device"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

type ISynthesizer interface {
	Synthesize(ctx context.Context, text, expertName string) (voice.Speech, error)
	Close() error
}

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

type googleTTS struct {
	synthesize synthesizeFunc
	close      func() error
}

// New builds a Cloud Text-to-Speech client from the service account email and
// private key in GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY.
func New(ctx context.Context) (ISynthesizer, error) {
	email := os.Getenv("GOOGLE_CLIENT_EMAIL")
	privateKey := strings.ReplaceAll(os.Getenv("GOOGLE_PRIVATE_KEY"), `\n`, "\n")
	if email == "" || privateKey == "" {
		return nil, errors.New("google service account credentials are required")
	}

	creds := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{cloudPlatformScope},
		TokenURL:   google.JWTTokenURL,
	}

	client, err := texttospeech.NewClient(ctx, option.WithTokenSource(creds.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create text-to-speech client: %w", err)
	}

	return &googleTTS{
		synthesize: func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
			return client.SynthesizeSpeech(ctx, req)
		},
		close: client.Close,
	}, nil
}

func (g *googleTTS) Synthesize(ctx context.Context, text, expertName string) (voice.Speech, error) {
	if strings.TrimSpace(text) == "" {
		return voice.Speech{}, errors.New("text is required")
	}

	resp, err := g.synthesize(ctx, BuildRequest(text, expertName))
	if err != nil {
		return voice.Speech{}, fmt.Errorf("synthesize speech: %w", err)
	}

	return voice.Speech{Audio: resp.GetAudioContent(), MimeType: MimeTypeMP3}, nil
}

func (g *googleTTS) Close() error {
	return g.close()
}

// VoiceFor picks the male voice for Vyom and the female voice for everyone else.
func VoiceFor(expertName string) *texttospeechpb.VoiceSelectionParams {
	if strings.EqualFold(strings.TrimSpace(expertName), "vyom") {
		return &texttospeechpb.VoiceSelectionParams{
			LanguageCode: LanguageCode,
			Name:         MaleVoice,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_MALE,
		}
	}
	return &texttospeechpb.VoiceSelectionParams{
		LanguageCode: LanguageCode,
		Name:         FemaleVoice,
		SsmlGender:   texttospeechpb.SsmlVoiceGender_FEMALE,
	}
}

func BuildRequest(text, expertName string) *texttospeechpb.SynthesizeSpeechRequest {
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: VoiceFor(expertName),
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding:    texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:     SpeakingRate,
			Pitch:            0,
			VolumeGainDb:     0,
			EffectsProfileId: []string{EffectsProfile},
		},
	}
}
