package ai

import (
	"context"
	"fmt"
	"strings"

	"tutordesk/internal/pkg/logger"
)

const (
	// MissingKeyMessage is returned in place of generated text when no API key is configured.
	MissingKeyMessage = "Erreur : clé API de génération de texte non configurée."
	// FailureMessage is returned when the provider cannot be reached or answers with an error.
	FailureMessage = "Oups, l'IA n'a pas pu générer le message. Vérifiez votre clé ou votre connexion."
)

const parentMessageInstructions = `Tu es un assistant pédagogique expert pour un professeur particulier.
Ta mission : reformuler un compte-rendu oral brut en un message SMS/WhatsApp professionnel destiné aux parents.

Règles de rédaction :
- Ton : poli, rassurant, professionnel mais chaleureux.
- Structure :
  1. Ce qu'on a fait (notions clés).
  2. Le feedback (réussites ou points à revoir).
  3. Les devoirs pour la prochaine fois (si mentionnés).
- Concision : le message doit tenir dans un écran WhatsApp.
- Ne signe pas le message.
- Corrige les fautes de français et les hésitations de l'oral.`

type completer interface {
	Complete(ctx context.Context, cfg ChatConfig, messages []ChatMessage) (string, error)
}

// Reformatter turns a dictated session summary into a message for parents.
type Reformatter struct {
	client completer
	cfg    ChatConfig
	log    *logger.Logger
}

func NewReformatter(client *OpenAICompatibleClient, cfg ChatConfig, log *logger.Logger) *Reformatter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reformatter{client: client, cfg: cfg, log: log.With("component", "Reformatter")}
}

// ParentMessage never fails: provider problems come back as a readable
// in-band message so callers can always show something.
func (r *Reformatter) ParentMessage(ctx context.Context, rawText, studentName string) string {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		r.log.Warn("text generation key missing")
		return MissingKeyMessage
	}

	messages := []ChatMessage{
		{Role: "system", Content: parentMessageInstructions},
		{Role: "user", Content: fmt.Sprintf("Élève : %s\nCompte-rendu oral brut : \"%s\"", studentName, strings.TrimSpace(rawText))},
	}
	out, err := r.client.Complete(ctx, r.cfg, messages)
	if err != nil {
		r.log.Error("text generation failed", "error", err)
		return FailureMessage
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return FailureMessage
	}
	return out
}
