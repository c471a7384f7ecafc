package bot

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = `Hi! I'm your English practice partner.

Send me a voice message and I'll reply with:
1. Coaching feedback on your English
2. A conversational response to keep us talking

Commands:
/history - show our recent conversation
/new - start a fresh conversation
/delete - erase the stored conversation
/help - show this message`

// Bot bridges Telegram voice messages to the tutoring backend.
type Bot struct {
	api      *tgbotapi.BotAPI
	client   *Client
	sessions *SessionMap
}

func New(token string, client *Client, sessions *SessionMap) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return &Bot{api: api, client: client, sessions: sessions}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("bot authorized as @%s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Voice != nil:
		b.handleVoice(ctx, msg, msg.Voice.FileID)
	case msg.Audio != nil:
		b.handleVoice(ctx, msg, msg.Audio.FileID)
	default:
		b.reply(msg, "Send me a voice message to practice your English, or /help for commands.")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	switch msg.Command() {
	case "start", "help":
		b.reply(msg, welcomeText)
	case "history":
		b.sendHistory(ctx, msg)
	case "new":
		b.sessions.Reset(userID)
		b.reply(msg, "Started a fresh conversation. Send me a voice message!")
	case "delete":
		sessionID, ok := b.sessions.Current(userID)
		if !ok {
			b.reply(msg, "There is no conversation to delete yet.")
			return
		}
		if err := b.client.ClearSession(ctx, sessionID); err != nil {
			log.Printf("clear session %s failed: %v", sessionID, err)
			b.reply(msg, "Sorry, I couldn't delete the conversation. Please try again.")
			return
		}
		b.sessions.Reset(userID)
		b.reply(msg, "Conversation deleted. We're starting from a clean slate.")
	default:
		b.reply(msg, "Unknown command. Try /help.")
	}
}

func (b *Bot) sendHistory(ctx context.Context, msg *tgbotapi.Message) {
	sessionID, ok := b.sessions.Current(msg.From.ID)
	if !ok {
		b.reply(msg, "We haven't talked yet. Send me a voice message!")
		return
	}
	turns, err := b.client.History(ctx, sessionID)
	if err != nil {
		log.Printf("history fetch for %s failed: %v", sessionID, err)
		b.reply(msg, "Sorry, I couldn't fetch the conversation history.")
		return
	}
	if len(turns) == 0 {
		b.reply(msg, "The conversation is empty so far. Send me a voice message!")
		return
	}

	// Telegram caps messages at 4096 chars; the last few turns are enough.
	const maxTurns = 5
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}
	var sb strings.Builder
	sb.WriteString("Recent conversation:\n")
	for i, turn := range turns {
		fmt.Fprintf(&sb, "\n%d. You: %s\n   Me: %s\n", i+1, turn.User, turn.Conversational)
	}
	b.reply(msg, sb.String())
}

func (b *Bot) handleVoice(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	sessionID := b.sessions.GetOrCreate(msg.From.ID)

	typing := tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(typing); err != nil {
		log.Printf("chat action failed: %v", err)
	}

	ogg, err := b.downloadFile(ctx, fileID)
	if err != nil {
		log.Printf("voice download failed: %v", err)
		b.reply(msg, "Sorry, I couldn't download your voice message. Please try again.")
		return
	}

	wav, err := ConvertToWAV(ctx, ogg)
	if err != nil {
		log.Printf("voice conversion failed: %v", err)
		b.reply(msg, "Sorry, I couldn't process that audio. Please try again.")
		return
	}

	result, err := b.client.Process(ctx, sessionID, "voice.wav", wav)
	if err != nil {
		log.Printf("process for session %s failed: %v", sessionID, err)
		b.reply(msg, "Sorry, something went wrong while processing your speech. Please try again.")
		return
	}

	b.reply(msg, "You said: "+result.UserTranscript)
	b.reply(msg, "📝 Coaching:\n"+result.CoachingFeedback)
	b.reply(msg, "💬 "+result.ConversationalResponse)

	b.sendArtifact(ctx, msg, result.CoachingAudio, "coaching.wav")
	b.sendArtifact(ctx, msg, result.ConversationalAudio, "reply.wav")
}

// sendArtifact forwards one synthesized voice if the backend produced it.
// Missing audio is not worth an apology; the text already went out.
func (b *Bot) sendArtifact(ctx context.Context, msg *tgbotapi.Message, status AudioStatus, name string) {
	if !status.Available {
		return
	}
	audio, err := b.client.Audio(ctx, status.URL)
	if err != nil {
		log.Printf("artifact download failed: %v", err)
		return
	}
	voice := tgbotapi.NewVoice(msg.Chat.ID, tgbotapi.FileBytes{Name: name, Bytes: audio})
	if _, err := b.api.Send(voice); err != nil {
		log.Printf("voice send failed: %v", err)
	}
}

func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		log.Printf("reply failed: %v", err)
	}
}
