// Package discord implements the chat boundary: a bot that watches one
// channel for PDF transcript uploads and drives the meeting-to-deck
// pipeline for each one.
package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pithecene-io/deckhand/iox"
	"github.com/pithecene-io/deckhand/log"
	"github.com/pithecene-io/deckhand/runtime"
	"github.com/pithecene-io/deckhand/types"
)

// DefaultDownloadTimeout bounds one attachment download.
const DefaultDownloadTimeout = 60 * time.Second

// Processor runs the meeting-to-deck pipeline over one source file.
// Satisfied by *runtime.Pipeline.
type Processor interface {
	Process(ctx context.Context, sourcePath string) (*runtime.ProcessResult, error)
}

// sender is the slice of the Discord session the bot writes through.
// Narrowed for testing.
type sender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Config configures the Discord bot.
type Config struct {
	// Token is the bot token (required).
	Token string
	// ChannelID restricts the bot to one channel. Empty accepts uploads
	// from any channel the bot can read.
	ChannelID string
	// DownloadDir is where uploaded transcripts are saved.
	DownloadDir string
	// Processor runs the pipeline for each upload (required).
	Processor Processor
	// Logger is the bot logger. If nil, a fresh one is created.
	Logger *log.Logger
	// HTTPClient downloads attachments. If nil, a client with
	// DefaultDownloadTimeout is used.
	HTTPClient *http.Client
}

// Bot watches a Discord channel for transcript uploads. One upload is
// processed at a time; concurrent uploads are rejected with a busy
// message rather than queued.
type Bot struct {
	config  *Config
	session *discordgo.Session
	busy    atomic.Bool
}

// New creates a bot. The gateway connection is not opened until Start.
func New(config *Config) (*Bot, error) {
	if config.Token == "" {
		return nil, errors.New("discord bot requires a token")
	}
	if config.Processor == nil {
		return nil, errors.New("discord bot requires a processor")
	}
	if config.DownloadDir == "" {
		config.DownloadDir = "output"
	}
	if config.Logger == nil {
		config.Logger = log.NewLogger("discord", "bot")
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: DefaultDownloadTimeout}
	}
	return &Bot{config: config}, nil
}

// Start opens the gateway connection and begins handling uploads.
func (b *Bot) Start() error {
	session, err := discordgo.New("Bot " + b.config.Token)
	if err != nil {
		return fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Handlers must not block the gateway dispatch loop; a run can
		// take minutes.
		go b.handleMessage(s, m)
	})

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord gateway: %w", err)
	}
	b.session = session

	b.config.Logger.Info("bot started", map[string]any{
		"channel_id": b.config.ChannelID,
	})
	return nil
}

// Close shuts down the gateway connection.
func (b *Bot) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}

// handleMessage processes one message event end to end: filter, busy
// gate, download, pipeline run, report reply, summary attachment.
func (b *Bot) handleMessage(s sender, m *discordgo.MessageCreate) {
	if m.Author != nil && m.Author.Bot {
		return
	}
	if b.config.ChannelID != "" && m.ChannelID != b.config.ChannelID {
		return
	}

	attachment := firstPDF(m.Attachments)
	if attachment == nil {
		return
	}

	logger := b.config.Logger

	if !b.busy.CompareAndSwap(false, true) {
		b.reply(s, m, "A transcript is already being processed. Please try again when it finishes.")
		return
	}
	defer b.busy.Store(false)

	b.reply(s, m, fmt.Sprintf("Received `%s`. Starting the meeting-to-deck workflow...", attachment.Filename))

	sourcePath, err := b.downloadAttachment(attachment)
	if err != nil {
		logger.Error("attachment download failed", map[string]any{
			"filename": attachment.Filename,
			"error":    err.Error(),
		})
		b.reply(s, m, fmt.Sprintf("Could not download `%s`: %v", attachment.Filename, err))
		return
	}

	b.send(s, m.ChannelID, "The analysis agent is working... (this can take up to 10 minutes)")

	processed, err := b.config.Processor.Process(context.Background(), sourcePath)
	if err != nil {
		logger.Error("pipeline failed", map[string]any{
			"source": sourcePath,
			"error":  err.Error(),
		})
		b.reply(s, m, fmt.Sprintf("Processing failed: %v", err))
		return
	}

	b.reply(s, m, processed.Outcome.Report)
	b.attachSummary(s, m.ChannelID, processed)
}

// attachSummary posts the summary artifact into the channel so the
// meeting notes are readable without leaving Discord.
func (b *Bot) attachSummary(s sender, channelID string, processed *runtime.ProcessResult) {
	summaryPath := processed.Result.Artifact(types.ArtifactSummary)
	if summaryPath == "" {
		return
	}
	f, err := os.Open(summaryPath)
	if err != nil {
		return
	}
	defer iox.DiscardClose(f)

	_, err = s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: "**Meeting summary:**",
		Files: []*discordgo.File{
			{
				Name:        "meeting_summary.md",
				ContentType: "text/markdown",
				Reader:      f,
			},
		},
	})
	if err != nil {
		b.config.Logger.Warn("summary attachment failed", map[string]any{
			"error": err.Error(),
		})
	}
}

// downloadAttachment saves the attachment into the download directory
// under a timestamp-prefixed name so successive uploads never collide.
func (b *Bot) downloadAttachment(attachment *discordgo.MessageAttachment) (string, error) {
	if err := os.MkdirAll(b.config.DownloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}

	name := time.Now().Format("20060102_150405") + "_" + filepath.Base(attachment.Filename)
	path := filepath.Join(b.config.DownloadDir, name)

	resp, err := b.config.HTTPClient.Get(attachment.URL)
	if err != nil {
		return "", err
	}
	defer iox.DiscardClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	b.config.Logger.Info("transcript saved", map[string]any{
		"path": path,
	})
	return path, nil
}

// firstPDF returns the first PDF attachment, or nil.
func firstPDF(attachments []*discordgo.MessageAttachment) *discordgo.MessageAttachment {
	for _, a := range attachments {
		if strings.HasSuffix(strings.ToLower(a.Filename), ".pdf") {
			return a
		}
	}
	return nil
}

func (b *Bot) reply(s sender, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		b.config.Logger.Warn("reply failed", map[string]any{
			"error": err.Error(),
		})
	}
}

func (b *Bot) send(s sender, channelID, content string) {
	if _, err := s.ChannelMessageSend(channelID, content); err != nil {
		b.config.Logger.Warn("send failed", map[string]any{
			"error": err.Error(),
		})
	}
}
