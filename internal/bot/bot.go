package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jusunglee/kyrlat/internal/metrics"
	"github.com/jusunglee/kyrlat/internal/romanizer"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/samber/lo"
)

const (
	// MaxTextLength is the longest text accepted by /romanize.
	MaxTextLength = 1000
	// Discord rejects embed field values longer than this.
	maxFieldLength = 1024
)

type Config struct {
	// GuildID registers commands to a single guild for fast iteration.
	// Empty registers them globally.
	GuildID string
}

type Bot struct {
	log       Logger
	session   DiscordSession
	romanizer Romanizer
	limiter   *RateLimiter
	config    Config
}

func New(log Logger, session DiscordSession, romanizer Romanizer, config Config) *Bot {
	return &Bot{
		log:       log,
		session:   session,
		romanizer: romanizer,
		limiter:   NewRateLimiter(),
		config:    config,
	}
}

// Run connects to Discord, registers the slash commands and blocks until ctx
// is done.
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.InfoContext(ctx, "connected to Discord", "username", r.User.Username)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}

	if err := b.registerCommands(ctx); err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}

	b.log.InfoContext(ctx, "bot is running, press Ctrl+C to stop")

	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := b.limiter.Sweep(); n > 0 {
				b.log.Info("swept idle rate limit entries", "count", n)
			}
		case <-ctx.Done():
			b.log.Info("shutdown signal received")
			if err := b.session.Close(); err != nil {
				b.log.Warn("closing Discord session", "error", err)
			}
			b.log.Info("shut down complete")
			return nil
		}
	}
}

func (b *Bot) registerCommands(ctx context.Context) error {
	guildID := b.config.GuildID
	if guildID != "" {
		b.log.InfoContext(ctx, "registering commands to guild", "guild_id", guildID)
		_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), "", []*discordgo.ApplicationCommand{})
		if err != nil {
			b.log.WarnContext(ctx, "failed to clear global commands", "error", err)
		} else {
			b.log.InfoContext(ctx, "cleared global commands")
		}
	} else {
		b.log.InfoContext(ctx, "registering commands globally (may take up to 1 hour to propagate)")
	}

	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), guildID, commands)
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.InfoContext(ctx, "registered commands", "count", len(commands))
	return nil
}

func buildLanguageChoices() []*discordgo.ApplicationCommandOptionChoice {
	return lo.Map(transliteration.Languages(), func(l transliteration.Language, _ int) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{
			Name:  l.String(),
			Value: l.Code(),
		}
	})
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "romanize",
		Description: "Romanize Cyrillic text with SFS 4900",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "language",
				Description: "Source language",
				Required:    true,
				Choices:     buildLanguageChoices(),
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "text",
				Description: "Cyrillic text",
				Required:    true,
				MaxLength:   MaxTextLength,
			},
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "ascii",
				Description: "Fold the result to plain ASCII",
			},
		},
	},
}

type handlerResult struct {
	Response string
	Embed    *discordgo.MessageEmbed
	Err      error
}

func (b *Bot) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	b.handleCommand(ctx, i)
}

func (b *Bot) handleCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	cmd := i.ApplicationCommandData().Name

	var result handlerResult
	switch cmd {
	case "romanize":
		result = b.handleRomanize(ctx, i)
	default:
		result = handlerResult{Response: "Unknown command.", Err: newUserError(fmt.Errorf("unknown command %q", cmd))}
	}

	b.respond(ctx, i, result)

	outcome := "ok"
	if result.Err != nil {
		outcome = "error"
		if _, ok := errors.AsType[*userError](result.Err); ok {
			outcome = "rejected"
			b.log.WarnContext(ctx, "user error", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
		} else {
			b.log.ErrorContext(ctx, "command failed", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
		}
	}
	metrics.BotCommandsTotal.WithLabelValues(cmd, outcome).Inc()
}

type userError struct {
	Err error
}

func (e *userError) Error() string {
	return e.Err.Error()
}

func (e *userError) Unwrap() error {
	return e.Err
}

func newUserError(err error) *userError {
	return &userError{Err: err}
}

func getOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	return lo.Find(options, func(opt *discordgo.ApplicationCommandInteractionDataOption) bool {
		return opt.Name == name
	})
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) handleRomanize(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	if !b.limiter.Allow(interactionUserID(i)) {
		metrics.RateLimitHits.WithLabelValues("bot").Inc()
		return handlerResult{
			Response: "⏳ You're romanizing too fast. Try again in a minute.",
			Err:      newUserError(errors.New("rate limited")),
		}
	}

	options := i.ApplicationCommandData().Options

	var code, text string
	if opt, ok := getOption(options, "language"); ok {
		code = opt.StringValue()
	}
	if opt, ok := getOption(options, "text"); ok {
		text = opt.StringValue()
	}
	ascii := false
	if opt, ok := getOption(options, "ascii"); ok {
		ascii = opt.BoolValue()
	}

	lang, err := transliteration.ParseLanguage(code)
	if err != nil {
		return handlerResult{
			Response: fmt.Sprintf("❌ Unsupported language `%s`.", code),
			Err:      newUserError(err),
		}
	}
	if strings.TrimSpace(text) == "" {
		return handlerResult{
			Response: "❌ Give me some text to romanize.",
			Err:      newUserError(errors.New("empty text")),
		}
	}
	if len([]rune(text)) > MaxTextLength {
		return handlerResult{
			Response: fmt.Sprintf("❌ Text is limited to %d characters.", MaxTextLength),
			Err:      newUserError(errors.New("text too long")),
		}
	}

	res, err := b.romanizer.Romanize(ctx, romanizer.Request{
		Language: lang,
		Text:     text,
		ASCII:    ascii,
		Source:   "bot",
	})
	if err != nil {
		return handlerResult{
			Response: "❌ Failed to romanize. Please try again later.",
			Err:      fmt.Errorf("romanize: %w", err),
		}
	}

	return handlerResult{Embed: formatRomanizationEmbed(res)}
}

func (b *Bot) respond(ctx context.Context, i *discordgo.InteractionCreate, result handlerResult) {
	data := &discordgo.InteractionResponseData{Content: result.Response}
	if result.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{result.Embed}
	}
	if result.Err != nil {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to respond to interaction", "error", err)
	}
}

func formatRomanizationEmbed(res romanizer.Result) *discordgo.MessageEmbed {
	footer := "SFS 4900"
	if res.ASCII {
		footer += " · ASCII"
	}
	if res.Hits > 1 {
		footer += fmt.Sprintf(" · seen %d times", res.Hits)
	}

	return &discordgo.MessageEmbed{
		Title: res.Language.String(),
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Original", Value: truncate(res.Input, maxFieldLength)},
			{Name: "Romanized", Value: truncate(res.Output, maxFieldLength)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: footer},
	}
}

// truncate fits s into an embed field. Empty values are rejected by Discord.
func truncate(s string, n int) string {
	if s == "" {
		return "\u200b"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
