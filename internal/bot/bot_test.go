package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/jusunglee/kyrlat/internal/romanizer"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock implementations

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) With(args ...any) Logger {
	ret := m.Called(args)
	return ret.Get(0).(Logger)
}

type MockDiscordSession struct {
	mock.Mock
}

func (m *MockDiscordSession) AddHandler(handler interface{}) func() {
	ret := m.Called(handler)
	return ret.Get(0).(func())
}

func (m *MockDiscordSession) Open() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	ret := m.Called(appID, guildID, commands, options)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([]*discordgo.ApplicationCommand), ret.Error(1)
}

func (m *MockDiscordSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	ret := m.Called(interaction, resp, options)
	return ret.Error(0)
}

func (m *MockDiscordSession) GetUserID() string {
	ret := m.Called()
	return ret.String(0)
}

type MockRomanizer struct {
	mock.Mock
}

func (m *MockRomanizer) Romanize(ctx context.Context, req romanizer.Request) (romanizer.Result, error) {
	ret := m.Called(ctx, req)
	return ret.Get(0).(romanizer.Result), ret.Error(1)
}

// Test helpers

func romanizeInteraction(userID string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:        "interaction-1",
			Type:      discordgo.InteractionApplicationCommand,
			ChannelID: "channel-123",
			Member:    &discordgo.Member{User: &discordgo.User{ID: userID}},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    "romanize",
				Options: opts,
			},
		},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func boolOpt(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionBoolean,
		Value: value,
	}
}

func quietLogger() *MockLogger {
	l := new(MockLogger)
	l.On("InfoContext", mock.Anything, mock.Anything, mock.Anything).Maybe()
	l.On("Info", mock.Anything, mock.Anything).Maybe()
	l.On("WarnContext", mock.Anything, mock.Anything, mock.Anything).Maybe()
	l.On("Warn", mock.Anything, mock.Anything).Maybe()
	l.On("ErrorContext", mock.Anything, mock.Anything, mock.Anything).Maybe()
	l.On("Error", mock.Anything, mock.Anything).Maybe()
	return l
}

// Tests

func TestLanguageChoices(t *testing.T) {
	choices := buildLanguageChoices()
	require.Len(t, choices, len(transliteration.Languages()))
	assert.Equal(t, "Russian", choices[0].Name)
	assert.Equal(t, "ru", choices[0].Value)
	assert.Equal(t, "mk", choices[4].Value)
}

func TestHandleRomanize(t *testing.T) {
	ctx := context.Background()

	t.Run("romanizes and replies with embed", func(t *testing.T) {
		rom := new(MockRomanizer)
		session := new(MockDiscordSession)
		bot := New(quietLogger(), session, rom, Config{})

		rom.On("Romanize", mock.Anything, romanizer.Request{
			Language: transliteration.Belarusian,
			Text:     "Магілёў",
			Source:   "bot",
		}).Return(romanizer.Result{
			Language: transliteration.Belarusian,
			Input:    "Магілёў",
			Output:   "Mahiljou",
			Hits:     3,
		}, nil)

		session.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
			if resp.Data == nil || len(resp.Data.Embeds) != 1 {
				return false
			}
			e := resp.Data.Embeds[0]
			return e.Title == "Belarusian" &&
				e.Fields[0].Value == "Магілёў" &&
				e.Fields[1].Value == "Mahiljou" &&
				strings.Contains(e.Footer.Text, "seen 3 times") &&
				resp.Data.Flags&discordgo.MessageFlagsEphemeral == 0
		}), mock.Anything).Return(nil)

		bot.handleCommand(ctx, romanizeInteraction("user-1", stringOpt("language", "be"), stringOpt("text", "Магілёў")))

		rom.AssertExpectations(t)
		session.AssertExpectations(t)
	})

	t.Run("passes ascii option", func(t *testing.T) {
		rom := new(MockRomanizer)
		session := new(MockDiscordSession)
		bot := New(quietLogger(), session, rom, Config{})

		rom.On("Romanize", mock.Anything, mock.MatchedBy(func(req romanizer.Request) bool {
			return req.ASCII && req.Language == transliteration.Russian
		})).Return(romanizer.Result{Language: transliteration.Russian, Input: "щи", Output: "stsi", ASCII: true}, nil)
		session.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
			return strings.Contains(resp.Data.Embeds[0].Footer.Text, "ASCII")
		}), mock.Anything).Return(nil)

		bot.handleCommand(ctx, romanizeInteraction("user-1", stringOpt("language", "ru"), stringOpt("text", "щи"), boolOpt("ascii", true)))

		rom.AssertExpectations(t)
		session.AssertExpectations(t)
	})

	t.Run("unsupported language is an ephemeral user error", func(t *testing.T) {
		rom := new(MockRomanizer)
		session := new(MockDiscordSession)
		log := quietLogger()
		bot := New(log, session, rom, Config{})

		session.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
			return strings.Contains(resp.Data.Content, "Unsupported language") &&
				resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0
		}), mock.Anything).Return(nil)

		bot.handleCommand(ctx, romanizeInteraction("user-1", stringOpt("language", "sr"), stringOpt("text", "Београд")))

		rom.AssertNotCalled(t, "Romanize", mock.Anything, mock.Anything)
		log.AssertCalled(t, "WarnContext", mock.Anything, "user error", mock.Anything)
		log.AssertNotCalled(t, "ErrorContext", mock.Anything, "command failed", mock.Anything)
	})

	t.Run("blank text is rejected", func(t *testing.T) {
		rom := new(MockRomanizer)
		session := new(MockDiscordSession)
		bot := New(quietLogger(), session, rom, Config{})

		session.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
			return strings.Contains(resp.Data.Content, "Give me some text")
		}), mock.Anything).Return(nil)

		bot.handleCommand(ctx, romanizeInteraction("user-1", stringOpt("language", "uk"), stringOpt("text", "   ")))

		rom.AssertNotCalled(t, "Romanize", mock.Anything, mock.Anything)
		session.AssertExpectations(t)
	})

	t.Run("romanizer failure is logged as an error", func(t *testing.T) {
		rom := new(MockRomanizer)
		session := new(MockDiscordSession)
		log := quietLogger()
		bot := New(log, session, rom, Config{})

		rom.On("Romanize", mock.Anything, mock.Anything).Return(romanizer.Result{}, errors.New("api down"))
		session.On("InteractionRespond", mock.Anything, mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
			return strings.Contains(resp.Data.Content, "Failed to romanize")
		}), mock.Anything).Return(nil)

		bot.handleCommand(ctx, romanizeInteraction("user-1", stringOpt("language", "bg"), stringOpt("text", "България")))

		log.AssertCalled(t, "ErrorContext", mock.Anything, "command failed", mock.Anything)
	})

	t.Run("rate limited per user", func(t *testing.T) {
		rom := new(MockRomanizer)
		session := new(MockDiscordSession)
		bot := New(quietLogger(), session, rom, Config{})

		rom.On("Romanize", mock.Anything, mock.Anything).Return(romanizer.Result{Language: transliteration.Macedonian, Input: "да", Output: "da"}, nil)
		session.On("InteractionRespond", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		for range rateLimitMaxCommands + 1 {
			bot.handleCommand(ctx, romanizeInteraction("user-1", stringOpt("language", "mk"), stringOpt("text", "да")))
		}
		bot.handleCommand(ctx, romanizeInteraction("user-2", stringOpt("language", "mk"), stringOpt("text", "да")))

		rom.AssertNumberOfCalls(t, "Romanize", rateLimitMaxCommands+1)
		session.AssertCalled(t, "InteractionRespond", mock.Anything, mock.MatchedBy(func(resp *discordgo.InteractionResponse) bool {
			return strings.Contains(resp.Data.Content, "too fast")
		}), mock.Anything)
	})
}

func TestFormatRomanizationEmbed(t *testing.T) {
	e := formatRomanizationEmbed(romanizer.Result{
		Language: transliteration.Russian,
		Input:    "ъ",
		Output:   "",
	})
	assert.Equal(t, "Russian", e.Title)
	assert.Equal(t, "\u200b", e.Fields[1].Value)
	assert.Equal(t, "SFS 4900", e.Footer.Text)

	long := strings.Repeat("щ", 600)
	e = formatRomanizationEmbed(romanizer.Result{Language: transliteration.Russian, Input: long, Output: strings.Repeat("štš", 600)})
	assert.Len(t, []rune(e.Fields[1].Value), maxFieldLength)
	assert.True(t, strings.HasSuffix(e.Fields[1].Value, "…"))
}

func TestRegisterCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("guild registration clears global commands first", func(t *testing.T) {
		session := new(MockDiscordSession)
		bot := New(quietLogger(), session, new(MockRomanizer), Config{GuildID: "guild-1"})

		session.On("GetUserID").Return("app-1")
		session.On("ApplicationCommandBulkOverwrite", "app-1", "", []*discordgo.ApplicationCommand{}, mock.Anything).
			Return([]*discordgo.ApplicationCommand{}, nil)
		session.On("ApplicationCommandBulkOverwrite", "app-1", "guild-1", commands, mock.Anything).
			Return(commands, nil)

		require.NoError(t, bot.registerCommands(ctx))
		session.AssertExpectations(t)
	})

	t.Run("global registration error", func(t *testing.T) {
		session := new(MockDiscordSession)
		bot := New(quietLogger(), session, new(MockRomanizer), Config{})

		session.On("GetUserID").Return("app-1")
		session.On("ApplicationCommandBulkOverwrite", "app-1", "", commands, mock.Anything).
			Return(nil, errors.New("forbidden"))

		err := bot.registerCommands(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bulk overwrite commands")
	})
}

func TestRunStopsOnContextCancel(t *testing.T) {
	session := new(MockDiscordSession)
	bot := New(quietLogger(), session, new(MockRomanizer), Config{})

	session.On("AddHandler", mock.Anything).Return(func() {})
	session.On("Open").Return(nil)
	session.On("GetUserID").Return("app-1")
	session.On("ApplicationCommandBulkOverwrite", "app-1", "", commands, mock.Anything).Return(commands, nil)
	session.On("Close").Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, bot.Run(ctx))
	session.AssertExpectations(t)
}

func TestAPIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/romanize", r.URL.Path)
		var req apiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if req.Language != "uk" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "unsupported language"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"romanized": "Kyjiv", "history_id": 4})
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL + "/")

	res, err := client.Romanize(context.Background(), romanizer.Request{Language: transliteration.Ukrainian, Text: "Київ"})
	require.NoError(t, err)
	assert.Equal(t, "Kyjiv", res.Output)
	assert.Equal(t, "Київ", res.Input)
	assert.Equal(t, int64(4), res.HistoryID)

	_, err = client.Romanize(context.Background(), romanizer.Request{Language: transliteration.Russian, Text: "Киев"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "unsupported language")
}
