package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/KirkDiggler/taleforge/internal/services/messaging"
)

// messageSender is the part of a discord session announcements go through
type messageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot announces story progress to a channel and serves the /tale command
type Bot struct {
	session    *discordgo.Session
	sender     messageSender
	commands   map[string]CommandHandler
	commandIDs map[string]string // Maps command name to command ID
	config     *Config
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// ChannelID receives every announcement
	ChannelID string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// MessagingService adds narrator lines when set
	MessagingService messaging.Service
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Token == "" {
		return nil, errors.New("token cannot be empty")
	}

	if cfg.ChannelID == "" {
		return nil, errors.New("channel ID cannot be empty")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		sender:     session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		config:     cfg,
	}

	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// AddCommand queues a command for registration on Start
func (b *Bot) AddCommand(cmd CommandHandler) {
	b.commands[cmd.GetName()] = cmd
}

// Start opens the Discord connection and registers every added command
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	for _, cmd := range b.commands {
		if err := b.RegisterCommand(cmd); err != nil {
			return err
		}
	}

	log.Info().Str("channel_id", b.config.ChannelID).Msg("discord bot is running")
	return nil
}

// Stop removes registered commands and closes the connection
func (b *Bot) Stop() error {
	appID := b.appID()

	for cmdName, cmdID := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, cmdID); err != nil {
			log.Warn().Err(err).Str("command", cmdName).Str("command_id", cmdID).Msg("failed to delete command")
		}
	}

	return b.session.Close()
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	// Fall back to session user ID if application ID is not provided
	return b.session.State.User.ID
}

// RegisterCommand registers a command with Discord
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	createdCmd, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = createdCmd.ID
	log.Info().Str("command", cmd.GetName()).Str("guild_id", b.config.GuildID).Msg("registered command")

	return nil
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	if h, ok := b.commands[name]; ok {
		if err := h.Handle(s, i); err != nil {
			log.Error().Err(err).Str("command", name).Msg("failed to handle command")
		}
	}
}

// Notify relays story milestones to the announcement channel.
// Every other update type is ignored.
func (b *Bot) Notify(ctx context.Context, session *models.Session, update *models.UpdateEvent) error {
	embed, milestone, err := renderUpdate(session, update)
	if err != nil {
		return err
	}
	if embed == nil {
		return nil
	}

	if b.config.MessagingService != nil {
		narration, err := b.config.MessagingService.GetMilestoneMessage(ctx, milestone)
		if err != nil {
			log.Warn().Err(err).Str("type", string(update.Type)).Msg("failed to narrate update")
		} else if narration.Message != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:  "Narrator",
				Value: "*" + narration.Message + "*",
			})
		}
	}

	if _, err := b.sender.ChannelMessageSendEmbed(b.config.ChannelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to announce %s: %w", update.Type, err)
	}

	return nil
}
