package discord

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/taleforge/internal/services/game"
	"github.com/KirkDiggler/taleforge/internal/services/messaging"
)

const commandTimeout = 5 * time.Second

// TaleCommand handles the /tale command. Discord user IDs act as player IDs.
type TaleCommand struct {
	BaseCommand
	gameService      game.Service
	messagingService messaging.Service
}

// NewTaleCommand creates a new tale command handler. messagingService may be nil.
func NewTaleCommand(gameService game.Service, messagingService messaging.Service) *TaleCommand {
	return &TaleCommand{
		BaseCommand: BaseCommand{
			Name:        "tale",
			Description: "Play a shared story",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Join a session with its join code",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "code",
							Description: "The six character join code",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "state",
					Description: "Show the current chapter of a session",
					Options: []*discordgo.ApplicationCommandOption{
						sessionOption(),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "vote",
					Description: "Vote for an option of the current chapter",
					Options: []*discordgo.ApplicationCommandOption{
						sessionOption(),
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "option",
							Description: "The option ID",
							Required:    true,
						},
					},
				},
			},
		},
		gameService:      gameService,
		messagingService: messagingService,
	}
}

func sessionOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "session",
		Description: "The session ID",
		Required:    true,
	}
}

// Handle processes a Discord interaction for the tale command
func (c *TaleCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	// Commands may arrive from a guild or a DM
	user := i.User
	username := ""
	if i.Member != nil {
		user = i.Member.User
		username = i.Member.Nick
	}
	if user == nil {
		return errors.New("interaction has no user")
	}
	if username == "" {
		username = user.Username
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	return RespondWithEmbed(s, i, c.execute(ctx, user.ID, username, data.Options[0]))
}

// execute runs one subcommand and renders its outcome
func (c *TaleCommand) execute(ctx context.Context, userID, username string, sub *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageEmbed {
	opts := make(map[string]string, len(sub.Options))
	for _, o := range sub.Options {
		opts[o.Name] = o.StringValue()
	}

	switch sub.Name {
	case "join":
		out, err := c.gameService.JoinSession(ctx, &game.JoinSessionInput{
			UserID:   userID,
			Username: username,
			JoinCode: opts["code"],
		})
		if err != nil {
			return c.renderError(ctx, err)
		}
		return renderJoin(out)

	case "state":
		out, err := c.gameService.GetGameState(ctx, &game.GetGameStateInput{
			UserID:    userID,
			SessionID: opts["session"],
		})
		if err != nil {
			return c.renderError(ctx, err)
		}
		return renderGameState(out)

	case "vote":
		return c.vote(ctx, userID, opts["session"], opts["option"])
	}

	log.Warn().Str("subcommand", sub.Name).Msg("unknown tale subcommand")
	return c.renderError(ctx, &game.Error{Kind: game.KindInvalidParams, Message: "unknown subcommand " + sub.Name})
}

// vote casts the vote of the caller's bound character
func (c *TaleCommand) vote(ctx context.Context, userID, sessionID, optionID string) *discordgo.MessageEmbed {
	state, err := c.gameService.GetGameState(ctx, &game.GetGameStateInput{
		UserID:    userID,
		SessionID: sessionID,
	})
	if err != nil {
		return c.renderError(ctx, err)
	}

	participant := state.Session.GetParticipant(userID)
	if participant == nil || participant.CharacterID == "" {
		return c.renderError(ctx, &game.Error{Kind: game.KindInvalidState, Message: "you have no character in this session"})
	}

	out, err := c.gameService.Vote(ctx, &game.VoteInput{
		UserID:      userID,
		SessionID:   sessionID,
		CharacterID: participant.CharacterID,
		OptionID:    optionID,
	})
	if err != nil {
		return c.renderError(ctx, err)
	}
	return renderVote(out)
}

// renderError prefers the messaging service wording when it is available
func (c *TaleCommand) renderError(ctx context.Context, err error) *discordgo.MessageEmbed {
	embed := renderError(err)
	if c.messagingService == nil {
		return embed
	}

	out, msgErr := c.messagingService.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{
		Kind:   game.KindOf(err),
		Detail: embed.Description,
	})
	if msgErr != nil {
		log.Warn().Err(msgErr).Msg("failed to get error message")
		return embed
	}

	embed.Title = out.Title
	embed.Description = out.Message
	return embed
}
