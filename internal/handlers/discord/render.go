package discord

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/KirkDiggler/taleforge/internal/models"
	"github.com/KirkDiggler/taleforge/internal/services/game"
	"github.com/KirkDiggler/taleforge/internal/services/messaging"
)

const (
	colorGreen = 0x00ff00
	colorRed   = 0xff0000
	colorBlue  = 0x3498db
	colorGold  = 0xf1c40f
)

type gameStartedPayload struct {
	StoryTitle   string `json:"story_title"`
	Participants int    `json:"participants"`
}

type chapterChangedPayload struct {
	ChapterID string `json:"chapter_id"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	IsCombat  bool   `json:"is_combat"`
	IsFinal   bool   `json:"is_final"`
}

type storyEndedPayload struct {
	ChapterID string `json:"chapter_id"`
	Reason    string `json:"reason"`
}

// renderUpdate builds the announcement for an update, or nil when the type is not announced.
// The returned milestone describes the update for narration.
func renderUpdate(session *models.Session, update *models.UpdateEvent) (*discordgo.MessageEmbed, *messaging.GetMilestoneMessageInput, error) {
	footer := &discordgo.MessageEmbedFooter{Text: session.Name + " · " + session.JoinCode}
	milestone := &messaging.GetMilestoneMessageInput{
		Type:        update.Type,
		SessionName: session.Name,
	}

	switch update.Type {
	case models.UpdateGameStarted:
		var p gameStartedPayload
		if err := json.Unmarshal(update.Payload, &p); err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s payload: %w", update.Type, err)
		}
		return &discordgo.MessageEmbed{
			Title:       "The story begins",
			Description: fmt.Sprintf("**%s** with %d adventurers", p.StoryTitle, p.Participants),
			Color:       colorGreen,
			Footer:      footer,
		}, milestone, nil

	case models.UpdateChapterChanged:
		var p chapterChangedPayload
		if err := json.Unmarshal(update.Payload, &p); err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s payload: %w", update.Type, err)
		}
		milestone.ChapterTitle = p.Title
		milestone.IsCombat = p.IsCombat
		color := colorBlue
		if p.IsCombat {
			color = colorRed
		}
		return &discordgo.MessageEmbed{
			Title:       p.Title,
			Description: p.Text,
			Color:       color,
			Footer:      footer,
		}, milestone, nil

	case models.UpdateStoryEnded:
		var p storyEndedPayload
		if err := json.Unmarshal(update.Payload, &p); err != nil {
			return nil, nil, fmt.Errorf("failed to decode %s payload: %w", update.Type, err)
		}
		description := "The tale is complete."
		if p.Reason != "" {
			description = fmt.Sprintf("The tale is complete (%s).", strings.ReplaceAll(p.Reason, "_", " "))
		}
		return &discordgo.MessageEmbed{
			Title:       "The End",
			Description: description,
			Color:       colorGold,
			Footer:      footer,
		}, milestone, nil
	}

	return nil, nil, nil
}

func renderError(err error) *discordgo.MessageEmbed {
	message := "Something went wrong, try again later."

	var gameErr *game.Error
	if errors.As(err, &gameErr) && gameErr.Kind != game.KindInternal {
		message = gameErr.Message
	}

	return &discordgo.MessageEmbed{
		Title:       "Error",
		Description: message,
		Color:       colorRed,
	}
}

func renderJoin(out *game.JoinSessionOutput) *discordgo.MessageEmbed {
	title := "Joined " + out.Session.Name
	if out.AlreadyJoined {
		title = "Already in " + out.Session.Name
	}

	return &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("Session `%s`, %d of %d seats taken", out.Session.ID, len(out.Session.Participants), out.Session.MaxPlayers),
		Color:       colorGreen,
	}
}

func renderGameState(out *game.GetGameStateOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: out.Session.Name,
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Status", Value: string(out.Session.Status), Inline: true},
			{Name: "Votes", Value: fmt.Sprintf("%d", len(out.Votes)), Inline: true},
		},
	}

	if out.Chapter == nil {
		embed.Description = "The story has not started yet."
		return embed
	}

	embed.Description = fmt.Sprintf("**%s**\n%s", out.Chapter.Title, out.Chapter.Text)

	var options []string
	for _, o := range out.Chapter.Options {
		options = append(options, fmt.Sprintf("`%s` %s", o.ID, o.Text))
	}
	if len(options) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Options",
			Value: strings.Join(options, "\n"),
		})
	}
	if out.CombatActive {
		embed.Color = colorRed
	}

	return embed
}

func renderVote(out *game.VoteOutput) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Vote recorded",
		Description: fmt.Sprintf("You chose `%s`", out.Vote.OptionID),
		Color:       colorGreen,
	}

	switch {
	case out.TieDetected:
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Round", Value: "The vote is tied"}}
	case out.Result != nil:
		embed.Fields = []*discordgo.MessageEmbedField{{
			Name:  "Round",
			Value: fmt.Sprintf("`%s` won (%s)", out.Result.WinningOptionID, out.Result.DecisionMethod),
		}}
	}

	return embed
}
