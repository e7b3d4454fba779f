package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"github.com/xackery/replyquote/quote"
)

func (t *Discord) commandsRegister() error {
	log.Debug().Msgf("registering replytemplate command")
	_, err := t.conn.ApplicationCommandCreate(t.id, "", &discordgo.ApplicationCommand{
		Name:        "replytemplate",
		Description: "show the template used when replying to a deleted message",
	})
	if err != nil {
		return fmt.Errorf("commandCreate: %w", err)
	}
	return nil
}

func (t *Discord) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	cmd := i.ApplicationCommandData().Name
	log.Debug().Msgf("got interaction: %s", cmd)

	var content string
	var err error
	cmdFunc, ok := t.commands[strings.ToLower(cmd)]
	if ok {
		content, err = cmdFunc(s, i)
	} else {
		err = fmt.Errorf("unknown command")
	}

	if err != nil {
		log.Error().Err(err).Msgf("failed to run command %s", cmd)
		content = fmt.Sprintf("failed: %s", err)
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Error().Err(err).Msgf("interactionRespond")
	}
}

func (t *Discord) replyTemplate(s *discordgo.Session, i *discordgo.InteractionCreate) (string, error) {
	return TemplateHelp(t.template()), nil
}

func (t *Discord) template() string {
	if t.Template == nil {
		return quote.DefaultTemplate
	}
	return t.Template()
}

// TemplateHelp describes the active template and the variables it may use
func TemplateHelp(template string) string {
	return fmt.Sprintf("Active template:\n```\n%s\n```\nVariables: `%s`\n%s", template, quote.Variables, quote.TimeFormatHelp)
}
