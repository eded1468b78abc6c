package seabot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type salesAction string

const (
	actionBack salesAction = "back"
	actionInfo salesAction = "info"
	actionNext salesAction = "next"
)

const salesComponentPrefix = "sales"

// salesControls returns the button row of a sales card; every button is bound to stateID.
func salesControls(stateID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				salesButton(actionBack, "⬅️", stateID),
				salesButton(actionInfo, "ℹ️", stateID),
				salesButton(actionNext, "➡️", stateID),
			},
		},
	}
}

func salesButton(action salesAction, emoji, stateID string) discordgo.Button {
	return discordgo.Button{
		Style:    discordgo.PrimaryButton,
		Emoji:    &discordgo.ComponentEmoji{Name: emoji},
		CustomID: customID(action, stateID),
	}
}

func customID(action salesAction, stateID string) string {
	return fmt.Sprintf("%s:%s:%s", salesComponentPrefix, action, stateID)
}

// parseCustomID reverses customID.
func parseCustomID(id string) (salesAction, string, error) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != salesComponentPrefix || parts[2] == "" {
		return "", "", errUnknownInteraction{kind: "component", name: id}
	}

	switch action := salesAction(parts[1]); action {
	case actionBack, actionInfo, actionNext:
		return action, parts[2], nil
	}

	return "", "", errUnknownInteraction{kind: "component", name: id}
}
