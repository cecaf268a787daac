package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/crawl-registration-api/internal/config"
)

type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   channelSender
	channelID string
}

// NewDiscordNotifier uses the bot token for REST calls only; no gateway
// connection is opened.
func NewDiscordNotifier(cfg *config.Config) (*DiscordNotifier, error) {
	if cfg.DiscordBotToken == "" || cfg.DiscordNotificationsChannelID == "" {
		return nil, fmt.Errorf("discord bot token or channel ID not configured")
	}
	session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: cfg.DiscordNotificationsChannelID}, nil
}

func (n *DiscordNotifier) NotifyRegistration(alert Alert) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	r := alert.Registration
	spots := fmt.Sprintf("%d / %d", alert.RemainingSpots, alert.DayCapacity)
	if alert.RemainingSpots <= LowSpotsThreshold {
		spots += " ⚠️"
	}

	message := fmt.Sprintf("📝 **New Registration**\n**Name:** %s\n**Email:** %s\n**School:** %s\n**Day:** %s\n**Location:** %s\n**Spots Remaining:** %s",
		r.FullName(),
		r.Email,
		r.School,
		alert.DayDisplay,
		r.CrawlLocationName,
		spots,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
