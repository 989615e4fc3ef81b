package utility

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"

	tools "tech-translator/tools"
)

// HandleSlackMessage translates an incoming Slack message and posts the
// labeled sections back to the channel. The translate func is injected to
// avoid coupling to main internals.
func HandleSlackMessage(
	c *gin.Context,
	event *slack.MessageEvent,
	translate func(text string) ([]tools.ContentItem, error),
) {
	// Ignore bot messages to prevent loops
	if event.BotID != "" {
		log.Printf("[Slack Message] Ignoring bot message from bot ID: %s", event.BotID)
		c.JSON(http.StatusOK, gin.H{"status": "bot message ignored"})
		return
	}
	text := strings.TrimSpace(event.Text)
	if text == "" {
		c.JSON(http.StatusOK, gin.H{"status": "empty message ignored"})
		return
	}

	items, err := translate(text)
	if err != nil {
		log.Printf("[Slack Message] translate error: %v", err)
		if serr := SendSlackResponse(event.Channel, "Sorry, I encountered an error. Please try again."); serr != nil {
			log.Printf("[Slack Message] Failed to send error notice to Slack: %v", serr)
		}
		c.JSON(http.StatusOK, gin.H{"status": "error_processed"})
		return
	}
	if len(items) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "no sections produced"})
		return
	}

	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Text)
	}
	reply := strings.Join(parts, "\n\n")
	if err := SendSlackResponse(event.Channel, reply); err != nil {
		log.Printf("[Slack Message] Failed to send response to Slack: %v", err)
	}

	if err := StoreTranslation(text, reply, len(items), "slack", map[string]interface{}{
		"slack_channel": event.Channel,
		"slack_ts":      event.Timestamp,
	}); err != nil {
		log.Printf("[DB] Failed to persist slack translation: %v", err)
	}

	log.Printf("[Slack Message] Channel: %s, User: %s, Text: %s", event.Channel, event.User, text)
	c.JSON(http.StatusOK, gin.H{"status": "message processed", "sections": len(items)})
}
