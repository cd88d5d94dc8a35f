package alerts

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Infra struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewInfra reads ADMIN_BOT_TOKEN / ADMIN_CHAT_ID. When either is missing the
// notifier degrades to log-only, the service keeps running.
func NewInfra() *Infra {
	token := os.Getenv("ADMIN_BOT_TOKEN")
	chatStr := os.Getenv("ADMIN_CHAT_ID")

	if token == "" || chatStr == "" {
		log.Printf("[alerts] ADMIN_BOT_TOKEN/ADMIN_CHAT_ID not set, alerts go to log only")
		return &Infra{}
	}

	chatID, err := strconv.ParseInt(chatStr, 10, 64)
	if err != nil {
		log.Printf("[alerts] invalid ADMIN_CHAT_ID %q: %v", chatStr, err)
		return &Infra{}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("[alerts] telegram init failed: %v", err)
		return &Infra{chatID: chatID}
	}

	return &Infra{bot: bot, chatID: chatID}
}

func (i *Infra) Notify(ctx context.Context, component string, err error, details string) error {
	text := fmt.Sprintf(
		"❗ Failure in %s\n\nError: %v\n\nDetails: %s",
		component,
		err,
		details,
	)

	if i.bot == nil {
		log.Printf("[alerts] %s", text)
		return nil
	}

	msg := tgbotapi.NewMessage(i.chatID, text)

	_, sendErr := i.bot.Send(msg)
	if sendErr != nil {
		log.Printf("[alerts] send fail: %v", sendErr)
		return sendErr
	}

	return nil
}
