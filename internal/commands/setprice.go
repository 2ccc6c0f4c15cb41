package commands

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"npr-price-bot/lib/helpers"
	"npr-price-bot/lib/translation"
)

func (h *Handler) SetPrice(chatID int64, args string) string {
	log.Debugf("processing command /setprice with argument: %s", args)

	fields := strings.Fields(args)
	if len(fields) == 0 {
		return translation.Translate("⚠️ Usage: /setprice <desired_price>")
	}

	// Only the first token counts; anything after it is ignored.
	targetPrice, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return translation.Translate("⚠️ Usage: /setprice <desired_price>")
	}

	if err := h.Store.UpsertSubscriber(chatID, targetPrice); err != nil {
		log.Errorf("failed to save target price for chat %d: %v", chatID, err)
		return translation.Translate("Failed to save your target price. Please try again later.")
	}

	return fmt.Sprintf("%s %s", translation.Translate("✅ Target price set to NPR"), helpers.FormatPrice(targetPrice))
}
