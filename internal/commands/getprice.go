package commands

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"npr-price-bot/lib/helpers"
	"npr-price-bot/lib/translation"
)

func (h *Handler) GetPrice() string {
	log.Debug("processing command /getprice")

	currentPrice, ok := h.Prices.Fetch()
	if !ok {
		return translation.Translate("Could not fetch current price")
	}

	return fmt.Sprintf("%s %s", translation.Translate("Current NPR P2P Price:"), helpers.FormatPrice(currentPrice))
}
