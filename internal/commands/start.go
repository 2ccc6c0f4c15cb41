package commands

import (
	"npr-price-bot/lib/translation"
)

func (h *Handler) Start() string {
	return translation.Translate("Welcome to NPR P2P Price Bot!\nSet your target price using /setprice <amount>")
}
