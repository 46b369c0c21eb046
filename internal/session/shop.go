package session

import "github.com/playmatatu/slimepool/internal/game"

// UpgradePrices holds the cost of raising each upgrade from level i to i+1.
var UpgradePrices = map[game.UpgradeKind][game.MaxUpgradeLevel]int{
	game.UpgradeMaxSpeed:      {5, 15, 40, 100},
	game.UpgradeStartingMass:  {10, 25, 60, 150},
	game.UpgradeProfitability: {8, 20, 50, 120},
	game.UpgradeSliding:       {5, 12, 30, 80},
	game.UpgradeAimAssist:     {3, 8, 20, 50},
}

// Price returns the cost of the next level of kind, or -1 at max level.
func Price(kind game.UpgradeKind, level int) int {
	prices, ok := UpgradePrices[kind]
	if !ok || level < 0 || level >= game.MaxUpgradeLevel {
		return -1
	}
	return prices[level]
}

// ShopItem describes one upgrade as offered to a player.
type ShopItem struct {
	Kind  game.UpgradeKind `json:"kind"`
	Level int              `json:"level"`
	Price int              `json:"price"` // -1 when maxed
}

// Shop lists every upgrade with its current level and next price.
func Shop(levels game.Levels) []ShopItem {
	items := make([]ShopItem, 0, len(game.UpgradeKinds))
	for _, k := range game.UpgradeKinds {
		level := levels.Get(k)
		items = append(items, ShopItem{Kind: k, Level: level, Price: Price(k, level)})
	}
	return items
}
