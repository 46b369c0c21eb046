package game

// SpawnRound prepares the table for the next aim phase: it drops new coins,
// counts enemy timers down, stops every ball, spawns this round's enemies and
// advances the round counter. Call it only once the table has settled.
//
// Placement never loops forever: a crowded table that cannot fit an entity
// within PlacementAttempts draws ends the game instead.
func (w *World) SpawnRound() {
	coins := MinCoinsPerRound + w.rng.IntN(MaxCoinsPerRound-MinCoinsPerRound+1)
	for k := 0; k < coins; k++ {
		pos, ok := w.findFreeSpot(CoinRadius)
		if !ok {
			w.gameOver = true
			break
		}
		w.coins = append(w.coins, Coin{Position: pos})
	}

	for i := range w.balls {
		if !w.balls[i].Type.IsEnemy() {
			continue
		}
		enemy := &w.balls[i].Type.Enemy
		enemy.Timer--
		if enemy.Timer < 1 {
			w.gameOver = true
		}
	}

	for i := range w.balls {
		w.balls[i].Velocity = Vec2{}
	}

	for k := 0; k < enemiesForRound(w.round); k++ {
		pos, ok := w.findFreeSpot(EnemyRadius)
		if !ok {
			w.gameOver = true
			break
		}
		w.balls = append(w.balls, newEnemy(pos))
	}

	w.round++
}

// findFreeSpot draws random positions on the cloth, away from the pockets,
// until one does not overlap any ball. It gives up after PlacementAttempts.
func (w *World) findFreeSpot(radius float64) (Vec2, bool) {
	inset := HoleRadius + radius
	minX, maxX := w.table.Min.X+inset, w.table.Max.X-inset
	minY, maxY := w.table.Min.Y+inset, w.table.Max.Y-inset

	for attempt := 0; attempt < PlacementAttempts; attempt++ {
		candidate := NewVec2(uniform(w.rng, minX, maxX), uniform(w.rng, minY, maxY))
		if w.isFree(candidate, radius) {
			return candidate, true
		}
	}
	return Vec2{}, false
}

func (w *World) isFree(position Vec2, radius float64) bool {
	for i := range w.balls {
		b := &w.balls[i]
		if position.Distance(b.Position) < b.Radius+radius {
			return false
		}
	}
	return true
}
