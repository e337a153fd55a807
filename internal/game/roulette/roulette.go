// Package roulette implements the russian-roulette duel: a shared bullet
// sequence, an item system, and a machine opponent. One duel runs between a
// human player and the machine, keyed by (host, player) in the Store.
package roulette

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Item is a one-use inventory token.
type Item string

const (
	ItemMagnifier Item = "magnifier" // reveal the next bullet
	ItemCigarette Item = "cigarette" // heal 1 hp
	ItemSaw       Item = "saw"       // double the next real hit
	ItemHandcuffs Item = "handcuffs" // opponent skips their next turn
	ItemBeer      Item = "beer"      // eject the current bullet unfired
	ItemMedicine  Item = "medicine"  // heal 2 hp
)

// dealableItems is the pool sampled on each round. The original catalog also
// listed adrenaline and inverter, but neither ever had an effect, so they are
// not dealt.
var dealableItems = []Item{
	ItemMagnifier, ItemCigarette, ItemSaw, ItemHandcuffs, ItemBeer, ItemMedicine,
}

// Name returns the display name of an item.
func (i Item) Name() string {
	switch i {
	case ItemMagnifier:
		return "magnifier"
	case ItemCigarette:
		return "cigarette"
	case ItemSaw:
		return "saw"
	case ItemHandcuffs:
		return "handcuffs"
	case ItemBeer:
		return "beer"
	case ItemMedicine:
		return "medicine"
	default:
		return string(i)
	}
}

// Description returns the effect text shown in the inventory listing.
func (i Item) Description() string {
	switch i {
	case ItemMagnifier:
		return "peek at the next bullet"
	case ItemCigarette:
		return "restore 1 hp"
	case ItemSaw:
		return "next real bullet deals double damage"
	case ItemHandcuffs:
		return "opponent skips their next turn"
	case ItemBeer:
		return "eject the current bullet without firing"
	case ItemMedicine:
		return "restore 2 hp"
	default:
		return ""
	}
}

// Difficulty tunes the bullet and item counts per round.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps user input onto a difficulty, defaulting to Normal
// for an empty string.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return Difficulty(s), nil
	case "":
		return DifficultyNormal, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Player is one side of the duel.
type Player struct {
	Name  string
	HP    int
	MaxHP int
	Items []Item
	IsAI  bool
}

// Alive reports whether the player still has hit points.
func (p *Player) Alive() bool { return p.HP > 0 }

// TakeDamage subtracts damage (floored at zero hp) and reports death.
func (p *Player) TakeDamage(damage int) bool {
	p.HP -= damage
	if p.HP < 0 {
		p.HP = 0
	}
	return !p.Alive()
}

// Heal restores up to amount hp, capped at MaxHP, and returns the hp
// actually restored.
func (p *Player) Heal(amount int) int {
	before := p.HP
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	return p.HP - before
}

// Errors reported by the engine.
var (
	ErrGameOver   = errors.New("the duel is already over")
	ErrNoSuchItem = errors.New("no item in that slot")
)

const startingHP = 3

// Game is one duel's state machine. It is not safe for concurrent use; the
// Store plus the per-player command lock serialize access.
type Game struct {
	Player   *Player
	Machine  *Player
	Round    int
	bullets  []bool // true = real
	cursor   int
	turn     int // 0 = player, 1 = machine
	saw      int // damage multiplier for the next real hit
	skipNext bool
	gameOver bool
	winner   string
	rng      *rand.Rand

	bulletCount int
	itemCount   int
}

// New creates a duel with a time-seeded random source.
func New(playerName string, d Difficulty) *Game {
	return NewWithRand(playerName, d, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates a duel using the given random source and deals the
// first round.
func NewWithRand(playerName string, d Difficulty, rng *rand.Rand) *Game {
	g := &Game{
		Player:  &Player{Name: playerName, HP: startingHP, MaxHP: startingHP},
		Machine: &Player{Name: "machine", HP: startingHP, MaxHP: startingHP, IsAI: true},
		Round:   1,
		rng:     rng,
	}
	switch d {
	case DifficultyEasy:
		g.bulletCount, g.itemCount = 6, 4
	case DifficultyHard:
		g.bulletCount, g.itemCount = 8, 3
	default:
		g.bulletCount, g.itemCount = 6, 3
	}
	g.startRound()
	return g
}

// startRound loads a fresh shuffled bullet sequence (1..count-1 real bullets,
// the rest blank) and deals a fresh item sample to both players.
func (g *Game) startRound() {
	real := g.rng.Intn(g.bulletCount-1) + 1
	bullets := make([]bool, g.bulletCount)
	for i := 0; i < real; i++ {
		bullets[i] = true
	}
	g.rng.Shuffle(len(bullets), func(i, j int) {
		bullets[i], bullets[j] = bullets[j], bullets[i]
	})
	g.bullets = bullets
	g.cursor = 0
	g.saw = 1
	g.Player.Items = g.dealItems()
	g.Machine.Items = g.dealItems()
}

// dealItems samples itemCount distinct items without replacement.
func (g *Game) dealItems() []Item {
	perm := g.rng.Perm(len(dealableItems))
	items := make([]Item, 0, g.itemCount)
	for _, idx := range perm[:g.itemCount] {
		items = append(items, dealableItems[idx])
	}
	return items
}

// CurrentPlayer returns whoever holds the gun.
func (g *Game) CurrentPlayer() *Player {
	if g.turn == 0 {
		return g.Player
	}
	return g.Machine
}

// OpponentPlayer returns the side not holding the gun.
func (g *Game) OpponentPlayer() *Player {
	if g.turn == 0 {
		return g.Machine
	}
	return g.Player
}

// IsPlayerTurn reports whether the human holds the gun.
func (g *Game) IsPlayerTurn() bool { return g.turn == 0 }

// GameOver reports whether the duel has ended.
func (g *Game) GameOver() bool { return g.gameOver }

// Winner returns the name of the surviving side, or "" while the duel runs.
func (g *Game) Winner() string { return g.winner }

// Cursor returns the index of the next bullet to fire.
func (g *Game) Cursor() int { return g.cursor }

// BulletCount returns the length of the current bullet sequence.
func (g *Game) BulletCount() int { return len(g.bullets) }

// RemainingBullets counts the unfired real and blank bullets.
func (g *Game) RemainingBullets() (real, blank int) {
	for _, b := range g.bullets[g.cursor:] {
		if b {
			real++
		} else {
			blank++
		}
	}
	return real, blank
}

// DamageMultiplier returns the armed multiplier (1 or 2).
func (g *Game) DamageMultiplier() int { return g.saw }

// nextBulletReal reports whether the bullet under the cursor is real.
func (g *Game) nextBulletReal() bool {
	return g.cursor < len(g.bullets) && g.bullets[g.cursor]
}

// ShootResult describes one trigger pull.
type ShootResult struct {
	Shooter      string
	Target       string
	Real         bool
	Damage       int
	TargetDied   bool
	ContinueTurn bool
	NewRound     bool
}

// Shoot fires the next bullet at the shooter (targetSelf) or the opponent.
// A blank fired at oneself keeps the turn; anything else ends it. A lethal
// real hit ends the duel. Exhausting the sequence with no lethal hit deals a
// fresh round.
func (g *Game) Shoot(targetSelf bool) (*ShootResult, error) {
	if g.gameOver {
		return nil, ErrGameOver
	}

	shooter := g.CurrentPlayer()
	target := shooter
	if !targetSelf {
		target = g.OpponentPlayer()
	}

	isReal := g.nextBulletReal()
	res := &ShootResult{
		Shooter: shooter.Name,
		Target:  target.Name,
		Real:    isReal,
	}

	if isReal {
		res.Damage = g.saw
		if target.TakeDamage(res.Damage) {
			res.TargetDied = true
			g.gameOver = true
			if target == g.Player {
				g.winner = g.Machine.Name
			} else {
				g.winner = g.Player.Name
			}
		}
	} else if targetSelf {
		res.ContinueTurn = true
	}

	g.cursor++
	g.saw = 1

	if g.cursor >= len(g.bullets) && !g.gameOver {
		g.Round++
		g.startRound()
		res.NewRound = true
	}
	if !g.gameOver && !res.ContinueTurn {
		g.endTurn()
	}
	return res, nil
}

// endTurn hands the gun over, unless handcuffs force the opponent to sit the
// turn out.
func (g *Game) endTurn() {
	if g.skipNext {
		g.skipNext = false
		return
	}
	g.turn = 1 - g.turn
}

// ItemResult describes one item use.
type ItemResult struct {
	Item     Item
	Effect   string
	Revealed *bool // magnifier: whether the next bullet is real
	Healed   int
	NewRound bool
}

// UseItem consumes the item in the given inventory slot of the current
// player and applies its effect. An out-of-range slot fails without mutating
// any state. Using an item never ends the turn.
func (g *Game) UseItem(index int) (*ItemResult, error) {
	if g.gameOver {
		return nil, ErrGameOver
	}
	holder := g.CurrentPlayer()
	if index < 0 || index >= len(holder.Items) {
		return nil, fmt.Errorf("%w: slot %d", ErrNoSuchItem, index)
	}

	// Consume the slot first: a beer that drains the sequence re-deals
	// inventories, and the used item must not survive into the new round.
	item := holder.Items[index]
	holder.Items = append(holder.Items[:index], holder.Items[index+1:]...)
	res := &ItemResult{Item: item}

	switch item {
	case ItemMagnifier:
		if g.cursor < len(g.bullets) {
			real := g.nextBulletReal()
			res.Revealed = &real
			if real {
				res.Effect = "the next bullet is real"
			} else {
				res.Effect = "the next bullet is a blank"
			}
		} else {
			res.Effect = "no bullets left to inspect"
		}
	case ItemCigarette:
		res.Healed = holder.Heal(1)
		res.Effect = fmt.Sprintf("restored %d hp", res.Healed)
	case ItemMedicine:
		res.Healed = holder.Heal(2)
		res.Effect = fmt.Sprintf("restored %d hp", res.Healed)
	case ItemSaw:
		g.saw = 2
		res.Effect = "the next real bullet deals double damage"
	case ItemHandcuffs:
		g.skipNext = true
		res.Effect = "the opponent will skip their next turn"
	case ItemBeer:
		if g.cursor < len(g.bullets) {
			if g.nextBulletReal() {
				res.Effect = "ejected a real bullet"
			} else {
				res.Effect = "ejected a blank"
			}
			g.cursor++
			if g.cursor >= len(g.bullets) {
				g.Round++
				g.startRound()
				res.NewRound = true
			}
		} else {
			res.Effect = "no bullets left to eject"
		}
	}

	return res, nil
}
