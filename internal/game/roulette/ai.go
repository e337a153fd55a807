package roulette

// Opponent is the machine's decision policy for one turn. It is created per
// machine turn; knowledge gained from a magnifier lasts until the bullet it
// inspected is gone.
type Opponent struct {
	game      *Game
	knownNext *bool
}

// NewOpponent creates a decision policy bound to a duel.
func NewOpponent(g *Game) *Opponent {
	return &Opponent{game: g}
}

// Action is what the machine decided to do.
type Action int

const (
	ActionShoot Action = iota
	ActionUseItem
)

// Decision is one machine action: either fire at a target or use an item.
type Decision struct {
	Action     Action
	TargetSelf bool
	ItemIndex  int
}

type situation struct {
	realProbability float64
	totalBullets    int
	disadvantaged   bool
	critical        bool
}

// Decide picks the machine's next action from the current state.
func (o *Opponent) Decide() Decision {
	s := o.analyze()
	if d, ok := o.considerItems(s); ok {
		return d
	}
	return o.chooseTarget(s)
}

// Observe updates the policy after an item the machine used took effect, and
// after the cursor moves or a round resets.
func (o *Opponent) Observe(res *ItemResult) {
	if res == nil {
		return
	}
	if res.Item == ItemMagnifier && res.Revealed != nil {
		v := *res.Revealed
		o.knownNext = &v
	}
	if res.NewRound {
		o.knownNext = nil
	}
}

// ObserveBulletAdvance clears bullet knowledge once the inspected bullet is
// no longer next.
func (o *Opponent) ObserveBulletAdvance() {
	o.knownNext = nil
}

func (o *Opponent) analyze() situation {
	real, blank := o.game.RemainingBullets()
	total := real + blank
	prob := 0.0
	if total > 0 {
		prob = float64(real) / float64(total)
	}
	machine := o.game.Machine
	player := o.game.Player
	machineRatio := float64(machine.HP) / float64(machine.MaxHP)
	playerRatio := float64(player.HP) / float64(player.MaxHP)
	return situation{
		realProbability: prob,
		totalBullets:    total,
		disadvantaged:   machineRatio < playerRatio,
		critical:        machine.HP <= 1,
	}
}

// considerItems walks the inventory in slot order and returns the first item
// worth using right now.
func (o *Opponent) considerItems(s situation) (Decision, bool) {
	machine := o.game.Machine
	for i, item := range machine.Items {
		switch item {
		case ItemMagnifier:
			if s.totalBullets > 0 && o.knownNext == nil {
				return Decision{Action: ActionUseItem, ItemIndex: i}, true
			}
		case ItemCigarette, ItemMedicine:
			if machine.HP < machine.MaxHP && (s.critical || s.realProbability < 0.4) {
				return Decision{Action: ActionUseItem, ItemIndex: i}, true
			}
		case ItemSaw:
			if o.game.DamageMultiplier() == 1 &&
				((o.knownNext != nil && *o.knownNext) || s.realProbability > 0.5) {
				return Decision{Action: ActionUseItem, ItemIndex: i}, true
			}
		case ItemBeer:
			if s.totalBullets > 0 &&
				((o.knownNext != nil && *o.knownNext) || s.realProbability > 0.7) {
				return Decision{Action: ActionUseItem, ItemIndex: i}, true
			}
		case ItemHandcuffs:
			if s.disadvantaged || s.critical {
				return Decision{Action: ActionUseItem, ItemIndex: i}, true
			}
		}
	}
	return Decision{}, false
}

func (o *Opponent) chooseTarget(s situation) Decision {
	if o.knownNext != nil {
		// A known real bullet goes at the player; a known blank is a free
		// extra turn.
		return Decision{Action: ActionShoot, TargetSelf: !*o.knownNext}
	}
	if s.totalBullets == 0 {
		return Decision{Action: ActionShoot, TargetSelf: o.game.rng.Intn(2) == 0}
	}
	switch {
	case s.realProbability > 0.6:
		return Decision{Action: ActionShoot, TargetSelf: false}
	case s.realProbability < 0.4:
		return Decision{Action: ActionShoot, TargetSelf: true}
	case s.critical:
		return Decision{Action: ActionShoot, TargetSelf: false}
	case !s.disadvantaged:
		return Decision{Action: ActionShoot, TargetSelf: true}
	default:
		return Decision{Action: ActionShoot, TargetSelf: false}
	}
}
