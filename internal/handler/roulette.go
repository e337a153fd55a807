package handler

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"board-game-bot/internal/config"
	"board-game-bot/internal/game/roulette"
	"board-game-bot/internal/pkg/lock"
)

// RouletteHandler handles the roulette duel commands. Duels are per-player
// against the machine and live only in memory.
type RouletteHandler struct {
	cfg   *config.Config
	store *roulette.Store
	locks *lock.PlayerLock
}

// NewRouletteHandler creates a new RouletteHandler instance.
func NewRouletteHandler(cfg *config.Config, store *roulette.Store, locks *lock.PlayerLock) *RouletteHandler {
	return &RouletteHandler{cfg: cfg, store: store, locks: locks}
}

func itemName(i roulette.Item) string {
	switch i {
	case roulette.ItemMagnifier:
		return "放大镜"
	case roulette.ItemCigarette:
		return "香烟"
	case roulette.ItemSaw:
		return "手锯"
	case roulette.ItemHandcuffs:
		return "手铐"
	case roulette.ItemBeer:
		return "啤酒"
	case roulette.ItemMedicine:
		return "药品"
	default:
		return i.Name()
	}
}

func itemHint(i roulette.Item) string {
	switch i {
	case roulette.ItemMagnifier:
		return "查看下一发子弹"
	case roulette.ItemCigarette:
		return "回复 1 点生命"
	case roulette.ItemSaw:
		return "下一发实弹伤害翻倍"
	case roulette.ItemHandcuffs:
		return "对方跳过下一回合"
	case roulette.ItemBeer:
		return "退掉当前子弹"
	case roulette.ItemMedicine:
		return "回复 2 点生命"
	default:
		return i.Description()
	}
}

func hearts(p *roulette.Player) string {
	return strings.Repeat("❤️", p.HP) + strings.Repeat("🖤", p.MaxHP-p.HP)
}

// HandleRoulette handles the /roulette command: no argument or a difficulty
// starts a duel, "status" shows the current one, "quit" abandons it.
func (h *RouletteHandler) HandleRoulette(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	player := strconv.FormatInt(sender.ID, 10)
	host := h.hostID(c)

	arg := ""
	if args := c.Args(); len(args) > 0 {
		arg = args[0]
	}

	return h.locks.WithLock(player, func() error {
		switch arg {
		case "status":
			g := h.store.Load(host, player)
			if g == nil {
				return c.Reply("❌ 你没有进行中的决斗，发送 /roulette 开始")
			}
			return c.Reply(h.renderStatus(g))
		case "quit":
			if h.store.Delete(host, player) {
				return c.Reply("🏳️ 决斗已放弃")
			}
			return c.Reply("❌ 你没有进行中的决斗")
		}

		d, err := roulette.ParseDifficulty(arg)
		if err != nil {
			return c.Reply("❌ 用法: /roulette [easy|normal|hard|status|quit]")
		}
		if arg == "" {
			if cd, cerr := roulette.ParseDifficulty(h.cfg.Games.Roulette.Difficulty); cerr == nil {
				d = cd
			}
		}
		if h.store.Load(host, player) != nil {
			return c.Reply("❌ 你已有进行中的决斗，发送 /roulette status 查看或 /roulette quit 放弃")
		}

		g := roulette.New(player, d)
		h.store.Save(host, player, g)

		real, blank := g.RemainingBullets()
		return c.Reply(fmt.Sprintf(
			"🔫 恶魔轮盘决斗开始（难度 %s）\n弹巢装填: %d 实弹 %d 空包弹\n\n%s\n你先开枪: /shoot self 朝自己 或 /shoot opp 朝机器\n使用道具: /item <编号>",
			d, real, blank, h.renderStatus(g),
		))
	})
}

// HandleShoot handles the /shoot command.
func (h *RouletteHandler) HandleShoot(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	player := strconv.FormatInt(sender.ID, 10)
	host := h.hostID(c)

	args := c.Args()
	if len(args) < 1 || (args[0] != "self" && args[0] != "opp") {
		return c.Reply("❌ 用法: /shoot self|opp")
	}
	targetSelf := args[0] == "self"

	return h.locks.WithLock(player, func() error {
		g := h.store.Load(host, player)
		if g == nil {
			return c.Reply("❌ 你没有进行中的决斗，发送 /roulette 开始")
		}
		if !g.IsPlayerTurn() {
			return c.Reply("⏳ 还没轮到你")
		}

		var b strings.Builder
		res, err := g.Shoot(targetSelf)
		if err != nil {
			return c.Reply("❌ 决斗已结束")
		}
		h.describeShot(&b, res, true)

		if !g.GameOver() && !g.IsPlayerTurn() {
			h.machineTurns(g, &b)
		}
		return h.finishReply(c, host, player, g, &b)
	})
}

// HandleItem handles the /item command.
func (h *RouletteHandler) HandleItem(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	player := strconv.FormatInt(sender.ID, 10)
	host := h.hostID(c)

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ 用法: /item <编号>，编号见 /roulette status")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < 1 {
		return c.Reply("❌ 无效的道具编号")
	}

	return h.locks.WithLock(player, func() error {
		g := h.store.Load(host, player)
		if g == nil {
			return c.Reply("❌ 你没有进行中的决斗，发送 /roulette 开始")
		}
		if !g.IsPlayerTurn() {
			return c.Reply("⏳ 还没轮到你")
		}

		res, err := g.UseItem(slot - 1)
		if err != nil {
			return c.Reply("❌ 没有这个道具编号，见 /roulette status")
		}

		var b strings.Builder
		h.describeItemUse(&b, res, true)
		return h.finishReply(c, host, player, g, &b)
	})
}

// machineTurns plays the machine until the gun returns to the player or the
// duel ends, appending a transcript of every action.
func (h *RouletteHandler) machineTurns(g *roulette.Game, b *strings.Builder) {
	// Every decision either consumes an item slot or a bullet, so the loop
	// terminates; the bound only guards against a policy bug.
	const maxActions = 64
	actions := 0

	for !g.GameOver() && !g.IsPlayerTurn() && actions < maxActions {
		opp := roulette.NewOpponent(g)
		for !g.GameOver() && !g.IsPlayerTurn() && actions < maxActions {
			actions++
			d := opp.Decide()
			if d.Action == roulette.ActionUseItem {
				res, err := g.UseItem(d.ItemIndex)
				if err != nil {
					return
				}
				h.describeItemUse(b, res, false)
				opp.Observe(res)
				continue
			}
			res, err := g.Shoot(d.TargetSelf)
			if err != nil {
				return
			}
			h.describeShot(b, res, false)
			opp.ObserveBulletAdvance()
			if res.NewRound {
				opp.Observe(&roulette.ItemResult{NewRound: true})
			}
			if !res.ContinueTurn {
				break
			}
		}
	}
}

func (h *RouletteHandler) describeShot(b *strings.Builder, res *roulette.ShootResult, byPlayer bool) {
	who := "🤖 机器"
	if byPlayer {
		who = "你"
	}
	target := "自己"
	if res.Shooter != res.Target {
		if byPlayer {
			target = "机器"
		} else {
			target = "你"
		}
	}
	if res.Real {
		fmt.Fprintf(b, "%s朝%s开枪: 💥 实弹! 造成 %d 点伤害\n", who, target, res.Damage)
	} else {
		fmt.Fprintf(b, "%s朝%s开枪: 咔哒，空包弹\n", who, target)
		if res.ContinueTurn {
			fmt.Fprintf(b, "%s获得额外行动\n", who)
		}
	}
	if res.NewRound {
		b.WriteString("🔄 弹巢打空，重新装填并补发道具\n")
	}
}

func (h *RouletteHandler) describeItemUse(b *strings.Builder, res *roulette.ItemResult, byPlayer bool) {
	who := "🤖 机器"
	if byPlayer {
		who = "你"
	}
	fmt.Fprintf(b, "%s使用了%s: ", who, itemName(res.Item))
	switch {
	case res.Item == roulette.ItemMagnifier && res.Revealed != nil:
		if byPlayer {
			if *res.Revealed {
				b.WriteString("下一发是实弹 💥\n")
			} else {
				b.WriteString("下一发是空包弹\n")
			}
		} else {
			// The machine's peek is secret.
			b.WriteString("偷看了下一发子弹\n")
		}
	case res.Healed > 0:
		fmt.Fprintf(b, "回复 %d 点生命\n", res.Healed)
	case res.Item == roulette.ItemSaw:
		b.WriteString("下一发实弹伤害翻倍\n")
	case res.Item == roulette.ItemHandcuffs:
		b.WriteString("对方将跳过下一回合\n")
	case res.Item == roulette.ItemBeer:
		b.WriteString("退掉了当前子弹\n")
	default:
		b.WriteString("没有效果\n")
	}
	if res.NewRound {
		b.WriteString("🔄 弹巢打空，重新装填并补发道具\n")
	}
}

// finishReply appends the outcome or current status and sends the transcript.
func (h *RouletteHandler) finishReply(c tele.Context, host, player string, g *roulette.Game, b *strings.Builder) error {
	if g.GameOver() {
		h.store.Delete(host, player)
		if g.Winner() == g.Player.Name {
			b.WriteString("\n🎉 你赢了这场决斗!")
		} else {
			b.WriteString("\n💀 你倒下了，机器获胜")
		}
		return c.Reply(b.String())
	}
	b.WriteString("\n")
	b.WriteString(h.renderStatus(g))
	return c.Reply(b.String())
}

// renderStatus draws hp, bullets and the player's inventory.
func (h *RouletteHandler) renderStatus(g *roulette.Game) string {
	var b strings.Builder
	real, blank := g.RemainingBullets()
	fmt.Fprintf(&b, "第 %d 轮 | 剩余子弹: %d 实弹 %d 空包弹\n", g.Round, real, blank)
	fmt.Fprintf(&b, "你: %s\n🤖 机器: %s\n", hearts(g.Player), hearts(g.Machine))
	if g.DamageMultiplier() > 1 {
		b.WriteString("🪚 下一发实弹伤害翻倍\n")
	}
	if len(g.Player.Items) == 0 {
		b.WriteString("道具: 无")
	} else {
		b.WriteString("道具:")
		for i, item := range g.Player.Items {
			fmt.Fprintf(&b, "\n  %d. %s（%s）", i+1, itemName(item), itemHint(item))
		}
	}
	if g.IsPlayerTurn() {
		b.WriteString("\n轮到你: /shoot self|opp 或 /item <编号>")
	}
	return b.String()
}

func (h *RouletteHandler) hostID(c tele.Context) string {
	if bot := c.Bot(); bot != nil && bot.Me != nil {
		return strconv.FormatInt(bot.Me.ID, 10)
	}
	return "bot"
}
