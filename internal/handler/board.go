// Package handler implements the chat command handlers. Handlers translate
// chat commands into session, matchmaking and persistence operations and
// render the results back as text.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"board-game-bot/internal/config"
	"board-game-bot/internal/game"
	"board-game-bot/internal/game/ai"
	"board-game-bot/internal/pkg/lock"
	"board-game-bot/internal/service"
	"board-game-bot/internal/session"
)

// BoardHandler handles the board game commands: starting tic-tac-toe and
// gomoku matches, moves, surrender, stats and rankings.
type BoardHandler struct {
	cfg        *config.Config
	manager    *session.Manager
	matchmaker *session.Matchmaker
	engine     *ai.Engine
	records    *service.RecordService
	stats      *service.StatsService
	locks      *lock.PlayerLock
}

// NewBoardHandler creates a new BoardHandler instance.
func NewBoardHandler(
	cfg *config.Config,
	manager *session.Manager,
	matchmaker *session.Matchmaker,
	engine *ai.Engine,
	records *service.RecordService,
	stats *service.StatsService,
	locks *lock.PlayerLock,
) *BoardHandler {
	return &BoardHandler{
		cfg:        cfg,
		manager:    manager,
		matchmaker: matchmaker,
		engine:     engine,
		records:    records,
		stats:      stats,
		locks:      locks,
	}
}

func gameName(t game.Type) string {
	switch t {
	case game.TypeTicTacToe:
		return "井字棋"
	case game.TypeGomoku:
		return "五子棋"
	default:
		return string(t)
	}
}

func moveExample(t game.Type) string {
	if t == game.TypeGomoku {
		return "/move H8"
	}
	return "/move 5"
}

// HandleTicTacToe handles the /ttt command.
func (h *BoardHandler) HandleTicTacToe(c tele.Context) error {
	return h.handleStart(c, game.TypeTicTacToe)
}

// HandleGomoku handles the /gomoku command.
func (h *BoardHandler) HandleGomoku(c tele.Context) error {
	return h.handleStart(c, game.TypeGomoku)
}

func (h *BoardHandler) handleStart(c tele.Context, t game.Type) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	player := strconv.FormatInt(sender.ID, 10)
	group := strconv.FormatInt(chat.ID, 10)

	args := c.Args()
	if len(args) > 0 {
		switch args[0] {
		case "cancel":
			return h.cancelWaiting(c, player, group, t)
		case "ai":
			difficulty := ""
			if len(args) > 1 {
				difficulty = args[1]
			}
			return h.startAIGame(c, t, player, group, difficulty)
		}
	}
	return h.startPvPGame(c, t, player, group)
}

func (h *BoardHandler) cancelWaiting(c tele.Context, player, group string, t game.Type) error {
	if h.matchmaker.RemoveWaiting(player, group, t) {
		return c.Reply(fmt.Sprintf("已取消%s匹配", gameName(t)))
	}
	return c.Reply("你不在匹配队列中")
}

func (h *BoardHandler) startAIGame(c tele.Context, t game.Type, player, group, difficulty string) error {
	d, err := ai.ParseDifficulty(difficulty)
	if err != nil {
		return c.Reply("❌ 无效难度，可选: easy / medium / hard")
	}

	return h.locks.WithLock(player, func() error {
		sess, err := h.manager.CreateGame(t, player, game.AIPlayer, group, h.hostID(c))
		if err != nil {
			if errors.Is(err, session.ErrAlreadyInGame) {
				return c.Reply("❌ 你已有进行中的对局，先 /surrender 认输或下完它")
			}
			log.Error().Err(err).Str("type", string(t)).Msg("Failed to create AI game")
			return c.Reply("❌ 创建对局失败，请稍后重试")
		}
		sess.AIDifficulty = d

		return c.Reply(fmt.Sprintf(
			"🎮 %s人机对局开始（难度 %s）\n你执先手，用 %s 落子\n\n%s",
			gameName(t), d, moveExample(t), sess.Board.Render(),
		))
	})
}

func (h *BoardHandler) startPvPGame(c tele.Context, t game.Type, player, group string) error {
	if cur := h.manager.GetUserGame(player, group); cur != nil {
		return c.Reply("❌ 你已有进行中的对局，先 /surrender 认输或下完它")
	}

	opponent, status := h.matchmaker.TryMatchOrWait(player, group, t, h.cfg.Games.Board.MatchTimeout)
	switch status {
	case session.AlreadyWaiting:
		if wait, ok := h.matchmaker.WaitingTime(player, group, t); ok {
			return c.Reply(fmt.Sprintf("⏳ 你已在匹配队列中（已等待 %d 秒）", int(wait.Seconds())))
		}
		return c.Reply("⏳ 你已在匹配队列中")
	case session.Waiting:
		return c.Reply(fmt.Sprintf(
			"⏳ 已加入%s匹配队列，等待对手中（%d 秒后过期）\n发送 /%s cancel 取消",
			gameName(t), int(h.cfg.Games.Board.MatchTimeout.Seconds()), commandFor(t),
		))
	}

	// Matched. The waiting player queued first, so they take the first move.
	sess, err := h.manager.CreateGame(t, opponent, player, group, h.hostID(c))
	if err != nil {
		// Put the popped waiter back at the head so their wait continues.
		h.matchmaker.Requeue(opponent, group, t)
		log.Warn().Err(err).Str("type", string(t)).Msg("Matched pair could not start a game")
		return c.Reply("❌ 匹配成功但创建对局失败，对方已回到队列，请重新发起")
	}

	return c.Reply(fmt.Sprintf(
		"🎮 %s对局开始!\n玩家 %s (X) 对阵 玩家 %s (O)\n轮到玩家 %s，用 %s 落子\n\n%s",
		gameName(t), opponent, player, opponent, moveExample(t), sess.Board.Render(),
	))
}

func commandFor(t game.Type) string {
	if t == game.TypeGomoku {
		return "gomoku"
	}
	return "ttt"
}

// HandleMove handles the /move command.
func (h *BoardHandler) HandleMove(c tele.Context) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	player := strconv.FormatInt(sender.ID, 10)
	group := strconv.FormatInt(chat.ID, 10)

	args := c.Args()
	if len(args) < 1 {
		return c.Reply("❌ 用法: /move <位置>，如 /move 5 或 /move H8")
	}
	move := args[0]

	return h.locks.WithLock(player, func() error {
		sess := h.manager.GetUserGame(player, group)
		if sess == nil {
			return c.Reply("❌ 你当前没有进行中的对局")
		}
		if !sess.IsPlayerTurn(player) {
			return c.Reply("⏳ 还没轮到你")
		}

		res := sess.Board.ApplyMove(player, move)
		if res.Result == game.Invalid {
			return c.Reply("❌ 无效落子: " + res.Reason)
		}
		sess.Touch()

		if sess.IsFinished() {
			return h.concludeGame(c, sess, player)
		}
		if sess.IsAIGame {
			return h.aiTurn(c, sess)
		}
		return c.Reply(fmt.Sprintf(
			"%s\n轮到玩家 %s", sess.Board.Render(), sess.Board.CurrentPlayer(),
		))
	})
}

// concludeGame removes a terminal session and persists its outcome.
func (h *BoardHandler) concludeGame(c tele.Context, sess *session.Session, mover string) error {
	h.manager.RemoveGame(sess.ID)
	h.records.FinishGame(context.Background(), sess)

	board := sess.Board.Render()
	switch winner := sess.Winner(); winner {
	case "":
		return c.Reply(fmt.Sprintf("%s\n🤝 平局!", board))
	case game.AIPlayer:
		return c.Reply(fmt.Sprintf("%s\n🤖 机器人获胜，再接再厉!", board))
	default:
		return c.Reply(fmt.Sprintf("%s\n🎉 玩家 %s 获胜!", board, winner))
	}
}

// aiTurn computes and applies the machine's reply move. The move is computed
// on a clone; if the session was swept while thinking, the result is
// discarded instead of being applied to a dead game.
func (h *BoardHandler) aiTurn(c tele.Context, sess *session.Session) error {
	d := sess.AIDifficulty
	if d == "" {
		d = ai.Medium
	}

	move, err := h.engine.Move(sess.Board.Clone(), d)
	if err != nil {
		log.Error().Err(err).Str("game_id", sess.ID).Msg("AI move failed")
		return c.Reply("❌ 机器人行棋失败")
	}

	if h.manager.GetGame(sess.ID) == nil {
		return nil
	}

	res := sess.Board.ApplyMove(game.AIPlayer, move)
	if res.Result == game.Invalid {
		log.Error().
			Str("game_id", sess.ID).
			Str("move", move).
			Str("reason", res.Reason).
			Msg("AI produced an invalid move")
		return c.Reply("❌ 机器人行棋失败")
	}
	sess.Touch()

	if sess.IsFinished() {
		h.manager.RemoveGame(sess.ID)
		h.records.FinishGame(context.Background(), sess)
		board := sess.Board.Render()
		if sess.Winner() == game.AIPlayer {
			return c.Reply(fmt.Sprintf("🤖 机器人落子 %s\n%s\n🤖 机器人获胜，再接再厉!", move, board))
		}
		return c.Reply(fmt.Sprintf("🤖 机器人落子 %s\n%s\n🤝 平局!", move, board))
	}
	return c.Reply(fmt.Sprintf("🤖 机器人落子 %s\n%s\n轮到你了", move, sess.Board.Render()))
}

// HandleSurrender handles the /surrender command.
func (h *BoardHandler) HandleSurrender(c tele.Context) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	player := strconv.FormatInt(sender.ID, 10)
	group := strconv.FormatInt(chat.ID, 10)

	return h.locks.WithLock(player, func() error {
		sess := h.manager.GetUserGame(player, group)
		if sess == nil {
			return c.Reply("❌ 你当前没有进行中的对局")
		}

		h.manager.RemoveGame(sess.ID)
		h.records.FinishForfeit(context.Background(), sess, player)

		winner := sess.Opponent(player)
		if winner == game.AIPlayer {
			return c.Reply("🏳️ 你认输了，机器人获胜")
		}
		return c.Reply(fmt.Sprintf("🏳️ 玩家 %s 认输，玩家 %s 获胜!", player, winner))
	})
}

// HandleStats handles the /stats command.
func (h *BoardHandler) HandleStats(c tele.Context) error {
	sender := c.Sender()
	chat := c.Chat()
	if sender == nil || chat == nil {
		return nil
	}
	player := strconv.FormatInt(sender.ID, 10)
	group := strconv.FormatInt(chat.ID, 10)

	ctx := context.Background()
	types := []game.Type{game.TypeTicTacToe, game.TypeGomoku}
	all, err := h.stats.UserStats(ctx, player, group, types)
	if err != nil {
		log.Error().Err(err).Str("player", player).Msg("Failed to load user stats")
		return c.Reply("❌ 查询战绩失败，请稍后重试")
	}
	if len(all) == 0 {
		return c.Reply("📊 你在本群还没有对局记录")
	}

	var b strings.Builder
	b.WriteString("📊 你的战绩\n")
	for _, t := range types {
		s, ok := all[t]
		if !ok {
			continue
		}
		rate := 0.0
		if s.TotalGames > 0 {
			rate = float64(s.Wins) / float64(s.TotalGames) * 100
		}
		fmt.Fprintf(&b, "\n%s: %d 胜 %d 负 %d 平 (胜率 %.1f%%)",
			gameName(t), s.Wins, s.Losses, s.Draws, rate)
		if s.CurrentStreak > 1 {
			fmt.Fprintf(&b, " 🔥%d 连胜", s.CurrentStreak)
		}
	}
	return c.Reply(b.String())
}

// HandleRanking handles the /ranking command.
func (h *BoardHandler) HandleRanking(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	group := strconv.FormatInt(chat.ID, 10)

	t := game.TypeTicTacToe
	if args := c.Args(); len(args) > 0 {
		switch args[0] {
		case "ttt", string(game.TypeTicTacToe):
			t = game.TypeTicTacToe
		case string(game.TypeGomoku):
			t = game.TypeGomoku
		default:
			return c.Reply("❌ 用法: /ranking [ttt|gomoku]")
		}
	}

	entries, err := h.stats.GroupRanking(context.Background(), group, t, h.cfg.Games.Board.RankingLimit)
	if err != nil {
		log.Error().Err(err).Str("group", group).Msg("Failed to load ranking")
		return c.Reply("❌ 查询排行榜失败，请稍后重试")
	}
	if len(entries) == 0 {
		return c.Reply(fmt.Sprintf("🏆 本群还没有%s对局记录", gameName(t)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 %s排行榜\n", gameName(t))
	medals := []string{"🥇", "🥈", "🥉"}
	for i, e := range entries {
		prefix := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			prefix = medals[i]
		}
		rate := 0.0
		if e.TotalGames > 0 {
			rate = float64(e.Wins) / float64(e.TotalGames) * 100
		}
		fmt.Fprintf(&b, "\n%s 玩家 %s: %d 胜 / %d 局 (%.1f%%)",
			prefix, e.UserID, e.Wins, e.TotalGames, rate)
	}
	return c.Reply(b.String())
}

func (h *BoardHandler) hostID(c tele.Context) string {
	if bot := c.Bot(); bot != nil && bot.Me != nil {
		return strconv.FormatInt(bot.Me.ID, 10)
	}
	return "bot"
}
