// Package bot provides the Telegram bot initialization, middleware and
// handler registration.
package bot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"board-game-bot/internal/config"
	"board-game-bot/internal/game"
	"board-game-bot/internal/game/ai"
	"board-game-bot/internal/game/roulette"
	"board-game-bot/internal/handler"
	"board-game-bot/internal/pkg/lock"
	"board-game-bot/internal/service"
	"board-game-bot/internal/session"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot *tele.Bot
	cfg *config.Config

	manager    *session.Manager
	matchmaker *session.Matchmaker

	boardHandler    *handler.BoardHandler
	rouletteHandler *handler.RouletteHandler
}

// Dependencies holds everything the bot handlers need.
type Dependencies struct {
	Config        *config.Config
	Manager       *session.Manager
	Matchmaker    *session.Matchmaker
	GameRegistry  *game.Registry
	AIEngine      *ai.Engine
	RecordService *service.RecordService
	StatsService  *service.StatsService
	RouletteStore *roulette.Store
	PlayerLock    *lock.PlayerLock
}

// New creates a new Bot instance with the given dependencies.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:        teleBot,
		cfg:        deps.Config,
		manager:    deps.Manager,
		matchmaker: deps.Matchmaker,
	}

	b.boardHandler = handler.NewBoardHandler(
		deps.Config,
		deps.Manager,
		deps.Matchmaker,
		deps.AIEngine,
		deps.RecordService,
		deps.StatsService,
		deps.PlayerLock,
	)
	b.rouletteHandler = handler.NewRouletteHandler(deps.Config, deps.RouletteStore, deps.PlayerLock)

	b.registerMiddleware()
	b.registerHandlers()

	return b, nil
}

func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

func (b *Bot) registerHandlers() {
	// Board games
	b.bot.Handle("/ttt", b.boardHandler.HandleTicTacToe)
	b.bot.Handle("/gomoku", b.boardHandler.HandleGomoku)
	b.bot.Handle("/move", b.boardHandler.HandleMove)
	b.bot.Handle("/surrender", b.boardHandler.HandleSurrender)
	b.bot.Handle("/stats", b.boardHandler.HandleStats)
	b.bot.Handle("/ranking", b.boardHandler.HandleRanking)

	// Roulette duel
	b.bot.Handle("/roulette", b.rouletteHandler.HandleRoulette)
	b.bot.Handle("/shoot", b.rouletteHandler.HandleShoot)
	b.bot.Handle("/item", b.rouletteHandler.HandleItem)

	b.bot.Handle("/help", b.handleHelp)
}

func (b *Bot) handleHelp(c tele.Context) error {
	return c.Reply(`🎮 棋类游戏
/ttt - 井字棋匹配对战（/ttt ai [easy|medium|hard] 人机）
/gomoku - 五子棋匹配对战（/gomoku ai [难度] 人机）
/move <位置> - 落子，如 /move 5 或 /move H8
/surrender - 认输
/stats - 查看战绩
/ranking [ttt|gomoku] - 查看排行榜

🔫 恶魔轮盘
/roulette [难度|status|quit] - 开始/查看/放弃决斗
/shoot self|opp - 开枪
/item <编号> - 使用道具`)
}

// HostID returns the bot's own account id, used to scope sessions.
func (b *Bot) HostID() string {
	if b.bot.Me != nil {
		return strconv.FormatInt(b.bot.Me.ID, 10)
	}
	return "bot"
}

// Start starts the bot polling. It blocks until Stop is called.
func (b *Bot) Start() {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot")
	b.bot.Stop()
}

// Telebot returns the underlying telebot instance.
func (b *Bot) Telebot() *tele.Bot {
	return b.bot
}
