package bot

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/commands"
	"sanction-bot/config"
	"sanction-bot/model"
	"sanction-bot/platform"
	"sanction-bot/sanction"
	"sanction-bot/tasks"
	"sanction-bot/utils"
	sanctions_db "sanction-bot/utils/database/sanctions"
)

// issueLockHold blocks duplicate submissions of the same sanction command.
const issueLockHold = 10 * time.Second

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	config             atomic.Value // *model.Config
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	Store              *sanctions_db.Store
	Engine             *sanction.Engine
	IssueLocks         *utils.KeyedLock
	StartedAt          time.Time
	scheduler          *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetEngine() *sanction.Engine {
	return b.Engine
}

func (b *Bot) GetStore() *sanctions_db.Store {
	return b.Store
}

func (b *Bot) GetIssueLocks() *utils.KeyedLock {
	return b.IssueLocks
}

func (b *Bot) GetStats() tasks.StatsSource {
	return b.Store
}

func New(cfg *model.Config, store *sanctions_db.Store) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers | discordgo.IntentsGuildVoiceStates

	b := &Bot{
		Session:    dg,
		Store:      store,
		IssueLocks: utils.NewKeyedLock(issueLockHold),
		StartedAt:  time.Now(),
	}
	b.config.Store(cfg)

	b.Engine = sanction.NewEngine(store, sanction.NewEffectTable(platform.NewDiscord(dg)), sanction.Options{
		Alerter:       utils.NewChannelLogger(dg, b, "Sanction"),
		IDMaxAttempts: cfg.IDMaxAttempts,
		EffectTimeout: cfg.EffectTimeout,
	})
	return b, nil
}

// Close stops background work before the session, so in-flight reversals can
// still reach the platform.
func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	b.Engine.Close()
	if err := b.Session.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
	if err := b.Store.Close(); err != nil {
		log.Printf("Error closing sanction store: %v", err)
	}
}

func (b *Bot) RefreshCommands(guildID string) {
	cmds := commands.GenerateCommands()
	log.Printf("Registering %d commands for guild %s...", len(cmds), guildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", guildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}

// ReloadConfig re-reads configuration. Engine options keep their start-up values.
func (b *Bot) ReloadConfig() error {
	log.Println("Reloading configuration...")
	newCfg, err := config.Load()
	if err != nil {
		log.Printf("Error reloading config: %v", err)
		return err
	}
	b.config.Store(newCfg)
	log.Println("Configuration reloaded successfully.")

	for _, serverCfg := range newCfg.ServerConfigs {
		go b.RefreshCommands(serverCfg.GuildID)
	}
	return nil
}
