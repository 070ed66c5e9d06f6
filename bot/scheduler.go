package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"sanction-bot/model"
	"sanction-bot/sanction"
	"sanction-bot/scanner"
	"sanction-bot/tasks"
	"sanction-bot/utils"
)

// recoveryTimeout bounds the start-up scan of active sanctions.
const recoveryTimeout = 2 * time.Minute

// BotProvider defines the methods the scheduler needs from the Bot.
type BotProvider interface {
	GetConfig() *model.Config
	GetSession() *discordgo.Session
	GetEngine() *sanction.Engine
	GetIssueLocks() *utils.KeyedLock
	GetStats() tasks.StatsSource
}

// Scheduler manages all scheduled tasks.
type Scheduler struct {
	bot  BotProvider
	done chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler(bot BotProvider) *Scheduler {
	return &Scheduler{
		bot:  bot,
		done: make(chan struct{}),
	}
}

// Start begins all scheduled tasks.
func (s *Scheduler) Start() {
	s.wg.Add(4)

	// Rebuild timers for sanctions issued before the restart
	go s.runRecovery()

	// Reconcile expired sanctions whose timers were lost
	go s.startSanctionSweep()

	go s.startScheduledTasks()

	// Post the daily sanction report
	go s.startDailyTasks()
}

// Stop terminates all scheduled tasks gracefully.
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	close(s.done)
	s.wg.Wait()
	log.Println("Scheduler stopped.")
}

func (s *Scheduler) runRecovery() {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), recoveryTimeout)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	report, err := s.bot.GetEngine().RecoverAll(ctx)
	cfg := s.bot.GetConfig()
	if err != nil {
		log.Printf("[Scheduler] Sanction recovery failed: %v", err)
		utils.LogError(s.bot.GetSession(), cfg.LogChannelID, "Sanction", "Recovery", err.Error())
		return
	}
	if report.Scanned > 0 {
		utils.LogInfo(s.bot.GetSession(), cfg.LogChannelID, "Sanction", "Recovery", report.String())
	}
}

func (s *Scheduler) startSanctionSweep() {
	defer s.wg.Done()
	scanner.StartSanctionSweep(s.bot.GetEngine(), s.bot.GetConfig().SweepInterval, s.done, func(r sanction.SweepReport) {
		if r.EffectFailed > 0 || r.Failed > 0 {
			utils.LogWarn(s.bot.GetSession(), s.bot.GetConfig().LogChannelID, "Sanction", "Sweep", r.String())
		}
	})
}

func (s *Scheduler) startScheduledTasks() {
	defer s.wg.Done()
	lockPruneTicker := time.NewTicker(1 * time.Hour)
	defer lockPruneTicker.Stop()

	for {
		select {
		case <-lockPruneTicker.C:
			if n := s.bot.GetIssueLocks().Prune(); n > 0 {
				log.Printf("[Scheduler] Pruned %d expired issue locks", n)
			}
		case <-s.done:
			return
		}
	}
}

func (s *Scheduler) startDailyTasks() {
	defer s.wg.Done()
	runHours := []int{5} // 5 AM

	for {
		now := time.Now()
		next := nextRun(now, runHours)

		log.Printf("[Scheduler] Next daily sanction report scheduled for: %v", next)
		select {
		case <-time.After(next.Sub(now)):
			s.runDailySanctionReport()
		case <-s.done:
			return
		}
	}
}

// nextRun returns the first of the given hours strictly after now, rolling over to tomorrow.
func nextRun(now time.Time, runHours []int) time.Time {
	for _, h := range runHours {
		t := time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		if now.Before(t) {
			return t
		}
	}
	tomorrow := now.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), runHours[0], 0, 0, 0, now.Location())
}

func (s *Scheduler) runDailySanctionReport() {
	log.Println("[Scheduler] Running daily sanction report...")
	cfg := s.bot.GetConfig()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for guildID := range cfg.ServerConfigs {
		channelID := cfg.LogChannelFor(guildID)
		if channelID == "" {
			continue
		}
		tasks.PostSanctionStats(ctx, s.bot.GetSession(), s.bot.GetStats(), guildID, channelID, 24*time.Hour)
	}
}
