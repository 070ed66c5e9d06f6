package handlers

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"sanction-bot/bot"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	// Get CPU info
	cpuCount, _ := cpu.Counts(true)
	cpuUsage := "N/A"
	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}

	// Get memory info
	memUsage := "N/A"
	if vm, err := mem.VirtualMemory(); err == nil {
		memUsage = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}

	// Get host info
	osVersion, kernel := "N/A", "N/A"
	if hostInfo, err := host.Info(); err == nil {
		osVersion = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		kernel = hostInfo.KernelVersion
	}

	var dbSize float64
	if fi, err := os.Stat(b.GetConfig().DatabasePath); err == nil {
		dbSize = float64(fi.Size()) / 1024 / 1024
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	storeStatus := "✅"
	if err := b.GetStore().Ping(ctx); err != nil {
		storeStatus = "❌ " + err.Error()
	}

	embed := &discordgo.MessageEmbed{
		Title: "系统信息",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS 版本", Value: osVersion, Inline: true},
			{Name: "🔧 内核版本", Value: kernel, Inline: true},
			{Name: "🐹 Go 版本", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPU 数量", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU 使用率", Value: cpuUsage, Inline: true},
			{Name: "🧠 系统内存", Value: memUsage, Inline: true},
			{Name: "🗃️ 数据库大小", Value: fmt.Sprintf("%.2f MB", dbSize), Inline: true},
			{Name: "🩺 数据库状态", Value: storeStatus, Inline: true},
			{Name: "⏱️ WebSocket 延迟", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "⏳ 处罚计时器", Value: fmt.Sprintf("%d", b.GetEngine().Timers().Len()), Inline: true},
			{Name: "🕒 运行时间", Value: time.Since(b.StartedAt).Round(time.Second).String(), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("系统监控・今天%s", time.Now().Format("15:04")),
		},
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}
