package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foguinho/internal/common"
	"foguinho/internal/features/fire"
	"foguinho/internal/models"
)

// CommandKind is the closed set of chat commands. Dispatch is an exhaustive
// switch over this enum, so adding a command is a compile-time-checked
// change, not a new string case.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdFire                // !fogo, !streak — current status
	CmdRestore             // !restaurar, !restore — revive the fire
	CmdLevel               // !nivel, !level — level and progress
	CmdRanking             // !ranking — top users
)

// String returns the metrics label for the command.
func (k CommandKind) String() string {
	switch k {
	case CmdFire:
		return "fogo"
	case CmdRestore:
		return "restaurar"
	case CmdLevel:
		return "nivel"
	case CmdRanking:
		return "ranking"
	default:
		return "unknown"
	}
}

// availableCommands is the help list echoed on unknown commands.
var availableCommands = []string{"!fogo", "!restaurar", "!nivel", "!ranking"}

var commandPrefixes = []string{"!", "/"}

// ParseCommand reports whether the (trimmed, case-insensitive) body is a
// command and which one. A body without a command prefix is ordinary
// activity, not a command.
func ParseCommand(body string) (CommandKind, bool) {
	text := strings.ToLower(strings.TrimSpace(body))

	hasPrefix := false
	for _, prefix := range commandPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}
	if !hasPrefix {
		return CmdUnknown, false
	}

	parts := strings.Fields(text)
	if len(parts) == 0 {
		return CmdUnknown, false
	}

	switch parts[0] {
	case "fogo", "streak":
		return CmdFire, true
	case "restaurar", "restore":
		return CmdRestore, true
	case "nivel", "level":
		return CmdLevel, true
	case "ranking":
		return CmdRanking, true
	default:
		return CmdUnknown, true
	}
}

// commandResponse is the JSON reply to a webhook command.
type commandResponse struct {
	Status            string   `json:"status,omitempty"`
	Message           string   `json:"message,omitempty"`
	AvailableCommands []string `json:"availableCommands,omitempty"`
}

// handleCommand runs one command against the engine and builds the chat
// reply. Quota exhaustion is an informational reply, not a failure.
func (s *Server) handleCommand(ctx context.Context, kind CommandKind, groupID, userID string, now time.Time) (commandResponse, error) {
	switch kind {
	case CmdFire:
		report, err := s.engine.Status(ctx, groupID, now)
		if err != nil {
			return commandResponse{}, err
		}
		used, err := s.engine.RestorationsUsed(ctx, groupID, now)
		if err != nil {
			return commandResponse{}, err
		}
		return commandResponse{Message: fireStatusMessage(report, used)}, nil

	case CmdRestore:
		result, err := s.engine.Restore(ctx, groupID, userID, now)
		if errors.Is(err, common.ErrRestorationLimitExceeded) {
			report, statusErr := s.engine.Status(ctx, groupID, now)
			if statusErr != nil {
				return commandResponse{}, statusErr
			}
			used, countErr := s.engine.RestorationsUsed(ctx, groupID, now)
			if countErr != nil {
				return commandResponse{}, countErr
			}
			return commandResponse{Message: restoreLimitMessage(used, report.Group.MaxRestorations)}, nil
		}
		if err != nil {
			return commandResponse{}, err
		}
		report, err := s.engine.Status(ctx, groupID, now)
		if err != nil {
			return commandResponse{}, err
		}
		return commandResponse{Message: restoreSuccessMessage(result, report.RequiredUsers)}, nil

	case CmdLevel:
		report, err := s.engine.Status(ctx, groupID, now)
		if err != nil {
			return commandResponse{}, err
		}
		return commandResponse{Message: levelMessage(report)}, nil

	case CmdRanking:
		ranking, err := s.tracker.Ranking(ctx, groupID, s.rankingSize)
		if err != nil {
			return commandResponse{}, err
		}
		return commandResponse{Message: rankingMessage(ranking)}, nil

	default:
		return commandResponse{
			Status:            "unknown_command",
			AvailableCommands: availableCommands,
		}, nil
	}
}

func fireStatusMessage(report *fire.StatusReport, restorationsUsed int) string {
	g := report.Group
	var b strings.Builder

	fmt.Fprintf(&b, "🔥 *Status do Foguinho*\n\n")
	fmt.Fprintf(&b, "Streak atual: *%s*\n", common.FormatDias(g.Streak))
	fmt.Fprintf(&b, "Nível: *%s*\n", report.Level.Label)
	fmt.Fprintf(&b, "Usuários ativos hoje: *%d/%d*\n", report.ActiveUsersToday, report.RequiredUsers)
	fmt.Fprintf(&b, "Restaurações usadas no mês: *%d/%d*\n", restorationsUsed, g.MaxRestorations)

	if g.Status == models.StatusAtRisk {
		missing := report.RequiredUsers - report.ActiveUsersToday
		fmt.Fprintf(&b, "Status: ⚠️ Em risco\n\n")
		fmt.Fprintf(&b, "⚠️ *Atenção!* Precisa de mais %d %s ativa(s) hoje!",
			missing, common.PluralizePessoas(missing))
	} else {
		fmt.Fprintf(&b, "Status: ✅ Ativo\n\n")
		fmt.Fprintf(&b, "🎉 Foguinho mantido hoje! Continue assim!")
	}
	return b.String()
}

func restoreSuccessMessage(result *fire.RestorationResult, requiredUsers int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔥 *Foguinho Restaurado!*\n\n")
	fmt.Fprintf(&b, "O fogo foi reaceso! 🎉\n")
	fmt.Fprintf(&b, "Novo streak: *%s*\n", common.FormatDias(result.NewStreak))
	fmt.Fprintf(&b, "Nível: *%s*\n\n", result.Level.Label)
	fmt.Fprintf(&b, "Restaurações restantes: *%d/%d*\n", result.Remaining, result.MaxRestorations)
	fmt.Fprintf(&b, "⚠️ Lembrem-se: precisam de pelo menos %d %s ativas por dia!",
		requiredUsers, common.PluralizePessoas(requiredUsers))
	return b.String()
}

func restoreLimitMessage(used, max int) string {
	return fmt.Sprintf(
		"❌ *Limite de restaurações atingido!*\n\n"+
			"Vocês já usaram %d/%d restaurações este mês.\n"+
			"Aguardem o próximo mês para mais restaurações! 🗓️",
		used, max,
	)
}

func levelMessage(report *fire.StatusReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔥 *Nível do Foguinho*\n\n")
	fmt.Fprintf(&b, "Nível atual: *%s*\n", report.Level.Label)
	fmt.Fprintf(&b, "Streak: *%s*\n\n", common.FormatDias(report.Group.Streak))

	progress := fire.ProgressToNext(report.Group.Streak)
	if progress.Next == nil {
		fmt.Fprintf(&b, "🏆 *Nível máximo atingido!*")
		return b.String()
	}
	fmt.Fprintf(&b, "Próximo nível: *%s*\n", progress.Next.Label)
	fmt.Fprintf(&b, "Faltam: *%s* (%d%%)", common.FormatDias(progress.DaysRemaining), progress.Percent)
	return b.String()
}

var rankingMedals = []string{"🥇", "🥈", "🥉"}

func rankingMessage(ranking []models.UserActivity) string {
	if len(ranking) == 0 {
		return "🏆 *Ranking do Grupo*\n\nAinda não há atividade registrada neste grupo."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 *Ranking do Grupo*\n\n")
	for i, ua := range ranking {
		medal := fmt.Sprintf("%dº", i+1)
		if i < len(rankingMedals) {
			medal = rankingMedals[i]
		}
		fmt.Fprintf(&b, "%s *%s*\n", medal, ua.UserID)
		fmt.Fprintf(&b, "   📱 %d %s\n", ua.Messages, common.PluralizeMensagens(ua.Messages))
		fmt.Fprintf(&b, "   🔥 %d %s ativo(s)\n\n", ua.DaysActive, common.PluralizeDias(ua.DaysActive))
	}
	return strings.TrimRight(b.String(), "\n")
}
