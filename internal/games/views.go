package games

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/vntrieu/werewolf/internal/action"
	"github.com/vntrieu/werewolf/internal/roles"
	"github.com/vntrieu/werewolf/internal/store"
)

const (
	colorLobby   = "#5865F2"
	colorNight   = "#2C2F33"
	colorDay     = "#FEE75C"
	colorVoting  = "#EB459E"
	colorDeath   = "#ED4245"
	colorSafe    = "#57F287"
	colorNeutral = "#99AAB5"
)

func button(kind action.Kind, gameID int64, target, label, emoji string, style ButtonStyle) Button {
	return Button{
		Label:  label,
		Emoji:  emoji,
		Style:  style,
		Action: action.New(kind, gameID).WithTarget(target).Encode(),
	}
}

func targetButtons(kind action.Kind, gameID int64, targets []*Player, style ButtonStyle) []Button {
	out := make([]Button, 0, len(targets))
	for _, t := range targets {
		out = append(out, button(kind, gameID, t.ID, t.Name, "", style))
	}
	return out
}

func others(st *GameState, actor *Player, keep func(*Player) bool) []*Player {
	var out []*Player
	for _, p := range st.AlivePlayers() {
		if p.ID != actor.ID && keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func anyone(*Player) bool { return true }

func mmss(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func names(ps []*Player) string {
	if len(ps) == 0 {
		return "nobody"
	}
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name)
	}
	return strings.Join(out, ", ")
}

func roleLabel(r roles.Role) string {
	d := roles.Get(r)
	return d.Emoji + " " + d.Name
}

func startNightButton(st *GameState) Button {
	return button(action.KindStartNight, st.ID, "", "Start night", "🌙", StylePrimary)
}

// Lobby

func lobbyAnnouncement(s *session) Announcement {
	st := s.state
	lines := make([]string, 0, st.PlayerCount())
	for i, p := range st.Players() {
		line := fmt.Sprintf("%d. %s", i+1, p.Name)
		if p.ID == st.OwnerID {
			line += " 👑"
		}
		lines = append(lines, line)
	}
	a := Announcement{
		Title: "🐺 A game of Werewolf is gathering",
		Color: colorLobby,
		Image: s.inviteImage,
		Fields: []Field{
			{Name: fmt.Sprintf("Players (%d)", st.PlayerCount()), Value: strings.Join(lines, "\n")},
		},
	}
	switch st.Status {
	case StatusSetup:
		a.Body = fmt.Sprintf("Press **Join** to take a seat. At least %d players are needed.", MinPlayers)
		if len(s.passwordHash) > 0 {
			a.Body += "\n🔒 This lobby is password protected."
		}
		a.Fields = append(a.Fields, Field{Name: "Starts in", Value: mmss(s.countdown), Inline: true})
		a.Buttons = []Button{
			button(action.KindJoin, st.ID, "", "Join", "✋", StyleSuccess),
			button(action.KindLeave, st.ID, "", "Leave", "🚪", StyleSecondary),
			button(action.KindBeginConfig, st.ID, "", "Start", "▶️", StylePrimary),
			button(action.KindRules, st.ID, "", "Rules", "📜", StyleSecondary),
		}
	default:
		a.Body = "The lobby is closed. The owner is choosing roles."
	}
	return a
}

func lobbyCancelledAnnouncement(players int) Announcement {
	return Announcement{
		Title: "🐺 Game cancelled",
		Body:  fmt.Sprintf("Only %d player(s) joined; at least %d are needed.", players, MinPlayers),
		Color: colorNeutral,
	}
}

// Role configuration

func roleConfigFields(st *GameState, settings []store.GameRole) []Field {
	var on, off []string
	for _, r := range settings {
		if r.Enabled || r.Role.Mandatory() {
			on = append(on, roleLabel(r.Role))
		} else {
			off = append(off, roleLabel(r.Role))
		}
	}
	h := roles.Balance(st.PlayerCount(), store.EnabledRoles(settings))
	return []Field{
		{Name: "Enabled", Value: joinOr(on, "none"), Inline: true},
		{Name: "Disabled", Value: joinOr(off, "none"), Inline: true},
		{Name: fmt.Sprintf("Deal for %d players", st.PlayerCount()), Value: headcountText(h)},
	}
}

func roleConfigAnnouncement(st *GameState, settings []store.GameRole) Announcement {
	a := Announcement{
		Title:  "⚙️ Choose the roles",
		Body:   "Toggle the optional roles, or let the table size decide with **Auto**. Villagers and werewolves are always in.",
		Color:  colorLobby,
		Fields: roleConfigFields(st, settings),
	}
	enabled := store.EnabledRoles(settings)
	for _, d := range roles.All() {
		if d.Role.Mandatory() {
			continue
		}
		style := StyleSecondary
		if slices.Contains(enabled, d.Role) {
			style = StyleSuccess
		}
		a.Buttons = append(a.Buttons, button(action.KindRoleToggle, st.ID, string(d.Role), d.Name, d.Emoji, style))
	}
	a.Buttons = append(a.Buttons,
		button(action.KindRoleAuto, st.ID, "", "Auto", "🎲", StylePrimary),
		button(action.KindRoleStart, st.ID, "", "Start game", "🚀", StyleDanger),
	)
	return a
}

func roleConfigLockedAnnouncement(st *GameState, settings []store.GameRole) Announcement {
	return Announcement{
		Title:  "⚙️ Roles locked in",
		Color:  colorNeutral,
		Fields: roleConfigFields(st, settings)[:2],
	}
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, "\n")
}

func headcountText(h roles.Headcount) string {
	var lines []string
	for _, d := range roles.All() {
		if n := h[d.Role]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s × %d", roleLabel(d.Role), n))
		}
	}
	return joinOr(lines, "nothing to deal")
}

func distributionAnnouncement(st *GameState, h roles.Headcount) Announcement {
	return Announcement{
		Title: "🃏 The roles have been dealt",
		Body:  "Your role card arrives privately in a moment. Keep it secret.",
		Color: colorLobby,
		Fields: []Field{
			{Name: "In this game", Value: headcountText(h)},
			{Name: "Teams", Value: fmt.Sprintf("🐺 %d werewolf team · 🏘️ %d village", h.WerewolfTeam(), h.Total()-h.WerewolfTeam())},
		},
		Buttons: []Button{startNightButton(st)},
	}
}

func roleCard(st *GameState, p *Player) Prompt {
	d := roles.Get(p.Role)
	body := d.Description + "\n\n" + d.Instructions
	if p.IsWerewolfTeam() {
		mates := st.WerewolfTeammates(p.ID)
		if len(mates) == 0 {
			body += "\n\nYou hunt alone."
		} else {
			body += "\n\nYour pack: **" + names(mates) + "**"
		}
	}
	return Prompt{
		Title: "Your role: " + d.Emoji + " " + d.Name,
		Body:  body,
		Color: d.Color,
	}
}

// Night

func nightAnnouncement(st *GameState) Announcement {
	return Announcement{
		Title: fmt.Sprintf("🌙 Night %d falls", st.Day),
		Body:  "The village sleeps. Those with powers, check your private messages.",
		Color: colorNight,
	}
}

// nightPrompt builds p's night prompt. When the role has nothing left to
// choose, the returned kind is recorded as an automatic action.
func nightPrompt(st *GameState, p *Player) (*Prompt, NightActionKind) {
	d := roles.Get(p.Role)
	pr := &Prompt{Title: fmt.Sprintf("%s Night %d", d.Emoji, st.Day), Color: d.Color}
	switch p.Role {
	case roles.Werewolf, roles.WerewolfLeader:
		targets := others(st, p, func(t *Player) bool { return !t.IsWerewolfTeam() })
		if len(targets) == 0 {
			pr.Body = "There is nobody left to hunt tonight."
			return pr, NightNoTarget
		}
		pr.Body = "Choose who the pack attacks tonight."
		if mates := st.WerewolfTeammates(p.ID); len(mates) > 0 {
			pr.Body += " Hunting with: **" + names(mates) + "**."
		}
		pr.Buttons = targetButtons(action.KindWerewolfKill, st.ID, targets, StyleDanger)
	case roles.Seer:
		targets := others(st, p, anyone)
		if len(targets) == 0 {
			return nil, NightNoTarget
		}
		pr.Body = "Choose a player to learn whether they are a werewolf."
		pr.Buttons = targetButtons(action.KindSeerReveal, st.ID, targets, StylePrimary)
	case roles.Detective:
		targets := others(st, p, anyone)
		if len(targets) == 0 {
			return nil, NightNoTarget
		}
		pr.Body = "Choose a player to learn their exact role."
		pr.Buttons = targetButtons(action.KindDetectiveInvestigate, st.ID, targets, StylePrimary)
	case roles.Guardian:
		var targets []*Player
		for _, t := range st.AlivePlayers() {
			if !st.ProtectedLastNight(p.ID, t.ID) {
				targets = append(targets, t)
			}
		}
		if len(targets) == 0 {
			return nil, NightNoTarget
		}
		pr.Body = "Choose a player to protect tonight. You may protect yourself, but not the same player two nights in a row."
		pr.Buttons = targetButtons(action.KindGuardianProtect, st.ID, targets, StyleSuccess)
	case roles.Sniper:
		left := st.SniperShotsLeft(p.ID)
		targets := others(st, p, anyone)
		if left <= 0 || len(targets) == 0 {
			pr.Body = "Your rifle is empty. Rest tonight."
			return pr, NightSkipShot
		}
		pr.Body = "Take a shot, or hold your fire. " + bulletsLeft(left)
		pr.Buttons = append(targetButtons(action.KindSniperShoot, st.ID, targets, StyleDanger),
			button(action.KindSniperSkip, st.ID, "", "Skip", "⏭️", StyleSecondary))
	case roles.Reviver:
		dead := st.DeadPlayers()
		if !st.CanRevive(p.ID) || len(dead) == 0 {
			pr.Body = "There is nobody you can bring back tonight."
			return pr, NightSkipRevive
		}
		pr.Body = "Bring one fallen player back to life. You can only do this once."
		pr.Buttons = append(targetButtons(action.KindReviverRevive, st.ID, dead, StyleSuccess),
			button(action.KindReviverSkip, st.ID, "", "Skip", "⏭️", StyleSecondary))
	case roles.Wizard:
		protect, poison := st.WizardPowers(p.ID)
		if !protect && !poison {
			pr.Body = "Your potions are spent."
			return pr, NightWizardSkip
		}
		pr.Body = "Choose a potion, or let the night pass."
		if protect {
			pr.Buttons = append(pr.Buttons, button(action.KindWizardProtect, st.ID, "", "Elixir", "🛡️", StyleSuccess))
		}
		if poison {
			pr.Buttons = append(pr.Buttons, button(action.KindWizardPoison, st.ID, "", "Poison", "☠️", StyleDanger))
		}
		pr.Buttons = append(pr.Buttons, button(action.KindWizardSkip, st.ID, "", "Skip", "⏭️", StyleSecondary))
	default:
		pr.Body = "You sleep soundly. Nothing to do until morning."
	}
	return pr, ""
}

func wizardTargetPrompt(st *GameState, actor *Player, potion Potion) Prompt {
	kind, title, placeholder := action.KindWizardProtectTarget, "🛡️ Elixir", "Who do you protect?"
	targets := st.AlivePlayers()
	if potion == PotionPoison {
		kind, title, placeholder = action.KindWizardPoisonTarget, "☠️ Poison", "Who do you poison?"
		targets = others(st, actor, anyone)
	}
	menu := &SelectMenu{Action: action.New(kind, st.ID).Encode(), Placeholder: placeholder}
	for _, t := range targets {
		menu.Options = append(menu.Options, SelectOption{Label: t.Name, Value: t.ID})
	}
	return Prompt{Title: title, Color: roles.Get(roles.Wizard).Color, Select: menu,
		Buttons: []Button{button(action.KindWizardSkip, st.ID, "", "Skip", "⏭️", StyleSecondary)}}
}

func confirmation(st *GameState, actor *Player, title, body string) Prompt {
	return Prompt{Title: title, Body: body, Color: roles.Get(actor.Role).Color}
}

func seerVision(st *GameState, target *Player) Prompt {
	p := Prompt{Title: "🔮 Vision", Color: roles.Get(roles.Seer).Color}
	if target.IsWerewolfTeam() {
		p.Body = fmt.Sprintf("**%s** is a werewolf! 🐺", target.Name)
	} else {
		p.Body = fmt.Sprintf("**%s** is not a werewolf.", target.Name)
	}
	return p
}

func investigationReport(st *GameState, target *Player) Prompt {
	return Prompt{
		Title: "🕵️ Investigation",
		Body:  fmt.Sprintf("**%s** is the %s.", target.Name, roleLabel(target.Role)),
		Color: roles.Get(roles.Detective).Color,
	}
}

func bulletsLeft(n int) string {
	if n == 1 {
		return "1 bullet left."
	}
	return fmt.Sprintf("%d bullets left.", n)
}

func sniperKillAnnouncement(victim *Player) Announcement {
	return Announcement{
		Title: "🎯 A shot rings out",
		Body:  fmt.Sprintf("**%s** was shot in the night. They were the %s.", victim.Name, roleLabel(victim.Role)),
		Color: colorDeath,
	}
}

func poisonAnnouncement(victim *Player) Announcement {
	return Announcement{
		Title: "☠️ Poisoned",
		Body:  fmt.Sprintf("**%s** collapsed after drinking something strange. They were the %s.", victim.Name, roleLabel(victim.Role)),
		Color: colorDeath,
	}
}

func reviveAnnouncement(p *Player) Announcement {
	return Announcement{
		Title: "✨ A miracle",
		Body:  fmt.Sprintf("**%s** has returned from the dead!", p.Name),
		Color: colorSafe,
	}
}

func revivedPrompt(st *GameState, p *Player) Prompt {
	return Prompt{
		Title: "✨ You live again",
		Body:  "A reviver brought you back. You rejoin the game from the next day.",
		Color: colorSafe,
	}
}

// Day

func dawnDeathAnnouncement(st *GameState, victim *Player) Announcement {
	return Announcement{
		Title: fmt.Sprintf("☀️ Day %d", st.Day),
		Body:  fmt.Sprintf("The village wakes to find **%s** dead. They were the %s.", victim.Name, roleLabel(victim.Role)),
		Color: colorDeath,
	}
}

func dawnSurvivalAnnouncement(st *GameState, victim *Player) Announcement {
	return Announcement{
		Title: fmt.Sprintf("☀️ Day %d", st.Day),
		Body:  fmt.Sprintf("The werewolves struck at **%s**, but they survived the attack!", victim.Name),
		Color: colorSafe,
	}
}

// dawnAlreadyDeadAnnouncement covers a werewolf target that a shot or poison
// killed before dawn.
func dawnAlreadyDeadAnnouncement(st *GameState, victim *Player) Announcement {
	return Announcement{
		Title: fmt.Sprintf("☀️ Day %d", st.Day),
		Body:  fmt.Sprintf("The werewolves came for **%s**, but the night had already claimed them. No one else died.", victim.Name),
		Color: colorDay,
	}
}

func dawnPeacefulAnnouncement(st *GameState) Announcement {
	return Announcement{
		Title: fmt.Sprintf("☀️ Day %d", st.Day),
		Body:  "The night passed peacefully. Nobody died.",
		Color: colorDay,
	}
}

func alivePanel(st *GameState) Field {
	return Field{Name: fmt.Sprintf("Alive (%d)", len(st.AlivePlayers())), Value: names(st.AlivePlayers())}
}

func discussionAnnouncement(st *GameState, remaining time.Duration) Announcement {
	return Announcement{
		Title:   "🗣️ Discussion",
		Body:    "Who among you is a werewolf? Talk it through before the vote.",
		Color:   colorDay,
		Fields:  []Field{alivePanel(st), {Name: "Time left", Value: mmss(remaining), Inline: true}},
		Buttons: []Button{button(action.KindEndDiscussion, st.ID, "", "End discussion", "⏩", StyleSecondary)},
	}
}

func discussionClosedAnnouncement(st *GameState) Announcement {
	return Announcement{
		Title:  "🗣️ Discussion over",
		Color:  colorNeutral,
		Fields: []Field{alivePanel(st)},
	}
}

func discussionEndedEarlyAnnouncement(st *GameState) Announcement {
	return Announcement{
		Title: "⏩ Discussion ended",
		Body:  "The owner closed the discussion. Time to vote.",
		Color: colorNeutral,
	}
}

func suspenseAnnouncement(st *GameState, line string) Announcement {
	if alive := st.AlivePlayers(); len(alive) > 0 && st.chance(QuietCalloutChance) {
		p := alive[st.pick(len(alive))]
		line += "\n\n" + fmt.Sprintf(quietCallouts[st.pick(len(quietCallouts))], p.Name)
	}
	return Announcement{Title: "👀 Meanwhile...", Body: line, Color: colorDay}
}

// Voting

func votingAnnouncement(st *GameState, remaining time.Duration) Announcement {
	voted := 0
	alive := st.AlivePlayers()
	for _, p := range alive {
		if p.Voted {
			voted++
		}
	}
	return Announcement{
		Title: "🗳️ Voting",
		Body:  "Check your private messages and vote for who to eliminate.",
		Color: colorVoting,
		Fields: []Field{
			{Name: "Votes", Value: fmt.Sprintf("%d / %d", voted, len(alive)), Inline: true},
			{Name: "Time left", Value: mmss(remaining), Inline: true},
		},
		Buttons: []Button{button(action.KindEndVoting, st.ID, "", "End voting", "⏹️", StyleSecondary)},
	}
}

func votingClosedAnnouncement(st *GameState) Announcement {
	return Announcement{Title: "🗳️ Voting closed", Color: colorNeutral}
}

func ballot(st *GameState, voter *Player) Prompt {
	p := Prompt{
		Title:   fmt.Sprintf("🗳️ Day %d vote", st.Day),
		Body:    "Who should the village eliminate?",
		Color:   colorVoting,
		Buttons: targetButtons(action.KindVote, st.ID, others(st, voter, anyone), StyleDanger),
	}
	if t, ok := st.Player(voter.VotedFor); ok && voter.Voted {
		p.Body = fmt.Sprintf("You voted for **%s**. You can change your vote until voting ends.", t.Name)
	}
	return p
}

func tally(st *GameState) Field {
	alive := st.AlivePlayers()
	sort.SliceStable(alive, func(i, j int) bool { return alive[i].VoteCount > alive[j].VoteCount })
	var lines []string
	for _, p := range alive {
		if p.VoteCount > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", p.Name, p.VoteCount))
		}
	}
	return Field{Name: "Tally", Value: joinOr(lines, "no votes")}
}

func noEliminationAnnouncement(st *GameState) Announcement {
	return Announcement{
		Title:  "🗳️ No one was eliminated",
		Body:   "The village could not agree.",
		Color:  colorNeutral,
		Fields: []Field{tally(st)},
	}
}

func eliminationAnnouncement(st *GameState, out *Player) Announcement {
	body := fmt.Sprintf("The village has spoken. **%s** is eliminated. They were the %s.", out.Name, roleLabel(out.Role))
	if out.IsWerewolfTeam() {
		body += "\n" + werewolfCaught[st.pick(len(werewolfCaught))]
	} else {
		body += "\n" + innocentLost[st.pick(len(innocentLost))]
	}
	return Announcement{
		Title:  "⚖️ Verdict",
		Body:   body,
		Color:  colorDeath,
		Fields: []Field{tally(st)},
	}
}

func eliminatedPrompt(st *GameState, out *Player) Prompt {
	return Prompt{
		Title: "⚖️ You were eliminated",
		Body:  fmt.Sprintf("The village voted you out. Your role, the %s, is now known to all. You can keep watching, but you can no longer act.", roleLabel(out.Role)),
		Color: colorDeath,
	}
}

// killedPrompt tells the victim of an instant night kill what happened.
func killedPrompt(victim *Player, cause string) Prompt {
	return Prompt{
		Title: "💀 You died in the night",
		Body:  fmt.Sprintf("%s Your role, the %s, is now known to all. You can keep watching, but you can no longer act.", cause, roleLabel(victim.Role)),
		Color: colorDeath,
	}
}

// End

func summaryAnnouncement(st *GameState, winner Winner) Announcement {
	a := Announcement{Color: colorNeutral}
	switch winner {
	case WinnerVillagers:
		a.Title = "🏘️ The villagers win!"
		a.Body = "Every werewolf has been found."
		a.Color = colorSafe
	case WinnerWerewolves:
		a.Title = "🐺 The werewolves win!"
		a.Body = "The pack now outnumbers the village."
		a.Color = colorDeath
	default:
		a.Title = "🏁 Game over"
		a.Body = "The game was stopped."
	}
	lines := make([]string, 0, st.PlayerCount())
	for _, p := range st.Players() {
		mark := "💀"
		if p.Alive {
			mark = "❤️"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s", mark, p.Name, roleLabel(p.Role)))
	}
	a.Fields = []Field{
		{Name: "Roles", Value: joinOr(lines, "nobody played")},
		{Name: "Days survived", Value: fmt.Sprint(st.Day), Inline: true},
	}
	a.Buttons = []Button{button(action.KindNewGame, st.ID, "", "New game", "🔁", StylePrimary)}
	return a
}

// RulesPrompt explains the game and lists every role.
func RulesPrompt() Prompt {
	var b strings.Builder
	b.WriteString("Villagers and werewolves live side by side. Each night the werewolves kill; each day the village votes someone out.\n")
	b.WriteString("The village wins when every werewolf is dead. The werewolves win once they are no longer outnumbered.\n\n")
	for _, d := range roles.All() {
		fmt.Fprintf(&b, "%s **%s**: %s\n", d.Emoji, d.Name, d.Description)
	}
	return Prompt{Title: "📜 Rules", Body: b.String(), Color: colorLobby}
}
