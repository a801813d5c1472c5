package games

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/roles"
)

// Potion is one of the wizard's two single-use powers.
type Potion string

const (
	PotionProtect Potion = "protect"
	PotionPoison  Potion = "poison"
)

var (
	werewolfTeam  = []roles.Role{roles.Werewolf, roles.WerewolfLeader}
	seerOnly      = []roles.Role{roles.Seer}
	detectiveOnly = []roles.Role{roles.Detective}
	guardianOnly  = []roles.Role{roles.Guardian}
	sniperOnly    = []roles.Role{roles.Sniper}
	reviverOnly   = []roles.Role{roles.Reviver}
	wizardOnly    = []roles.Role{roles.Wizard}
)

// WerewolfKill picks tonight's victim. When several wolves vote the last choice wins.
func (c *Controller) WerewolfKill(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "werewolf kill", actorID, werewolfTeam, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		target, err := livingTarget(st, actor, targetID, false)
		if err != nil {
			return Prompt{}, err
		}
		if target.IsWerewolfTeam() {
			return Prompt{}, ErrInvalidTarget
		}
		st.SetWerewolfVictim(target.ID)
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightKill})
		log.Debug().Int64("game_id", st.ID).Str("actor_id", actor.ID).Str("target_id", target.ID).Msg("werewolf chose victim")
		return confirmation(st, actor, "🐺 Victim chosen", "You stalk **"+target.Name+"** through the dark."), nil
	})
}

// SeerReveal tells the seer whether the target is on the werewolf team.
func (c *Controller) SeerReveal(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "seer reveal", actorID, seerOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		target, err := livingTarget(st, actor, targetID, false)
		if err != nil {
			return Prompt{}, err
		}
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightReveal})
		return seerVision(st, target), nil
	})
}

// DetectiveInvestigate tells the detective the target's exact role.
func (c *Controller) DetectiveInvestigate(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "detective investigate", actorID, detectiveOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		target, err := livingTarget(st, actor, targetID, false)
		if err != nil {
			return Prompt{}, err
		}
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightInvestigate})
		return investigationReport(st, target), nil
	})
}

// GuardianProtect shields a living player, possibly the guardian, for tonight.
// The same player cannot be protected two nights in a row.
func (c *Controller) GuardianProtect(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "guardian protect", actorID, guardianOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		target, err := livingTarget(st, actor, targetID, true)
		if err != nil {
			return Prompt{}, err
		}
		if st.ProtectedLastNight(actor.ID, target.ID) {
			return Prompt{}, ErrRepeatProtection
		}
		target.Protected = true
		st.recordProtection(actor.ID, target.ID)
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightProtect})
		return confirmation(st, actor, "🛡️ Protection set", "You stand guard over **"+target.Name+"** tonight."), nil
	})
}

// SniperShoot fires one of the sniper's bullets. The target dies at once
// unless protected; the bullet is spent either way.
func (c *Controller) SniperShoot(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "sniper shoot", actorID, sniperOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		if st.SniperShotsLeft(actor.ID) <= 0 {
			return Prompt{}, ErrAbilityUsed
		}
		target, err := livingTarget(st, actor, targetID, false)
		if err != nil {
			return Prompt{}, err
		}
		st.useSniperShot(actor.ID)
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightShoot})
		left := st.SniperShotsLeft(actor.ID)
		if target.Protected {
			return confirmation(st, actor, "🎯 Shot blocked", "Something shielded **"+target.Name+"**. "+bulletsLeft(left)), nil
		}
		c.killNow(ctx, st, target, sniperKillAnnouncement(target), "A sniper's bullet found you.")
		return confirmation(st, actor, "🎯 Target down", "**"+target.Name+"** has been eliminated. "+bulletsLeft(left)), nil
	})
}

// SniperSkip passes the night without shooting.
func (c *Controller) SniperSkip(ctx context.Context, gameID int64, actorID string) (Prompt, error) {
	return c.nightActor(gameID, "sniper skip", actorID, sniperOnly, func(s *session, actor *Player) (Prompt, error) {
		s.state.AddNightAction(actor.ID, NightAction{Kind: NightSkipShot})
		return confirmation(s.state, actor, "🎯 Holding fire", "You keep your rifle lowered tonight."), nil
	})
}

// ReviverRevive brings a dead player back. It can be used once per game.
func (c *Controller) ReviverRevive(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "reviver revive", actorID, reviverOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		if !st.CanRevive(actor.ID) {
			return Prompt{}, ErrAbilityUsed
		}
		target, ok := st.Player(targetID)
		if !ok || target.Alive {
			return Prompt{}, ErrInvalidTarget
		}
		st.useRevive(actor.ID)
		st.SetPlayerAlive(target.ID, true)
		// Revived players sit out the rest of this night.
		target.NightActionDone = true
		c.m.persistAlive(ctx, st, target.ID, true)
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightRevive})
		_, _ = c.m.announce(ctx, st, reviveAnnouncement(target))
		c.m.prompt(ctx, st, target.ID, revivedPrompt(st, target))
		log.Info().Int64("game_id", st.ID).Str("player_id", target.ID).Msg("player revived")
		return confirmation(st, actor, "✨ Revived", "**"+target.Name+"** breathes again."), nil
	})
}

// ReviverSkip passes the night without reviving.
func (c *Controller) ReviverSkip(ctx context.Context, gameID int64, actorID string) (Prompt, error) {
	return c.nightActor(gameID, "reviver skip", actorID, reviverOnly, func(s *session, actor *Player) (Prompt, error) {
		s.state.AddNightAction(actor.ID, NightAction{Kind: NightSkipRevive})
		return confirmation(s.state, actor, "✨ Resting", "You save your power for another night."), nil
	})
}

// WizardChoose opens the target picker for one of the wizard's potions. It
// does not complete the wizard's night.
func (c *Controller) WizardChoose(ctx context.Context, gameID int64, actorID string, potion Potion) (Prompt, error) {
	return c.nightActor(gameID, "wizard choose", actorID, wizardOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		protect, poison := st.WizardPowers(actor.ID)
		if (potion == PotionProtect && !protect) || (potion == PotionPoison && !poison) {
			return Prompt{}, ErrAbilityUsed
		}
		if potion != PotionProtect && potion != PotionPoison {
			return Prompt{}, ErrInvalidTarget
		}
		return wizardTargetPrompt(st, actor, potion), nil
	})
}

// WizardProtect shields a living player for tonight.
func (c *Controller) WizardProtect(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "wizard protect", actorID, wizardOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		if protect, _ := st.WizardPowers(actor.ID); !protect {
			return Prompt{}, ErrAbilityUsed
		}
		target, err := livingTarget(st, actor, targetID, true)
		if err != nil {
			return Prompt{}, err
		}
		st.useWizardProtect(actor.ID)
		target.Protected = true
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightWizardProtect})
		return confirmation(st, actor, "🧙 Elixir cast", "A warding light settles over **"+target.Name+"**."), nil
	})
}

// WizardPoison kills a living player at once unless they are protected. The
// potion is spent either way.
func (c *Controller) WizardPoison(ctx context.Context, gameID int64, actorID, targetID string) (Prompt, error) {
	return c.nightActor(gameID, "wizard poison", actorID, wizardOnly, func(s *session, actor *Player) (Prompt, error) {
		st := s.state
		if _, poison := st.WizardPowers(actor.ID); !poison {
			return Prompt{}, ErrAbilityUsed
		}
		target, err := livingTarget(st, actor, targetID, false)
		if err != nil {
			return Prompt{}, err
		}
		st.useWizardPoison(actor.ID)
		st.AddNightAction(actor.ID, NightAction{TargetID: target.ID, Kind: NightWizardPoison})
		if target.Protected {
			return confirmation(st, actor, "🧙 Poison resisted", "**"+target.Name+"** was protected and shrugs it off."), nil
		}
		c.killNow(ctx, st, target, poisonAnnouncement(target), "The wizard's poison took you.")
		return confirmation(st, actor, "🧙 Poison cast", "**"+target.Name+"** will not see the morning."), nil
	})
}

// WizardSkip passes the night without using a potion.
func (c *Controller) WizardSkip(ctx context.Context, gameID int64, actorID string) (Prompt, error) {
	return c.nightActor(gameID, "wizard skip", actorID, wizardOnly, func(s *session, actor *Player) (Prompt, error) {
		s.state.AddNightAction(actor.ID, NightAction{Kind: NightWizardSkip})
		return confirmation(s.state, actor, "🧙 Potions stoppered", "You watch the night pass."), nil
	})
}
