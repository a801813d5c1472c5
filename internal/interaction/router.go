// Package interaction turns button presses and menu selections into game
// operations and builds the private reply the player sees.
package interaction

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/vntrieu/werewolf/internal/action"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/roles"
)

// Interaction is one component press coming from the messaging surface.
type Interaction struct {
	PlayerID   string   `json:"-"`
	PlayerName string   `json:"-"`
	ChannelID  string   `json:"channel_id,omitempty"`
	PromptID   string   `json:"prompt_id,omitempty"`
	CustomID   string   `json:"custom_id"`
	Values     []string `json:"values,omitempty"`
	Password   string   `json:"password,omitempty"`
}

// Reply is shown only to the player who interacted. Replace asks the surface
// to swap the prompt that was pressed (PromptID) instead of posting a new one.
type Reply struct {
	Prompt   games.Prompt `json:"prompt"`
	PromptID string       `json:"prompt_id,omitempty"`
	Replace  bool         `json:"replace,omitempty"`
	Failed   bool         `json:"failed,omitempty"`
}

// Handler handles interactions.
type Handler interface {
	Handle(ctx context.Context, in Interaction) Reply
}

// Router dispatches interactions to the game manager and controller.
type Router struct {
	m *games.Manager
	c *games.Controller
}

var _ Handler = (*Router)(nil)

func NewRouter(m *games.Manager) *Router {
	return &Router{m: m, c: m.Controller()}
}

const (
	msgExpired  = "This button has expired. Open the latest message and try again."
	msgGameGone = "This game is no longer running."
	msgRetry    = "Something went wrong. Please try again."
)

// Handle decodes the component id, runs the operation and builds the reply.
// It never panics and never returns an error; failures become a notice.
func (r *Router) Handle(ctx context.Context, in Interaction) (reply Reply) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Str("custom_id", in.CustomID).Str("panic", fmt.Sprint(p)).Msg("interaction panicked")
			reply = notice(msgRetry)
		}
	}()

	id, err := action.Decode(in.CustomID)
	if err != nil {
		log.Debug().Err(err).Str("player_id", in.PlayerID).Msg("undecodable interaction")
		return notice(msgExpired)
	}
	if id.Kind.FromSelect() {
		if len(in.Values) == 0 {
			return failure(games.ErrInvalidTarget)
		}
		id.Target = in.Values[0]
	}

	log.Debug().Str("player_id", in.PlayerID).Stringer("action", id).Msg("interaction")
	reply, err = r.dispatch(ctx, in, id)
	if err != nil {
		return failure(err)
	}
	if reply.Replace {
		reply.PromptID = in.PromptID
	}
	return reply
}

func (r *Router) dispatch(ctx context.Context, in Interaction, id action.ID) (Reply, error) {
	g, p := id.GameID, in.PlayerID
	switch id.Kind {
	case action.KindJoin:
		return done("✋ You joined the game.", r.m.AddPlayer(ctx, g, p, in.PlayerName, in.Password))
	case action.KindLeave:
		return done("🚪 You left the game.", r.m.RemovePlayer(ctx, g, p))
	case action.KindBeginConfig:
		return done("⚙️ Role configuration is open.", r.m.BeginConfiguration(ctx, g, p))
	case action.KindRules:
		return Reply{Prompt: games.RulesPrompt()}, nil
	case action.KindRoleToggle:
		role, err := roles.Parse(id.Target)
		if err != nil {
			return Reply{}, games.ErrInvalidTarget
		}
		return done("⚙️ Role updated.", r.m.ToggleRole(ctx, g, p, role))
	case action.KindRoleAuto:
		return done("🎲 Roles chosen for this table size.", r.m.AutoConfigureRoles(ctx, g, p))
	case action.KindRoleStart:
		return done("🚀 The game is starting.", r.m.StartGame(ctx, g, p))
	case action.KindStartNight:
		return done("🌙 Night has begun.", r.c.StartNight(ctx, g, p))
	case action.KindEndDiscussion:
		return done("⏩ Discussion closed.", r.c.EndDiscussion(ctx, g, p))
	case action.KindEndVoting:
		return done("⏹️ Voting closed.", r.c.EndVoting(ctx, g, p))
	case action.KindNewGame:
		_, err := r.m.OpenLobby(ctx, in.ChannelID, p, in.PlayerName, "")
		return done("🐺 A new lobby is open.", err)

	case action.KindWerewolfKill:
		return replace(r.c.WerewolfKill(ctx, g, p, id.Target))
	case action.KindSeerReveal:
		return replace(r.c.SeerReveal(ctx, g, p, id.Target))
	case action.KindDetectiveInvestigate:
		return replace(r.c.DetectiveInvestigate(ctx, g, p, id.Target))
	case action.KindGuardianProtect:
		return replace(r.c.GuardianProtect(ctx, g, p, id.Target))
	case action.KindSniperShoot:
		return replace(r.c.SniperShoot(ctx, g, p, id.Target))
	case action.KindSniperSkip:
		return replace(r.c.SniperSkip(ctx, g, p))
	case action.KindReviverRevive:
		return replace(r.c.ReviverRevive(ctx, g, p, id.Target))
	case action.KindReviverSkip:
		return replace(r.c.ReviverSkip(ctx, g, p))
	case action.KindWizardProtect:
		return replace(r.c.WizardChoose(ctx, g, p, games.PotionProtect))
	case action.KindWizardPoison:
		return replace(r.c.WizardChoose(ctx, g, p, games.PotionPoison))
	case action.KindWizardSkip:
		return replace(r.c.WizardSkip(ctx, g, p))
	case action.KindWizardProtectTarget:
		return replace(r.c.WizardProtect(ctx, g, p, id.Target))
	case action.KindWizardPoisonTarget:
		return replace(r.c.WizardPoison(ctx, g, p, id.Target))
	case action.KindVote:
		return replace(r.c.CastVote(ctx, g, p, id.Target))
	}
	return notice(msgExpired), nil
}

func done(msg string, err error) (Reply, error) {
	if err != nil {
		return Reply{}, err
	}
	return notice(msg), nil
}

func replace(p games.Prompt, err error) (Reply, error) {
	if err != nil {
		return Reply{}, err
	}
	return Reply{Prompt: p, Replace: true}, nil
}

func notice(msg string) Reply {
	return Reply{Prompt: games.Prompt{Body: msg}}
}

// failure maps an operation error to what the player is told. Rejections
// show their own message; anything else is logged and kept generic.
func failure(err error) Reply {
	if sentinel, ok := games.IsInvalidState(err); ok {
		return Reply{Prompt: games.Prompt{Title: "⚠️ Not now", Body: sentinel.Error()}, Failed: true}
	}
	if errors.Is(err, games.ErrGameNotFound) {
		return Reply{Prompt: games.Prompt{Body: msgGameGone}, Failed: true}
	}
	if errors.Is(err, games.ErrPlayerNotFound) {
		return Reply{Prompt: games.Prompt{Body: "You are not part of this game."}, Failed: true}
	}
	log.Error().Err(err).Msg("interaction failed")
	return Reply{Prompt: games.Prompt{Body: msgRetry}, Failed: true}
}
