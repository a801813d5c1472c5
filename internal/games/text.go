package games

var suspenseMessages = []string{
	"🌫️ A cold mist rolls through the village square.",
	"🐾 Fresh tracks were found by the well this morning.",
	"🕯️ Someone's candle burned very late last night.",
	"🦉 An owl keeps circling one house in particular.",
	"🔔 The church bell rang once at midnight. Nobody admits to ringing it.",
	"🚪 A door was heard creaking open just before dawn.",
	"🍂 Whispers carry on the wind. Not everyone here is who they seem.",
	"🌕 The moon will be full again soon. Choose wisely.",
}

var quietCallouts = []string{
	"👀 **%s** has been awfully quiet... hiding something?",
	"👀 Has anyone heard a word from **%s** today?",
	"👀 **%s** seems very interested in their shoes right now.",
}

var werewolfCaught = []string{
	"🐺 A howl of rage echoes as the beast is unmasked!",
	"🐺 One less wolf prowls the village tonight.",
	"🐺 The pack just got smaller.",
}

var innocentLost = []string{
	"😢 An innocent soul. The werewolves are laughing somewhere.",
	"😢 The village may regret this choice.",
	"😢 Wrong again. The real wolves sleep soundly.",
}

// suspenseLines returns the discussion flavor pool in a fresh random order.
func suspenseLines(st *GameState) []string {
	lines := append([]string(nil), suspenseMessages...)
	st.shuffle(len(lines), func(i, j int) { lines[i], lines[j] = lines[j], lines[i] })
	return lines
}
