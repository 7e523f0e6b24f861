package progress

type Stage string

const (
	StageArcade       Stage = "arcade"
	StageConversation Stage = "conversation"
	StageDone         Stage = "done"
)

type View string

const (
	ViewHome    View = "/"
	ViewSuccess View = "/success"
	ViewBot     View = "/bot"
)

const (
	TotalChallenges = 2
	BotThreshold    = 3
)

// Progress is the whole per-visitor state. It lives in memory only.
type Progress struct {
	Completed int
	Failures  int
}

func (p Progress) Stage() Stage {
	switch {
	case p.Completed <= 0:
		return StageArcade
	case p.Completed == 1:
		return StageConversation
	default:
		return StageDone
	}
}

// Succeed records a passed challenge. Finishing the last one clears the
// failure count.
func Succeed(p Progress) Progress {
	if p.Completed < TotalChallenges {
		p.Completed++
	}
	if p.Completed >= TotalChallenges {
		p.Failures = 0
	}
	return p
}

// Fail records a failed attempt. Only arcade failures count toward the bot
// threshold; a conversation that never gets approved is not a failure event.
func Fail(p Progress, stage Stage) Progress {
	if stage == StageArcade {
		p.Failures++
	}
	return p
}

// Resolve derives the view from the counters. The bot threshold wins over
// everything, then a finished run; /success and /bot are never reachable
// without their guard.
func Resolve(p Progress) View {
	if p.Failures >= BotThreshold {
		return ViewBot
	}
	if p.Completed >= TotalChallenges {
		return ViewSuccess
	}
	return ViewHome
}
