package ledgerdomain

// StreakStep is the number of consecutive scrums that earns one more coin.
const StreakStep = 7

// RewardUnits returns the whole-coin reward for a participant whose streak,
// after counting the scrum being paid out, is streak.
//
// Rules:
//   - Every qualifying scrum pays at least one coin.
//   - Each full StreakStep of consecutive scrums adds one more coin.
//   - Negative streaks are treated as zero.
func RewardUnits(streak int) int64 {
	if streak < 0 {
		streak = 0
	}
	return 1 + int64(streak/StreakStep)
}

// Reward is RewardUnits expressed in minor units.
func Reward(streak int) Amount {
	return FromWhole(RewardUnits(streak))
}
