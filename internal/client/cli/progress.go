package cli

// percent is completed*100/total clamped to [0,100]; 0 when total is 0.
func percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	p := completed * 100 / total
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

type achievement struct {
	Icon        string
	Title       string
	Description string
	Unlocked    bool
}

// achievements derives the badge list from lesson and course counts.
func achievements(lessonsCompleted, coursesCompleted int) []achievement {
	return []achievement{
		{"🎯", "First Steps", "Complete your first lesson", lessonsCompleted >= 1},
		{"⭐", "Learning Enthusiast", "Complete 5 lessons", lessonsCompleted >= 5},
		{"🏆", "Course Master", "Complete an entire course", coursesCompleted >= 1},
		{"📚", "Knowledge Seeker", "Complete 10 lessons", lessonsCompleted >= 10},
	}
}
