package structs

//User DB entity for a user of the app. The streak fields are owned by the daily jobs,
//the FCM token is registered by the client and only read here.
type User struct {
	StreakCount int    `json:"streakCount" firestore:"streakCount"`
	MaxStreak   int    `json:"maxStreak" firestore:"maxStreak"`
	StreakDate  string `json:"streakDate" firestore:"streakDate"`
	FcmToken    string `json:"fcmToken" firestore:"fcmToken"`
}

//RoutineLog DB entity for one logged routine of a user. Created by the app, read-only here.
//StartTime is a 12-hour formatted time of day, e.g. "7:05 AM".
type RoutineLog struct {
	Date       string `json:"date" firestore:"date"`
	StartTime  string `json:"startTime" firestore:"startTime"`
	Title      string `json:"title" firestore:"title"`
	IsFinished bool   `json:"isFinished" firestore:"isFinished"`
	XpEarned   int    `json:"xpEarned" firestore:"xpEarned"`
}

//Mission DB entity for one daily mission of a user.
type Mission struct {
	RecentCount     int  `json:"recentCount" firestore:"recentCount"`
	MissionRewarded bool `json:"missionRewarded" firestore:"missionRewarded"`
}

//StreakUpdate New values of the streak fields of a user, applied in one write.
type StreakUpdate struct {
	StreakCount int
	MaxStreak   int
	StreakDate  string
}
