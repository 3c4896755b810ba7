package domain

// IntegrityReport counts records that reference missing users, plus
// sessions past their expiry. References are never enforced on write.
type IntegrityReport struct {
	OrphanAnswers     int `json:"orphanAnswers"`
	OrphanCompletions int `json:"orphanCompletions"`
	OrphanRankings    int `json:"orphanRankings"`
	OrphanSurveys     int `json:"orphanSurveys"`
	OrphanSessions    int `json:"orphanSessions"`
	ExpiredSessions   int `json:"expiredSessions"`
	UnknownQuestions  int `json:"unknownQuestions"`
}

// Clean reports whether no issue was found.
func (r IntegrityReport) Clean() bool {
	return r == IntegrityReport{}
}
