package models

// PracticeLog is one attempt at a practice problem set.
type PracticeLog struct {
	ID           int64  `json:"id" db:"ID"`
	Date         string `json:"date" db:"Date" validate:"required,datetime=2006-01-02" label:"date"`
	Subject      string `json:"subject" db:"Subject" validate:"notblank" label:"subject"`
	Chapter      string `json:"chapter" db:"Chapter" validate:"notblank" label:"chapter"`
	ProblemSet   string `json:"problem_set" db:"DPP_Number" validate:"notblank" label:"problem set"`
	Score        int    `json:"score" db:"Score" validate:"gte=0,lte=100" label:"score"`
	Accuracy     int    `json:"accuracy" db:"Accuracy" validate:"gte=0,lte=100" label:"accuracy"`
	TimeTakenMin int    `json:"time_taken_min" db:"Time_Taken" validate:"gt=0" label:"time taken"`
	Notes        string `json:"notes,omitempty" db:"Notes"`
}

// PracticeFilter narrows PracticeRepository.LoadAll. Zero fields match everything.
type PracticeFilter struct {
	Subject string
}

// Key identifies the filter inside the read cache.
func (f PracticeFilter) Key() string {
	return "subject=" + f.Subject
}
