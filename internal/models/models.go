package models

// Wire types as the backend serialises them. Field names follow the JSON the
// REST API produces, not Go conventions.

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Request struct {
	ID           uint          `json:"id"`
	SpeakerName  string        `json:"speaker_name"`
	Manufacturer string        `json:"manufacturer"`
	Reason       string        `json:"reason"`
	Status       RequestStatus `json:"status"`
	RequestDate  string        `json:"request_date"`
	UserID       uint          `json:"user_id"`
}

type Specs struct {
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Dimensions  string   `json:"dimensions"`
	Weight      string   `json:"weight"`
}

type Review struct {
	ID        uint   `json:"id"`
	SpeakerID uint   `json:"speaker_id,omitempty"`
	Username  string `json:"user"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	Date      string `json:"date"`
}

type Speaker struct {
	ID              uint      `json:"id"`
	ModelName       string    `json:"model_name"`
	Manufacturer    string    `json:"manufacturer"`
	Price           float64   `json:"price"`
	ImageURL        string    `json:"image_url"`
	Specs           Specs     `json:"specs"`
	Reviews         []Review  `json:"reviews"`
	AvgRating       float64   `json:"avg_rating"`
	RelatedSpeakers []Speaker `json:"related_speakers,omitempty"`
}
