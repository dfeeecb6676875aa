package model

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// UserProfile is the single profile of a local store.
type UserProfile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age,omitempty"`
	Gender       Gender    `json:"gender,omitempty"`
	Height       float64   `json:"height,omitempty"`       // cm
	TargetWeight float64   `json:"targetWeight,omitempty"` // kg
	HealthGoals  []string  `json:"healthGoals,omitempty"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProfilePatch carries the fields of a partial profile update; nil means unchanged.
type ProfilePatch struct {
	Name         *string   `json:"name,omitempty"`
	Age          *int      `json:"age,omitempty"`
	Gender       *Gender   `json:"gender,omitempty"`
	Height       *float64  `json:"height,omitempty"`
	TargetWeight *float64  `json:"targetWeight,omitempty"`
	HealthGoals  *[]string `json:"healthGoals,omitempty"`
	AvatarURL    *string   `json:"avatarUrl,omitempty"`
}

func (p ProfilePatch) Apply(profile UserProfile) UserProfile {
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Age != nil {
		profile.Age = *p.Age
	}
	if p.Gender != nil {
		profile.Gender = *p.Gender
	}
	if p.Height != nil {
		profile.Height = *p.Height
	}
	if p.TargetWeight != nil {
		profile.TargetWeight = *p.TargetWeight
	}
	if p.HealthGoals != nil {
		profile.HealthGoals = append([]string(nil), (*p.HealthGoals)...)
	}
	if p.AvatarURL != nil {
		profile.AvatarURL = *p.AvatarURL
	}
	return profile
}
