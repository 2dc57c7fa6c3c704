package model

import "time"

// UserProfile carries the identity and consent state the pipeline needs.
// Consent is fail-closed: only an explicit true allows any processing.
type UserProfile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	BirthDate      time.Time `json:"birth_date"`
	ConsentGranted bool      `json:"consent_granted"`
	CreatedAt      time.Time `json:"created_at"`
}

// Age returns the user's age in whole years at the given reference date.
func (u *UserProfile) Age(ref time.Time) int {
	years := ref.Year() - u.BirthDate.Year()
	anniversary := u.BirthDate.AddDate(years, 0, 0)
	if anniversary.After(ref) {
		years--
	}
	return years
}
