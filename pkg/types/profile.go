package types

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "veryActive"
)

// UserProfile is the body data the calorie target is derived from.
// Weight is in pounds and Height in inches.
type UserProfile struct {
	Gender        Gender        `json:"gender"`
	Weight        float64       `json:"weight"`
	Height        float64       `json:"height"`
	AgeYears      int           `json:"age"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

// DefaultProfile matches the profile a brand new account starts with.
func DefaultProfile() UserProfile {
	return UserProfile{
		Gender:        GenderFemale,
		Weight:        65,
		Height:        165,
		AgeYears:      30,
		ActivityLevel: ActivityModerate,
	}
}
