// internal/profile/options.go
package profile

// ChildOptions is the static dropdown vocabulary served by
// GET /api/child-options. Kept in code — it is presentation vocabulary,
// not user data.
type ChildOptions struct {
	Hobbies           []string `json:"hobbies"`
	Interests         []string `json:"interests"`
	PersonalityTraits []string `json:"personality_traits"`
	Genders           []string `json:"genders"`
	SchoolGrades      []string `json:"school_grades"`
}

var childOptions = ChildOptions{
	Hobbies: []string{
		"Reading", "Drawing", "Painting", "Sports", "Soccer", "Basketball",
		"Swimming", "Dancing", "Singing", "Playing instruments", "Video games",
		"Board games", "Cooking", "Gardening", "Photography", "Writing",
		"Crafts", "Building with blocks/Lego", "Collecting", "Outdoor activities",
	},
	Interests: []string{
		"Animals", "Science", "Technology", "Art", "Music", "Sports",
		"Nature", "Space", "Dinosaurs", "Cars", "Trains", "Airplanes",
		"Cooking", "Fashion", "History", "Geography", "Languages",
		"Mathematics", "Literature", "Movies", "Cartoons",
	},
	PersonalityTraits: []string{
		"Outgoing", "Shy", "Creative", "Analytical", "Energetic", "Calm",
		"Curious", "Independent", "Social", "Introverted", "Adventurous",
		"Cautious", "Empathetic", "Competitive", "Cooperative", "Leadership",
		"Artistic", "Logical", "Emotional", "Practical",
	},
	Genders: []string{"Male", "Female", "Other", "Prefer not to say"},
	SchoolGrades: []string{
		"Pre-K", "Kindergarten", "1st Grade", "2nd Grade", "3rd Grade",
		"4th Grade", "5th Grade", "6th Grade", "7th Grade", "8th Grade",
		"9th Grade", "10th Grade", "11th Grade", "12th Grade", "College",
		"Not in school",
	},
}

func GetChildOptions() ChildOptions {
	return childOptions
}
