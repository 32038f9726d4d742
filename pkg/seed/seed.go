// pkg/seed/seed.go
package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"mergington-activities/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

const CurrentVersion = "1.0.0"

// Load reads a seed file, validates it against the seed schema and rejects
// duplicate activity names.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes seed JSON.
func Parse(data []byte) (*File, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	seen := make(map[string]bool, len(f.Activities))
	for _, a := range f.Activities {
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate activity %q in seed file", a.Name)
		}
		seen[a.Name] = true
	}

	return &f, nil
}

// Validate checks raw seed JSON against the seed schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(fileSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("seed validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Save writes f to path, stamping LastUpdated.
func Save(path string, f *File) error {
	if f.Version == "" {
		f.Version = CurrentVersion
	}
	f.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seed file: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Find returns the named activity, if present.
func (f *File) Find(name string) (*Activity, bool) {
	for i := range f.Activities {
		if f.Activities[i].Name == name {
			return &f.Activities[i], true
		}
	}
	return nil, false
}

// ToActivities converts the seed entries into registry activities.
func (f *File) ToActivities() models.ActivityMap {
	out := make(models.ActivityMap, len(f.Activities))
	for _, a := range f.Activities {
		participants := make([]string, len(a.Participants))
		copy(participants, a.Participants)
		out[a.Name] = models.Activity{
			Description:     a.Description,
			Schedule:        a.Schedule,
			MaxParticipants: a.MaxParticipants,
			Participants:    participants,
		}
	}
	return out
}

// Default returns the built-in Mergington High School activities.
func Default() *File {
	return &File{
		Version: CurrentVersion,
		Activities: []Activity{
			{
				Name:            "Chess Club",
				Description:     "Learn strategies and compete in chess tournaments",
				Schedule:        "Fridays, 3:30 PM - 5:00 PM",
				MaxParticipants: 12,
				Participants:    []string{"michael@mergington.edu", "daniel@mergington.edu"},
			},
			{
				Name:            "Programming Class",
				Description:     "Learn programming fundamentals and build software projects",
				Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
				MaxParticipants: 20,
				Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
			},
			{
				Name:            "Gym Class",
				Description:     "Physical education and sports activities",
				Schedule:        "Mondays, Wednesdays, Fridays, 2:00 PM - 3:00 PM",
				MaxParticipants: 30,
				Participants:    []string{"john@mergington.edu", "olivia@mergington.edu"},
			},
			{
				Name:            "Basketball Team",
				Description:     "Practice drills and compete in inter-school basketball games",
				Schedule:        "Tuesdays and Thursdays, 4:00 PM - 6:00 PM",
				MaxParticipants: 15,
				Participants:    []string{"liam@mergington.edu"},
			},
			{
				Name:            "Soccer Club",
				Description:     "Train and play friendly soccer matches",
				Schedule:        "Wednesdays, 3:30 PM - 5:30 PM",
				MaxParticipants: 22,
				Participants:    []string{"noah@mergington.edu", "ava@mergington.edu"},
			},
			{
				Name:            "Art Club",
				Description:     "Explore drawing, painting and sculpture",
				Schedule:        "Mondays, 3:30 PM - 5:00 PM",
				MaxParticipants: 18,
				Participants:    []string{"mia@mergington.edu"},
			},
			{
				Name:            "Drama Club",
				Description:     "Act, direct and produce school plays",
				Schedule:        "Thursdays, 3:30 PM - 5:30 PM",
				MaxParticipants: 20,
				Participants:    []string{"amelia@mergington.edu", "harper@mergington.edu"},
			},
			{
				Name:            "Math Olympiad",
				Description:     "Solve challenging problems and prepare for math competitions",
				Schedule:        "Tuesdays, 3:30 PM - 4:30 PM",
				MaxParticipants: 10,
				Participants:    []string{"ethan@mergington.edu"},
			},
			{
				Name:            "Debate Team",
				Description:     "Sharpen public speaking and argumentation skills",
				Schedule:        "Fridays, 4:00 PM - 5:30 PM",
				MaxParticipants: 16,
				Participants:    []string{"isabella@mergington.edu", "lucas@mergington.edu"},
			},
		},
	}
}
