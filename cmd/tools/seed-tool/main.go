// cmd/tools/seed-tool/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"mergington-activities/pkg/seed"
)

const defaultSeedPath = "configs/seed-activities.json"

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)

	// Add command flags
	addPath := addCmd.String("path", defaultSeedPath, "Path to seed file")
	name := addCmd.String("name", "", "Activity name (e.g., Robotics Club)")
	description := addCmd.String("description", "", "Description")
	schedule := addCmd.String("schedule", "", "Schedule (e.g., Mondays, 4:00 PM - 5:30 PM)")
	maxParticipants := addCmd.Int("max", 0, "Maximum participants")

	// Update command flags
	updatePath := updateCmd.String("path", defaultSeedPath, "Path to seed file")
	nameUpdate := updateCmd.String("name", "", "Activity name to update")
	field := updateCmd.String("field", "", "Field to update (description, schedule, max)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultSeedPath, "Path to seed file")
	listPath := listCmd.String("path", defaultSeedPath, "Path to seed file")
	initPath := initCmd.String("path", defaultSeedPath, "Path to seed file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *name == "" || *description == "" || *schedule == "" || *maxParticipants <= 0 {
			fmt.Println("Error: name, description, schedule and a positive max are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		err = addActivity(*addPath, seed.Activity{
			Name:            *name,
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    []string{},
		})
		if err == nil {
			fmt.Printf("Added activity: %s\n", *name)
		}

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: name, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		err = updateActivity(*updatePath, *nameUpdate, *field, *value)
		if err == nil {
			fmt.Printf("Updated activity %s, field %s to %s\n", *nameUpdate, *field, *value)
		}

	case "validate":
		validateCmd.Parse(os.Args[2:])
		var count int
		count, err = validateSeed(*validatePath)
		if err == nil {
			fmt.Printf("Seed validation passed. Found %d activities.\n", count)
		}

	case "list":
		listCmd.Parse(os.Args[2:])
		err = listActivities(*listPath, os.Stdout)

	case "init":
		initCmd.Parse(os.Args[2:])
		err = writeSeed(*initPath, seed.Default())
		if err == nil {
			fmt.Printf("Wrote default activities to %s\n", *initPath)
		}

	case "help":
		help()
		return

	default:
		help()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func addActivity(path string, activity seed.Activity) error {
	file, err := seed.Load(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load seed file: %w", err)
		}
		file = &seed.File{Version: seed.CurrentVersion}
	}

	if _, exists := file.Find(activity.Name); exists {
		return fmt.Errorf("activity %q already exists", activity.Name)
	}

	file.Activities = append(file.Activities, activity)
	return writeSeed(path, file)
}

func updateActivity(path, name, field, value string) error {
	file, err := seed.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	activity, found := file.Find(name)
	if !found {
		return fmt.Errorf("activity %q not found", name)
	}

	switch field {
	case "description":
		activity.Description = value
	case "schedule":
		activity.Schedule = value
	case "max", "maxParticipants":
		max, err := strconv.Atoi(value)
		if err != nil || max <= 0 {
			return fmt.Errorf("invalid max value: %s", value)
		}
		activity.MaxParticipants = max
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	return writeSeed(path, file)
}

func validateSeed(path string) (int, error) {
	file, err := seed.Load(path)
	if err != nil {
		return 0, err
	}
	if len(file.Activities) == 0 {
		return 0, fmt.Errorf("seed file contains no activities")
	}
	return len(file.Activities), nil
}

func listActivities(path string, w io.Writer) error {
	file, err := seed.Load(path)
	if err != nil {
		return err
	}

	activities := append([]seed.Activity(nil), file.Activities...)
	sort.Slice(activities, func(i, j int) bool { return activities[i].Name < activities[j].Name })

	for _, a := range activities {
		fmt.Fprintf(w, "%-20s %2d/%-3d %s\n", a.Name, len(a.Participants), a.MaxParticipants, a.Schedule)
	}
	return nil
}

// writeSeed saves the file and reloads it so schema violations surface
// immediately.
func writeSeed(path string, file *seed.File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := seed.Save(path, file); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	_, err := seed.Load(path)
	return err
}

func help() {
	fmt.Print(`
Usage: seed-tool <command> [flags]

Commands:
  init      Write the built-in activities to a seed file
  add       Add a new activity to the seed file
  update    Update an existing activity's field
  validate  Validate the seed file
  list      Print activities with enrollment counts
  help      Show this help message

Examples:
  seed-tool add -name "Robotics Club" -description "Build and program robots" -schedule "Mondays, 4:00 PM - 5:30 PM" -max 14
  seed-tool update -name "Chess Club" -field max -value 16
  seed-tool validate -path configs/seed-activities.json

Use 'seed-tool <command> -h' for more information about a command.
` + "\n")
}
