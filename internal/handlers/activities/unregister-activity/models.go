package unregisteractivity

import (
	"fmt"

	"mergington-activities/internal/models"
)

type Input struct {
	ActivityName string
	Email        string
}

type Output = models.MessageResponse

func newOutput(input Input) Output {
	return Output{Message: fmt.Sprintf("Unregistered %s from %s", input.Email, input.ActivityName)}
}
