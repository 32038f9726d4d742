package signupactivity

import (
	"fmt"

	"mergington-activities/internal/models"
)

type Input struct {
	ActivityName string `uri:"activity_name"`
	Email        string `form:"email"`
}

type Output = models.MessageResponse

func newOutput(input Input) Output {
	return Output{Message: fmt.Sprintf("Signed up %s for %s", input.Email, input.ActivityName)}
}
