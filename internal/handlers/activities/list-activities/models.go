package listactivities

import "mergington-activities/internal/models"

// Output maps each activity name to its details and roster.
type Output = models.ActivityMap
