package main

import (
	"context"
	"fmt"
)

// printResults prints the received averages of every student on the
// assessment's course roster.
func (cli *commandLine) printResults(activityID string) error {
	ctx := context.Background()

	act, err := cli.actRepo.GetActivityByID(ctx, activityID)
	if err != nil {
		return err
	}
	crs, err := cli.courseRepo.GetCourseByID(ctx, act.CourseID)
	if err != nil {
		return err
	}

	label := act.AssessmentLabel
	if label == "" {
		label = act.Name
	}
	fmt.Printf("%s / %s\n", crs.Name, label)
	for _, student := range crs.Students {
		avgs := act.AggregateFor(student)
		if avgs.Evaluators == 0 {
			fmt.Printf("  %-30s no scores received\n", student)
			continue
		}
		fmt.Printf("  %-30s overall %.2f (punctuality %.2f, contributions %.2f, commitment %.2f, attitude %.2f; %d evaluators)\n",
			student, avgs.Overall, avgs.Punctuality, avgs.Contributions, avgs.Commitment, avgs.Attitude, avgs.Evaluators)
	}
	return nil
}
